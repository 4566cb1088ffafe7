package groupset

import (
	"github.com/gofiber/fiber/v2"

	"github.com/classgroups/classgroups/internal/db/controller/group"
	"github.com/classgroups/classgroups/internal/web/handler"
	authmiddleware "github.com/classgroups/classgroups/internal/web/middleware/auth"
)

// CreateGroup handles POST /group_sets/:group_set_id/groups.
func (s *Service) CreateGroup(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "group_set_id")
	if err != nil {
		return err
	}

	var req createGroupRequest
	if err = handler.Bind(c, &req); err != nil {
		return err
	}

	g, err := s.groups.CreateGroup(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1],
		req.Group.Name, req.Group.TutorialID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(newGroupResponse(g))
}

// UpdateGroup handles PUT /group_sets/:group_set_id/groups/:group_id.
func (s *Service) UpdateGroup(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "group_set_id", "group_id")
	if err != nil {
		return err
	}

	var req updateGroupRequest
	if err = handler.Bind(c, &req); err != nil {
		return err
	}

	g, err := s.groups.UpdateGroup(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1], ids[2],
		group.Changes{Name: req.Group.Name, TutorialID: req.Group.TutorialID})
	if err != nil {
		return err
	}

	return c.JSON(newGroupResponse(g))
}

// DeleteGroup handles DELETE /group_sets/:group_set_id/groups/:group_id.
func (s *Service) DeleteGroup(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "group_set_id", "group_id")
	if err != nil {
		return err
	}

	if err = s.groups.DeleteGroup(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1], ids[2]); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
