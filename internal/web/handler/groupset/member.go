package groupset

import (
	"github.com/gofiber/fiber/v2"

	"github.com/classgroups/classgroups/internal/web/handler"
	authmiddleware "github.com/classgroups/classgroups/internal/web/middleware/auth"
)

// Members handles GET /group_sets/:group_set_id/groups/:group_id/members.
func (s *Service) Members(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "group_set_id", "group_id")
	if err != nil {
		return err
	}

	members, err := s.groups.Members(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1], ids[2])
	if err != nil {
		return err
	}

	return c.JSON(members)
}

// AddMember handles POST /group_sets/:group_set_id/groups/:group_id/members.
func (s *Service) AddMember(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "group_set_id", "group_id")
	if err != nil {
		return err
	}

	var req addMemberRequest
	if err = handler.Bind(c, &req); err != nil {
		return err
	}

	member, err := s.groups.AddMember(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1], ids[2], req.ProjectID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(member)
}

// RemoveMember handles DELETE /group_sets/:group_set_id/groups/:group_id/members/:id.
// The id is the member's project.
func (s *Service) RemoveMember(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "group_set_id", "group_id", "id")
	if err != nil {
		return err
	}

	err = s.groups.RemoveMember(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1], ids[2], ids[3])
	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
