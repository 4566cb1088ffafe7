// Package groupset serves the group set, group and membership API of a unit.
package groupset

import (
	"github.com/gofiber/fiber/v2"

	controller "github.com/classgroups/classgroups/internal/db/controller/groupset"
	"github.com/classgroups/classgroups/internal/groups"
	"github.com/classgroups/classgroups/internal/web/handler"
	authmiddleware "github.com/classgroups/classgroups/internal/web/middleware/auth"
)

// Service is the group set handler service.
type Service struct {
	handler.Service
	groups      *groups.Service
	maxFileSize int
}

// New creates the handler for the group engine. maxFileSize limits CSV uploads.
func New(svc *groups.Service, maxFileSize int) *Service {
	if svc == nil {
		panic(handler.ErrNilServiceFatalLogMsg)
	}

	return &Service{groups: svc, maxFileSize: maxFileSize}
}

// Register adds the routes to a unit scoped router.
func (s *Service) Register(router fiber.Router) {
	router.Post("/group_sets", s.CreateGroupSet)
	router.Put("/group_sets/:id", s.UpdateGroupSet)
	router.Delete("/group_sets/:id", s.DeleteGroupSet)
	router.Get("/group_sets/:id/groups", s.ListGroups)

	router.Route("/group_sets/:group_set_id/groups", func(r fiber.Router) {
		r.Get("/csv", s.ExportCSV)
		r.Post("/csv", s.ImportCSV)
		r.Get("/csv/:import_id", s.ImportReport)
		r.Post(handler.RouterRootPath, s.CreateGroup)
		r.Put("/:group_id", s.UpdateGroup)
		r.Delete("/:group_id", s.DeleteGroup)
		r.Get("/:group_id/members", s.Members)
		r.Post("/:group_id/members", s.AddMember)
		r.Delete("/:group_id/members/:id", s.RemoveMember)
	})
}

// CreateGroupSet handles POST /group_sets.
func (s *Service) CreateGroupSet(c *fiber.Ctx) error {
	unitID, err := handler.ParamID(c, "unit_id")
	if err != nil {
		return err
	}

	var req createGroupSetRequest
	if err = handler.Bind(c, &req); err != nil {
		return err
	}

	in := req.GroupSet
	gs, err := s.groups.CreateGroupSet(c.UserContext(), authmiddleware.Actor(c), unitID, groups.GroupSetParams{
		Name:                        in.Name,
		AllowStudentsToCreateGroups: in.AllowStudentsToCreateGroups,
		AllowStudentsToManageGroups: in.AllowStudentsToManageGroups,
		KeepGroupsInSameClass:       in.KeepGroupsInSameClass,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(gs)
}

// UpdateGroupSet handles PUT /group_sets/:id.
func (s *Service) UpdateGroupSet(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "id")
	if err != nil {
		return err
	}

	var req updateGroupSetRequest
	if err = handler.Bind(c, &req); err != nil {
		return err
	}

	in := req.GroupSet
	gs, err := s.groups.UpdateGroupSet(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1], controller.Changes{
		Name:                        in.Name,
		AllowStudentsToCreateGroups: in.AllowStudentsToCreateGroups,
		AllowStudentsToManageGroups: in.AllowStudentsToManageGroups,
		KeepGroupsInSameClass:       in.KeepGroupsInSameClass,
	})
	if err != nil {
		return err
	}

	return c.JSON(gs)
}

// DeleteGroupSet handles DELETE /group_sets/:id.
func (s *Service) DeleteGroupSet(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "id")
	if err != nil {
		return err
	}

	if err = s.groups.DeleteGroupSet(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1]); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListGroups handles GET /group_sets/:id/groups.
func (s *Service) ListGroups(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "id")
	if err != nil {
		return err
	}

	list, err := s.groups.ListGroups(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1])
	if err != nil {
		return err
	}

	return c.JSON(list)
}
