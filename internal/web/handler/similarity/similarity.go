// Package similarity serves the plagiarism match link API of a unit.
package similarity

import (
	"github.com/gofiber/fiber/v2"

	"github.com/classgroups/classgroups/internal/similarity"
	"github.com/classgroups/classgroups/internal/web/handler"
	authmiddleware "github.com/classgroups/classgroups/internal/web/middleware/auth"
)

// Service is the similarity handler service.
type Service struct {
	handler.Service
	similarity *similarity.Service
}

// New creates the handler for the similarity engine.
func New(svc *similarity.Service) *Service {
	if svc == nil {
		panic(handler.ErrNilServiceFatalLogMsg)
	}

	return &Service{similarity: svc}
}

type createRequest struct {
	TaskID      uint   `json:"task_id" validate:"required"`
	OtherTaskID uint   `json:"other_task_id" validate:"required,nefield=TaskID"`
	Pct         int    `json:"pct" validate:"min=0,max=100"`
	Report      string `json:"report"`
	OtherReport string `json:"other_report"`
}

type dismissRequest struct {
	Dismissed *bool `json:"dismissed" validate:"required"`
}

// Register adds the routes to a unit scoped router.
func (s *Service) Register(router fiber.Router) {
	router.Route("/similarities", func(r fiber.Router) {
		r.Post(handler.RouterRootPath, s.Create)
		r.Put("/:id", s.Dismiss)
		r.Delete("/:id", s.Delete)
		r.Get("/:id/evidence", s.Evidence)
	})
}

// Create handles POST /similarities.
func (s *Service) Create(c *fiber.Ctx) error {
	unitID, err := handler.ParamID(c, "unit_id")
	if err != nil {
		return err
	}

	var req createRequest
	if err = handler.Bind(c, &req); err != nil {
		return err
	}

	link, err := s.similarity.CreatePair(c.UserContext(), authmiddleware.Actor(c), unitID, similarity.PairInput{
		TaskID:      req.TaskID,
		OtherTaskID: req.OtherTaskID,
		Pct:         req.Pct,
		Report:      []byte(req.Report),
		OtherReport: []byte(req.OtherReport),
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(link)
}

// Dismiss handles PUT /similarities/:id.
func (s *Service) Dismiss(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "id")
	if err != nil {
		return err
	}

	var req dismissRequest
	if err = handler.Bind(c, &req); err != nil {
		return err
	}

	link, err := s.similarity.DismissPair(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1], *req.Dismissed)
	if err != nil {
		return err
	}

	return c.JSON(link)
}

// Delete handles DELETE /similarities/:id.
func (s *Service) Delete(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "id")
	if err != nil {
		return err
	}

	if err = s.similarity.DeletePair(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1]); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Evidence handles GET /similarities/:id/evidence.
func (s *Service) Evidence(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "id")
	if err != nil {
		return err
	}

	out, err := s.similarity.Evidence(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1])
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)

	return c.Send(out)
}
