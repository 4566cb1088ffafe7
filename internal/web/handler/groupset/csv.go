package groupset

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/classgroups/classgroups/internal/fault"
	"github.com/classgroups/classgroups/internal/web/handler"
	authmiddleware "github.com/classgroups/classgroups/internal/web/middleware/auth"
)

// ExportCSV handles GET /group_sets/:group_set_id/groups/csv.
func (s *Service) ExportCSV(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "group_set_id")
	if err != nil {
		return err
	}

	out, err := s.groups.ExportCSV(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1])
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="group-set-%d.csv"`, ids[1]))

	return c.Send(out)
}

// ImportCSV handles POST /group_sets/:group_set_id/groups/csv with a multipart "file".
func (s *Service) ImportCSV(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "group_set_id")
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "A CSV file is required")
	}

	if s.maxFileSize > 0 && fh.Size > int64(s.maxFileSize) {
		return fault.Invalid("CSV file exceeds %d bytes", s.maxFileSize)
	}

	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Unable to read uploaded file")
	}

	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Unable to read uploaded file")
	}

	report, err := s.groups.ImportCSV(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1], data)
	if err != nil {
		return err
	}

	return c.JSON(report)
}

// ImportReport handles GET /group_sets/:group_set_id/groups/csv/:import_id.
func (s *Service) ImportReport(c *fiber.Ctx) error {
	ids, err := handler.ParamIDs(c, "unit_id", "group_set_id")
	if err != nil {
		return err
	}

	report, err := s.groups.ImportReportByID(c.UserContext(), authmiddleware.Actor(c), ids[0], ids[1], c.Params("import_id"))
	if err != nil {
		return err
	}

	return c.JSON(report)
}
