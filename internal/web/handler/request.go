// Package handler holds what the API handlers share: route constants,
// path parameter parsing and request body binding.
package handler

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/classgroups/classgroups/internal/fault"
)

var validate = newValidator()

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// ParamID parses a numeric path parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 0)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}

	return uint(id), nil
}

// ParamIDs parses several numeric path parameters in order.
func ParamIDs(c *fiber.Ctx, names ...string) ([]uint, error) {
	ids := make([]uint, len(names))

	for i, name := range names {
		id, err := ParamID(c, name)
		if err != nil {
			return nil, err
		}

		ids[i] = id
	}

	return ids, nil
}

// Bind parses the JSON body into v and validates it.
// A malformed body is a 400; a body breaking the validation tags is a validation failure.
func Bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	return Validate(v)
}

// Validate checks v against its validation tags.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fault.Validation(err)
	}

	messages := make([]string, len(validationErrors))
	for i, ve := range validationErrors {
		messages[i] = "Field '" + ve.Field() + "' failed validation tag '" + ve.Tag() + "'"
	}

	return fault.Invalid("%s", strings.Join(messages, "; "))
}
