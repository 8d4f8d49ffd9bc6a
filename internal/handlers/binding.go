package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errInvalidBody = fiber.NewError(fiber.StatusBadRequest, "Invalid request body")

// bind parses the JSON body into v and validates it.
func bind(c *fiber.Ctx, v *validation.Validator, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return v.Struct(out)
}

// pathID parses the :id route parameter. Malformed ids answer 404 like
// unknown ones.
func pathID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: "Not found."})
}

// orEmpty turns an omitted optional field into an explicit empty value so a
// full update clears it.
func orEmpty(s *string) *string {
	if s == nil {
		empty := ""
		return &empty
	}
	return s
}

func parseUUIDPtr(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}
