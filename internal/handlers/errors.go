package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/upstream"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

var errInvalidPage = errors.New("Invalid page.")

// ErrorHandler is the Fiber error handler. Details of 5xx errors are logged
// and hidden from the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error",
			"request_id", requestID(c),
			"method", c.Method(),
			"path", c.Path(),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// writeError maps service errors to responses. Unknown errors fall through
// to ErrorHandler.
func writeError(c *fiber.Ctx, err error) error {
	var fields validation.FieldErrors
	if errors.As(err, &fields) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Validation failed", Fields: fields,
		})
	}
	if ue, ok := upstream.As(err); ok {
		return c.Status(fiber.StatusBadGateway).JSON(dto.UpstreamErrorResponse{
			Error: true, Message: "Upstream service unavailable", Upstream: string(ue.Service),
		})
	}

	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return errorJSON(c, fiber.StatusUnauthorized, "Authentication credentials were not provided.")
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return errorJSON(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return errorJSON(c, fiber.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, services.ErrCannotEditUser),
		errors.Is(err, services.ErrCannotDeleteUser):
		return errorJSON(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrLessonNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrSessionNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Not found.")
	case errors.Is(err, errInvalidPage):
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		return errorJSON(c, fiber.StatusConflict, err.Error())
	}
	return err
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return ""
}
