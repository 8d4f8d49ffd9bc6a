package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
	validate            *validation.Validator
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService, validate *validation.Validator) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService, validate: validate}
}

func (h *SubscriptionHandler) Toggle(c *fiber.Ctx) error {
	var req dto.SubscriptionRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return writeError(c, validation.FieldErrors{"course_id": "Must be a valid UUID."})
	}

	state, err := h.subscriptionService.Toggle(c.UserContext(), middleware.Identity(c), courseID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SubscriptionResponse{Message: state.Message(), State: string(state)})
}
