package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
	validate    *validation.Validator
	pager       Paginator
}

func NewUserHandler(userService *services.UserService, validate *validation.Validator, pager Paginator) *UserHandler {
	return &UserHandler{userService: userService, validate: validate, pager: pager}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	req, err := h.pager.parse(c)
	if err != nil {
		return writeError(c, err)
	}

	users, total, err := h.userService.List(c.UserContext(), middleware.Identity(c), req.window())
	if err != nil {
		return writeError(c, err)
	}
	page, err := paginate(c, req, total, users)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}

	user, err := h.userService.Get(c.UserContext(), middleware.Identity(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(user)
}

// Update serves PUT and PATCH.
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}

	var req dto.UserUpdateRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	user, err := h.userService.Update(c.UserContext(), middleware.Identity(c), id, &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}

	if err := h.userService.Delete(c.UserContext(), middleware.Identity(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
