package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	validate    *validation.Validator
}

func NewAuthHandler(authService *services.AuthService, validate *validation.Validator) *AuthHandler {
	return &AuthHandler{authService: authService, validate: validate}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	user, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	resp, err := h.authService.Refresh(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}
