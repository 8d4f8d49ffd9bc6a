package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type LessonHandler struct {
	lessonService *services.LessonService
	validate      *validation.Validator
	pager         Paginator
}

func NewLessonHandler(lessonService *services.LessonService, validate *validation.Validator, pager Paginator) *LessonHandler {
	return &LessonHandler{lessonService: lessonService, validate: validate, pager: pager}
}

func (h *LessonHandler) List(c *fiber.Ctx) error {
	req, err := h.pager.parse(c)
	if err != nil {
		return writeError(c, err)
	}

	lessons, total, err := h.lessonService.List(c.UserContext(), middleware.Identity(c), req.window())
	if err != nil {
		return writeError(c, err)
	}
	page, err := paginate(c, req, total, lessons)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}

func (h *LessonHandler) Create(c *fiber.Ctx) error {
	var req dto.LessonRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	lesson, err := h.lessonService.Create(c.UserContext(), middleware.Identity(c), services.LessonInput{
		Name:        &req.Name,
		Description: &req.Description,
		Image:       req.Image,
		Link:        req.Link,
		CourseID:    parseUUIDPtr(&req.Course),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lesson)
}

func (h *LessonHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}

	lesson, err := h.lessonService.Get(c.UserContext(), middleware.Identity(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(lesson)
}

func (h *LessonHandler) Update(c *fiber.Ctx) error {
	var req dto.LessonRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	return h.update(c, services.LessonInput{
		Name:        &req.Name,
		Description: &req.Description,
		Image:       orEmpty(req.Image),
		Link:        orEmpty(req.Link),
		CourseID:    parseUUIDPtr(&req.Course),
	})
}

func (h *LessonHandler) Patch(c *fiber.Ctx) error {
	var req dto.LessonPatchRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	return h.update(c, services.LessonInput{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Link:        req.Link,
		CourseID:    parseUUIDPtr(req.Course),
	})
}

func (h *LessonHandler) update(c *fiber.Ctx, in services.LessonInput) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}

	lesson, err := h.lessonService.Update(c.UserContext(), middleware.Identity(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(lesson)
}

func (h *LessonHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}

	if err := h.lessonService.Delete(c.UserContext(), middleware.Identity(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
