package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type CourseHandler struct {
	courseService *services.CourseService
	validate      *validation.Validator
	pager         Paginator
}

func NewCourseHandler(courseService *services.CourseService, validate *validation.Validator, pager Paginator) *CourseHandler {
	return &CourseHandler{courseService: courseService, validate: validate, pager: pager}
}

func (h *CourseHandler) List(c *fiber.Ctx) error {
	req, err := h.pager.parse(c)
	if err != nil {
		return writeError(c, err)
	}

	items, total, err := h.courseService.List(c.UserContext(), middleware.Identity(c), req.window())
	if err != nil {
		return writeError(c, err)
	}
	page, err := paginate(c, req, total, items)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}

func (h *CourseHandler) Create(c *fiber.Ctx) error {
	var req dto.CourseRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	course, err := h.courseService.Create(c.UserContext(), middleware.Identity(c), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

func (h *CourseHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}

	detail, err := h.courseService.Get(c.UserContext(), middleware.Identity(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(detail)
}

// Update replaces all editable fields (PUT).
func (h *CourseHandler) Update(c *fiber.Ctx) error {
	var req dto.CourseRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	return h.update(c, services.CourseChanges{
		Name:        &req.Name,
		Description: &req.Description,
		Image:       orEmpty(req.Image),
	})
}

// Patch changes only the fields present in the body.
func (h *CourseHandler) Patch(c *fiber.Ctx) error {
	var req dto.CoursePatchRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	return h.update(c, services.CourseChanges{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	})
}

func (h *CourseHandler) update(c *fiber.Ctx, changes services.CourseChanges) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}

	detail, err := h.courseService.Update(c.UserContext(), middleware.Identity(c), id, changes)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(detail)
}

func (h *CourseHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c)
	}

	if err := h.courseService.Delete(c.UserContext(), middleware.Identity(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
