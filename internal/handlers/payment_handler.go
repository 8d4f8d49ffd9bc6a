package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/upstream"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/validation"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	validate       *validation.Validator
	pager          Paginator
}

func NewPaymentHandler(paymentService *services.PaymentService, validate *validation.Validator, pager Paginator) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, validate: validate, pager: pager}
}

func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	var req dto.PaymentRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	payment, err := h.paymentService.Create(c.UserContext(), middleware.Identity(c), services.PaymentInput{
		Amount:      req.Amount,
		PaymentType: models.PaymentType(req.PaymentType),
		CourseID:    parseUUIDPtr(req.Course),
		LessonID:    parseUUIDPtr(req.Lesson),
	})
	if ue, ok := upstream.As(err); ok {
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		return c.Status(fiber.StatusBadGateway).JSON(dto.UpstreamErrorResponse{
			Error:    true,
			Message:  "Payment was saved but the checkout session could not be created",
			Upstream: string(ue.Service),
			Payment:  payment,
		})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

func (h *PaymentHandler) List(c *fiber.Ctx) error {
	req, err := h.pager.parse(c)
	if err != nil {
		return writeError(c, err)
	}

	filter := services.PaymentFilter{
		PaymentType: c.Query("payment_type"),
		Ordering:    c.Query("ordering"),
	}
	fields := validation.FieldErrors{}
	for _, q := range []struct {
		key string
		dst **uuid.UUID
	}{{"course", &filter.CourseID}, {"lesson", &filter.LessonID}} {
		raw := c.Query(q.key)
		if raw == "" {
			continue
		}
		if *q.dst = parseUUIDPtr(&raw); *q.dst == nil {
			fields[q.key] = "Must be a valid UUID."
		}
	}
	if len(fields) > 0 {
		return writeError(c, fields)
	}

	payments, total, err := h.paymentService.List(c.UserContext(), middleware.Identity(c), filter, req.window())
	if err != nil {
		return writeError(c, err)
	}
	page, err := paginate(c, req, total, payments)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}

func (h *PaymentHandler) Session(c *fiber.Ctx) error {
	raw, err := h.paymentService.GetSession(c.UserContext(), middleware.Identity(c), c.Params("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}
