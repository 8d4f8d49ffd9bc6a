package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/policy"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const gatewayProductName = "Stripe product"

type RateConverter interface {
	ToUSDCents(ctx context.Context, amount float64) (int64, error)
}

type PaymentConfig struct {
	SuccessURL string
	Timeout    time.Duration
}

type PaymentInput struct {
	Amount      float64
	PaymentType models.PaymentType
	CourseID    *uuid.UUID
	LessonID    *uuid.UUID
}

type PaymentFilter struct {
	CourseID    *uuid.UUID
	LessonID    *uuid.UUID
	PaymentType string
	// Ordering is "payment_date" or "-payment_date"; anything else sorts ascending.
	Ordering string
}

type PaymentService struct {
	db        *gorm.DB
	converter RateConverter
	gateway   gateway.Gateway
	cfg       PaymentConfig
	logger    *slog.Logger
}

func NewPaymentService(db *gorm.DB, converter RateConverter, gw gateway.Gateway, cfg PaymentConfig, logger *slog.Logger) *PaymentService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &PaymentService{db: db, converter: converter, gateway: gw, cfg: cfg, logger: logger}
}

// Create persists the payment and, for gateway payments, opens a hosted
// checkout session. When an upstream call fails the persisted payment is
// returned together with an *upstream.Error; it keeps no session or link.
func (s *PaymentService) Create(ctx context.Context, id *policy.Identity, in PaymentInput) (*models.Payment, error) {
	if id == nil {
		return nil, ErrUnauthenticated
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	payment := models.Payment{
		UserID:      &id.UserID,
		CourseID:    in.CourseID,
		LessonID:    in.LessonID,
		Amount:      in.Amount,
		PaymentType: in.PaymentType,
	}
	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, err
	}

	if payment.PaymentType != models.PaymentStripe {
		return &payment, nil
	}

	sess, err := s.checkout(ctx, &payment)
	if err != nil {
		s.logger.Error("payment checkout failed",
			"action", "create_payment",
			"payment_id", payment.ID.String(),
			"user_id", id.UserID.String(),
			"error", err.Error(),
		)
		return &payment, err
	}

	if err := s.db.WithContext(ctx).Model(&payment).Updates(map[string]any{
		"session_id": sess.ID,
		"link":       sess.URL,
	}).Error; err != nil {
		return &payment, fmt.Errorf("failed to store checkout session: %w", err)
	}
	payment.SessionID = &sess.ID
	payment.Link = &sess.URL
	return &payment, nil
}

// checkout runs rate conversion, product, price and session creation. Each
// gateway call is keyed by payment id and step. Products and prices created
// before a failing step are deactivated.
func (s *PaymentService) checkout(ctx context.Context, p *models.Payment) (*gateway.CheckoutSession, error) {
	var cents int64
	err := s.call(ctx, func(ctx context.Context) (err error) {
		cents, err = s.converter.ToUSDCents(ctx, p.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}

	var productID, priceID string
	compensate := func() {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Timeout)
		defer cancel()
		if priceID != "" {
			if err := s.gateway.DeactivatePrice(cctx, priceID); err != nil {
				s.logger.Warn("failed to deactivate price", "payment_id", p.ID.String(), "price_id", priceID, "error", err)
			}
		}
		if productID != "" {
			if err := s.gateway.DeactivateProduct(cctx, productID); err != nil {
				s.logger.Warn("failed to deactivate product", "payment_id", p.ID.String(), "product_id", productID, "error", err)
			}
		}
	}

	err = s.call(ctx, func(ctx context.Context) (err error) {
		productID, err = s.gateway.CreateProduct(ctx, gatewayProductName, idempotencyKey(p.ID, "product"))
		return err
	})
	if err != nil {
		return nil, err
	}

	err = s.call(ctx, func(ctx context.Context) (err error) {
		priceID, err = s.gateway.CreatePrice(ctx, productID, "usd", cents, idempotencyKey(p.ID, "price"))
		return err
	})
	if err != nil {
		compensate()
		return nil, err
	}

	var sess *gateway.CheckoutSession
	err = s.call(ctx, func(ctx context.Context) (err error) {
		sess, err = s.gateway.CreateCheckoutSession(ctx, priceID, s.cfg.SuccessURL, idempotencyKey(p.ID, "session"))
		return err
	})
	if err != nil {
		compensate()
		return nil, err
	}
	return sess, nil
}

func (s *PaymentService) call(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	return fn(ctx)
}

func idempotencyKey(paymentID uuid.UUID, step string) string {
	return "payment-" + paymentID.String() + "-" + step
}

func (s *PaymentService) validate(ctx context.Context, in PaymentInput) error {
	fields := validation.FieldErrors{}
	if in.Amount <= 0 {
		fields["amount"] = "Ensure this value is greater than 0."
	}
	if !in.PaymentType.Valid() {
		fields["payment_type"] = fmt.Sprintf("\"%s\" is not a valid choice.", in.PaymentType)
	}
	if in.CourseID != nil {
		if ok, err := s.exists(ctx, &models.Course{}, *in.CourseID); err != nil {
			return err
		} else if !ok {
			fields["course"] = "Invalid pk \"" + in.CourseID.String() + "\" - object does not exist."
		}
	}
	if in.LessonID != nil {
		if ok, err := s.exists(ctx, &models.Lesson{}, *in.LessonID); err != nil {
			return err
		} else if !ok {
			fields["lesson"] = "Invalid pk \"" + in.LessonID.String() + "\" - object does not exist."
		}
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

func (s *PaymentService) exists(ctx context.Context, model any, id uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// List returns the caller's payments; moderators see every payment.
func (s *PaymentService) List(ctx context.Context, id *policy.Identity, filter PaymentFilter, page Page) ([]models.Payment, int64, error) {
	if id == nil {
		return nil, 0, ErrUnauthenticated
	}

	db := s.db.WithContext(ctx).Model(&models.Payment{})
	if !policy.Moderator(id, nil) {
		db = db.Where("user_id = ?", id.UserID)
	}
	if filter.CourseID != nil {
		db = db.Where("course_id = ?", *filter.CourseID)
	}
	if filter.LessonID != nil {
		db = db.Where("lesson_id = ?", *filter.LessonID)
	}
	if filter.PaymentType != "" {
		db = db.Where("payment_type = ?", filter.PaymentType)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "payment_date, id"
	if strings.TrimSpace(filter.Ordering) == "-payment_date" {
		order = "payment_date DESC, id DESC"
	}

	payments := []models.Payment{}
	if err := db.Order(order).Offset(page.Offset).Limit(page.Limit).Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// GetSession returns the gateway's checkout session payload as-is.
func (s *PaymentService) GetSession(ctx context.Context, id *policy.Identity, sessionID string) (json.RawMessage, error) {
	if id == nil {
		return nil, ErrUnauthenticated
	}

	var raw json.RawMessage
	err := s.call(ctx, func(ctx context.Context) (err error) {
		raw, err = s.gateway.GetSession(ctx, sessionID)
		return err
	})
	if errors.Is(err, gateway.ErrSessionNotFound) {
		return nil, ErrSessionNotFound
	}
	return raw, err
}
