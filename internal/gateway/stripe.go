package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/upstream"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

type StripeConfig struct {
	APIKey  string
	Timeout time.Duration
	// BaseURL overrides the API endpoint (stripe-mock, tests).
	BaseURL string
}

type Stripe struct {
	api *client.API
}

func NewStripe(cfg StripeConfig) *Stripe {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	backends := stripe.NewBackends(httpClient)
	if cfg.BaseURL != "" {
		backends.API = stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			HTTPClient:        httpClient,
			URL:               stripe.String(cfg.BaseURL),
			MaxNetworkRetries: stripe.Int64(0),
		})
	}

	return &Stripe{api: client.New(cfg.APIKey, backends)}
}

func (s *Stripe) CreateProduct(ctx context.Context, name, idempotencyKey string) (string, error) {
	params := &stripe.ProductParams{Name: stripe.String(name)}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	p, err := s.api.Products.New(params)
	if err != nil {
		return "", wrap("create product", err)
	}
	return p.ID, nil
}

func (s *Stripe) CreatePrice(ctx context.Context, productID, currency string, unitAmount int64, idempotencyKey string) (string, error) {
	params := &stripe.PriceParams{
		Currency:   stripe.String(currency),
		UnitAmount: stripe.Int64(unitAmount),
		Product:    stripe.String(productID),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	p, err := s.api.Prices.New(params)
	if err != nil {
		return "", wrap("create price", err)
	}
	return p.ID, nil
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, priceID, successURL, idempotencyKey string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(successURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, wrap("create checkout session", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (s *Stripe) GetSession(ctx context.Context, sessionID string) (json.RawMessage, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.HTTPStatusCode == http.StatusNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, wrap("retrieve checkout session", err)
	}
	if sess.LastResponse != nil && len(sess.LastResponse.RawJSON) > 0 {
		return json.RawMessage(sess.LastResponse.RawJSON), nil
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *Stripe) DeactivatePrice(ctx context.Context, priceID string) error {
	params := &stripe.PriceParams{Active: stripe.Bool(false)}
	params.Context = ctx
	if _, err := s.api.Prices.Update(priceID, params); err != nil {
		return wrap("deactivate price", err)
	}
	return nil
}

// DeactivateProduct archives the product; products with prices cannot be deleted.
func (s *Stripe) DeactivateProduct(ctx context.Context, productID string) error {
	params := &stripe.ProductParams{Active: stripe.Bool(false)}
	params.Context = ctx
	if _, err := s.api.Products.Update(productID, params); err != nil {
		return wrap("deactivate product", err)
	}
	return nil
}

var ErrSessionNotFound = errors.New("checkout session not found")

func wrap(op string, err error) error {
	ue := upstream.New(upstream.Gateway, op, err)
	var serr *stripe.Error
	if errors.As(err, &serr) {
		ue.Status = serr.HTTPStatusCode
	}
	return ue
}
