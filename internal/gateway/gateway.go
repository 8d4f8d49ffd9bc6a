// Package gateway talks to the hosted-checkout payment provider.
package gateway

import (
	"context"
	"encoding/json"
)

type CheckoutSession struct {
	ID  string
	URL string
}

// Gateway is the subset of the provider API used by payment orchestration.
// Create calls take an idempotency key so a retried orchestration reuses the
// resources created by the first attempt.
type Gateway interface {
	CreateProduct(ctx context.Context, name, idempotencyKey string) (string, error)
	CreatePrice(ctx context.Context, productID, currency string, unitAmount int64, idempotencyKey string) (string, error)
	CreateCheckoutSession(ctx context.Context, priceID, successURL, idempotencyKey string) (*CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (json.RawMessage, error)
	DeactivatePrice(ctx context.Context, priceID string) error
	DeactivateProduct(ctx context.Context, productID string) error
}
