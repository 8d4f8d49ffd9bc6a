package dto

import "github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"

type ErrorResponse struct {
	Error   bool              `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// UpstreamErrorResponse is returned when an exchange-rate or gateway call
// fails after the payment was persisted.
type UpstreamErrorResponse struct {
	Error    bool            `json:"error"`
	Message  string          `json:"message"`
	Upstream string          `json:"upstream"`
	Payment  *models.Payment `json:"payment,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

// Page is the paginated list envelope.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
