package dto

type PaymentRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0,lt=100000000"`
	PaymentType string  `json:"payment_type" validate:"required,oneof=cash transfer stripe"`
	Course      *string `json:"course" validate:"omitempty,uuid"`
	Lesson      *string `json:"lesson" validate:"omitempty,uuid"`
}
