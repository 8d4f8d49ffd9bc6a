// Package upstream defines the error returned when an external dependency
// (exchange-rate API, payment gateway) fails.
package upstream

import (
	"errors"
	"fmt"
)

type Service string

const (
	ExchangeRate Service = "exchange_rate"
	Gateway      Service = "payment_gateway"
)

type Error struct {
	Service Service
	Op      string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Service, e.Op)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(service Service, op string, err error) *Error {
	return &Error{Service: service, Op: op, Err: err}
}

// As reports whether err carries an upstream failure and returns it.
func As(err error) (*Error, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
