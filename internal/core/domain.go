package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Transaction is one parsed food-delivery order. Timestamp is always
	// expressed in the configured zone (Asia/Jerusalem by default).
	Transaction struct {
		ID            string
		Timestamp     time.Time
		VendorName    string
		VendorLogoURL string
		Amount        decimal.Decimal
		OrderType     string
		PaymentMethod string
	}

	// Holiday is a named Hebrew-calendar event on a Gregorian date.
	Holiday struct {
		Name string
		Date time.Time
	}
)

var (
	ErrMissingID        = errors.New("missing transaction id")
	ErrInvalidTimestamp = errors.New("transaction date has no embedded timestamp")
	ErrInvalidAmount    = errors.New("transaction amount is not a number")
	ErrNegativeAmount   = errors.New("negative transaction amount")
)

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if t.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// SameDay reports whether a and b fall on the same calendar date in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay returns midnight of t's date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
