// Package classifier turns raw 10bis records into typed transactions and
// decides which of them count as lunch.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"lunchbudget/internal/core"
	"lunchbudget/internal/tenbis"
)

// DefaultCutoffHour is the first local hour that no longer counts as lunch.
const DefaultCutoffHour = 17

// ParsePolicy decides what happens to a batch containing a bad record.
type ParsePolicy string

const (
	// SkipInvalid logs and drops bad records.
	SkipInvalid ParsePolicy = "skip"
	// FailBatch rejects the whole batch on the first bad record.
	FailBatch ParsePolicy = "fail"
)

func (p ParsePolicy) IsValid() bool {
	return p == SkipInvalid || p == FailBatch
}

var digitsRe = regexp.MustCompile(`\d+`)

type Classifier struct {
	loc        *time.Location
	cutoffHour int
	policy     ParsePolicy
}

func New(loc *time.Location, cutoffHour int, policy ParsePolicy) *Classifier {
	if !policy.IsValid() {
		policy = SkipInvalid
	}
	return &Classifier{loc: loc, cutoffHour: cutoffHour, policy: policy}
}

// Parse maps raw records to transactions, preserving their order. An empty
// or nil input yields an empty result.
func (c *Classifier) Parse(ctx context.Context, records []tenbis.RawTransaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(records))
	skipped := 0
	for i, rec := range records {
		tx, err := c.parseRecord(i, rec)
		if err != nil {
			if c.policy == FailBatch {
				return nil, err
			}
			skipped++
			slog.WarnContext(ctx, "Skipping unparseable transaction record",
				"index", i,
				"transaction_id", rec.TransactionID.String(),
				"error", err)
			continue
		}
		out = append(out, tx)
	}
	if skipped > 0 {
		slog.InfoContext(ctx, "Parsed transactions with skipped records",
			"parsed", len(out),
			"skipped", skipped)
	}
	return out, nil
}

func (c *Classifier) parseRecord(index int, rec tenbis.RawTransaction) (core.Transaction, error) {
	ts, err := c.ParseTimestamp(rec.TransactionDate)
	if err != nil {
		return core.Transaction{}, &core.ParseError{
			Index:    index,
			RecordID: rec.TransactionID.String(),
			Value:    rec.TransactionDate,
			Err:      err,
		}
	}
	amount, err := decimal.NewFromString(rec.TransactionAmount.String())
	if err != nil {
		return core.Transaction{}, &core.ParseError{
			Index:    index,
			RecordID: rec.TransactionID.String(),
			Value:    rec.TransactionAmount.String(),
			Err:      core.ErrInvalidAmount,
		}
	}
	tx := core.Transaction{
		ID:            rec.TransactionID.String(),
		Timestamp:     ts,
		VendorName:    rec.ResName,
		VendorLogoURL: rec.ResLogoURL,
		Amount:        amount,
		OrderType:     rec.TransactionType.String(),
		PaymentMethod: rec.PaymentMethod.String(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, &core.ParseError{
			Index:    index,
			RecordID: tx.ID,
			Value:    rec.TransactionAmount.String(),
			Err:      err,
		}
	}
	return tx, nil
}

// ParseTimestamp takes the first run of digits in raw as epoch milliseconds,
// e.g. "/Date(1699999999000)/", and returns it in the classifier's zone.
func (c *Classifier) ParseTimestamp(raw string) (time.Time, error) {
	digits := digitsRe.FindString(raw)
	if digits == "" {
		return time.Time{}, core.ErrInvalidTimestamp
	}
	ms, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", core.ErrInvalidTimestamp, err)
	}
	return time.UnixMilli(ms).In(c.loc), nil
}

// IsLunch reports whether the transaction happened before the cutoff hour,
// local time.
func (c *Classifier) IsLunch(t core.Transaction) bool {
	return c.BeforeCutoff(t.Timestamp)
}

// BeforeCutoff reports whether t's local hour is earlier than the cutoff.
func (c *Classifier) BeforeCutoff(t time.Time) bool {
	return t.In(c.loc).Hour() < c.cutoffHour
}

// Lunches returns the lunch transactions in their original order.
func (c *Classifier) Lunches(txs []core.Transaction) []core.Transaction {
	var out []core.Transaction
	for _, t := range txs {
		if c.IsLunch(t) {
			out = append(out, t)
		}
	}
	return out
}

// Location returns the zone timestamps are rendered in.
func (c *Classifier) Location() *time.Location {
	return c.loc
}
