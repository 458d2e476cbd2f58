package core

import (
	"errors"
	"fmt"
	"net/http"
)

// CodeNoAccountLink is the machine-readable code returned when a user has
// not linked a 10bis account yet.
const CodeNoAccountLink = "NO_10BIS_ID"

// ErrEmptyInput is returned when a report month has to be inferred from
// an empty transaction list.
var ErrEmptyInput = errors.New("no transactions to derive the report month from")

// ErrReportNotFound is returned by report stores for an unknown key.
var ErrReportNotFound = errors.New("report not found")

// Request validation errors.
var (
	ErrMissingUserID      = errors.New("missing user id")
	ErrMissingCredentials = errors.New("missing email or password")
)

// MissingAccountLinkError means the user has no linked account identifier.
type MissingAccountLinkError struct {
	UserID string
}

func (e *MissingAccountLinkError) Error() string {
	return fmt.Sprintf("user %q has no linked 10bis account", e.UserID)
}

func (e *MissingAccountLinkError) StatusCode() int { return http.StatusNotFound }

func (e *MissingAccountLinkError) Code() string { return CodeNoAccountLink }

// UpstreamFetchError wraps a failure of the external transaction source.
// StatusCode and Body are set when the upstream answered at all.
type UpstreamFetchError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamFetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("upstream fetch failed with status %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("upstream fetch failed with status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("upstream fetch failed: %v", e.Err)
	default:
		return "upstream fetch failed"
	}
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

// ParseError describes a raw record that could not be turned into a Transaction.
type ParseError struct {
	Index    int
	RecordID string
	Value    string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse record %d (id %q, value %q): %v", e.Index, e.RecordID, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
