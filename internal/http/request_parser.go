// Package http provides the JSON API of the lunch budget service.
//
// This file implements decoding and validation of request bodies and
// query parameters.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxBodyBytes = 1 << 20

// badRequestError is a client error whose message is safe to return.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

type updateUserRequest struct {
	UserID string `json:"userId"`
	Phone  string `json:"phone"`
}

type tenbisLoginRequest struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type transactionsRequest struct {
	UserID    string `json:"userId"`
	TenbisUID string `json:"tenbisUid,omitempty"`
}

// ReportQuery holds the parameters of GET /reports.
type ReportQuery struct {
	UserID string
	Year   int
	Month  time.Month
}

// decodeJSONBody decodes exactly one JSON object from r into dst.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return badRequest("request body is empty")
		case errors.As(err, &maxErr):
			return badRequest("request body exceeds %d bytes", maxErr.Limit)
		default:
			return badRequest("malformed JSON body: %v", err)
		}
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

// ParseReportQuery validates userId, year and month. Year and month
// default to the month of now.
func ParseReportQuery(query url.Values, now time.Time) (ReportQuery, error) {
	q := ReportQuery{
		UserID: sanitizeInput(query.Get("userId")),
		Year:   now.Year(),
		Month:  now.Month(),
	}
	if q.UserID == "" {
		return ReportQuery{}, badRequest("userId is required")
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			return ReportQuery{}, badRequest("invalid year %q", v)
		}
		q.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return ReportQuery{}, badRequest("invalid month %q", v)
		}
		q.Month = time.Month(m)
	}
	return q, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
