// This file implements a small builder for JSON responses and the mapping
// from domain errors to error bodies.

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"lunchbudget/internal/core"
)

// Error codes returned in ErrorBody.Code.
const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeNoTransactions    = "NO_TRANSACTIONS"
	CodeBadUpstreamRecord = "BAD_UPSTREAM_RECORD"
	CodeUpstreamError     = "UPSTREAM_ERROR"
	CodeReportNotFound    = "REPORT_NOT_FOUND"
	CodeRateLimited       = "RATE_LIMITED"
	CodeTimeout           = "TIMEOUT"
	CodeInternal          = "INTERNAL_ERROR"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

func (b *JSONResponseBuilder) StatusCode() int {
	return b.statusCode
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.body != nil {
		_ = json.NewEncoder(w).Encode(b.body)
	}
}

// ErrorResponse creates an error response with the standard body.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorBody{StatusCode: statusCode, Code: code, Message: message})
}

// errorResponseFor maps err to the response the client should see.
// Unknown errors become a 500 without internal detail.
func errorResponseFor(err error) *JSONResponseBuilder {
	var (
		badReq   *badRequestError
		noLink   *core.MissingAccountLinkError
		parseErr *core.ParseError
		upstream *core.UpstreamFetchError
	)

	switch {
	case errors.As(err, &badReq):
		return ErrorResponse(http.StatusBadRequest, CodeBadRequest, badReq.Error())
	case errors.Is(err, core.ErrMissingUserID), errors.Is(err, core.ErrMissingCredentials):
		return ErrorResponse(http.StatusBadRequest, CodeBadRequest, err.Error())
	case errors.As(err, &noLink):
		return ErrorResponse(noLink.StatusCode(), noLink.Code(), noLink.Error())
	case errors.Is(err, core.ErrEmptyInput):
		return ErrorResponse(http.StatusUnprocessableEntity, CodeNoTransactions, "no transactions found for the current month")
	case errors.As(err, &parseErr):
		return ErrorResponse(http.StatusBadGateway, CodeBadUpstreamRecord, parseErr.Error())
	case errors.As(err, &upstream):
		status := upstream.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return ErrorResponse(status, CodeUpstreamError, upstream.Error())
	case errors.Is(err, core.ErrReportNotFound):
		return ErrorResponse(http.StatusNotFound, CodeReportNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorResponse(http.StatusGatewayTimeout, CodeTimeout, "request timed out")
	default:
		return ErrorResponse(http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}
