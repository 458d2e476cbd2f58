package http

import (
	"context"
	"net/http"
	"time"

	"lunchbudget/internal/log"
)

const readinessTimeout = 5 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports 503 while the store is unreachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status, httpStatus := "ready", http.StatusOK
	checks := map[string]any{
		"rate_limiter": map[string]any{"active_clients": s.rateLimiter.activeClients()},
	}

	if s.store == nil {
		checks["store"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else if err := s.store.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	NewJSONResponse().Status(httpStatus).Body(map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}
	userID := sanitizeInput(req.UserID)
	if err := s.reports.UpdatePhone(r.Context(), userID, sanitizeInput(req.Phone)); err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}
	NewJSONResponse().Body(statusResponse{Status: "ok", UserID: userID}).Write(w)
}

func (s *Server) handleTenbisLogin(w http.ResponseWriter, r *http.Request) {
	var req tenbisLoginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.writeError(w, r, err, log.OpLink)
		return
	}
	userID := sanitizeInput(req.UserID)
	if err := s.reports.LinkAccount(r.Context(), userID, sanitizeInput(req.Email), req.Password); err != nil {
		s.writeError(w, r, err, log.OpLink)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Account linked", log.FieldUserID, userID)
	NewJSONResponse().Body(statusResponse{Status: "linked", UserID: userID}).Write(w)
}

// handleTransactions computes the current month's report without storing it.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	var req transactionsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.writeError(w, r, err, log.OpCompute)
		return
	}
	report, err := s.reports.MonthlySummary(r.Context(), sanitizeInput(req.UserID), sanitizeInput(req.TenbisUID))
	if err != nil {
		s.writeError(w, r, err, log.OpCompute)
		return
	}
	NewJSONResponse().Body(toReportResponse(report)).Write(w)
}

// handleUpdateTransactions recomputes and persists the report, answering 202.
func (s *Server) handleUpdateTransactions(w http.ResponseWriter, r *http.Request) {
	var req transactionsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}
	report, err := s.reports.UpdateReport(r.Context(), sanitizeInput(req.UserID))
	if err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}
	NewJSONResponse().
		Status(http.StatusAccepted).
		Body(toSummaryResponse(report.Summary)).
		Write(w)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	q, err := ParseReportQuery(r.URL.Query(), s.now())
	if err != nil {
		s.writeError(w, r, err, log.OpRead)
		return
	}
	report, err := s.reports.GetReport(r.Context(), q.UserID, q.Year, q.Month)
	if err != nil {
		s.writeError(w, r, err, log.OpRead)
		return
	}
	NewJSONResponse().Body(toReportResponse(report)).Write(w)
}

// writeError maps err to a response. Server-side failures are logged with
// the full error; client errors only at debug.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	resp := errorResponseFor(err)
	ctx := r.Context()
	logger := log.FromContext(ctx)
	if resp.StatusCode() >= http.StatusInternalServerError {
		log.NewStructuredLogger(logger).LogError(ctx, "Request failed", err, operation,
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")))
	} else {
		logger.DebugContext(ctx, "Request rejected", log.FieldError, err, log.FieldOperation, operation)
	}
	resp.Write(w)
}
