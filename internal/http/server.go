package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"lunchbudget/internal/core"
	"lunchbudget/internal/log"
)

const requestIDHeader = "X-Request-ID"

// ReportAPI is the report pipeline as seen by the handlers.
type ReportAPI interface {
	MonthlySummary(ctx context.Context, userID, accountID string) (core.Report, error)
	UpdateReport(ctx context.Context, userID string) (core.Report, error)
	GetReport(ctx context.Context, userID string, year int, month time.Month) (core.Report, error)
	LinkAccount(ctx context.Context, userID, email, password string) error
	UpdatePhone(ctx context.Context, userID, phone string) error
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ServerConfig struct {
	Addr string
	// RateLimit is the number of POST requests allowed per client IP and
	// minute. Zero means 60.
	RateLimit int
	Now       func() time.Time
}

type Server struct {
	http.Server
	reports     ReportAPI
	store       Pinger
	rateLimiter *rateLimiter
	logger      *log.Logger
	now         func() time.Time
	startedAt   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg ServerConfig, reports ReportAPI, store Pinger, logger *log.Logger) *Server {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		reports:     reports,
		store:       store,
		rateLimiter: newRateLimiter(cfg.RateLimit),
		logger:      logger.WithComponent(log.ComponentHTTP),
		now:         cfg.Now,
		startedAt:   cfg.Now(),
	}
	go s.rateLimiter.startCleanup(5 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /users", s.handleUpdateUser)
	mux.HandleFunc("POST /tenbis/login", s.handleTenbisLogin)
	mux.HandleFunc("POST /transactions", s.handleTransactions)
	mux.HandleFunc("POST /transactions/update", s.handleUpdateTransactions)
	mux.HandleFunc("GET /reports", s.handleGetReport)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.withMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// withMiddleware assigns a request id, rate limits POST requests per
// client IP, sets security headers and logs the finished request.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	withLogger := log.RequestIDMiddleware(s.logger, func(r *http.Request) string {
		return r.Header.Get(requestIDHeader)
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := sanitizeInput(r.Header.Get(requestIDHeader))
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		r.Header.Set(requestIDHeader, requestID)
		w.Header().Set(requestIDHeader, requestID)
		setSecurityHeaders(w)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldRequestID, requestID,
				"path", r.URL.Path)
			ErrorResponse(http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, try again later").
				Header("Retry-After", "60").
				Write(rw)
		} else {
			withLogger.ServeHTTP(rw, r)
		}

		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		log.NewStructuredLogger(reqLogger).
			LogHTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
