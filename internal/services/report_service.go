package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"lunchbudget/internal/budget"
	"lunchbudget/internal/cache"
	"lunchbudget/internal/classifier"
	"lunchbudget/internal/core"
	"lunchbudget/internal/log"
	"lunchbudget/internal/storage"
	"lunchbudget/internal/tenbis"
)

// TransactionSource is the 10bis API as seen by the report pipeline.
type TransactionSource interface {
	FetchTransactions(ctx context.Context, accountID string) ([]tenbis.RawTransaction, error)
	Login(ctx context.Context, email, password string) (accountID string, err error)
}

// ReportPublisher announces persisted reports.
type ReportPublisher interface {
	PublishReportUpdated(ctx context.Context, userID string, year int, month time.Month) error
}

type ReportDeps struct {
	Source     TransactionSource
	Links      storage.AccountLinkStore
	Reports    storage.ReportStore
	Classifier *classifier.Classifier
	Aggregator *budget.Aggregator
	// Cache holds raw records per account id; nil disables caching.
	Cache cache.Cache[[]tenbis.RawTransaction]
	// Publisher is optional.
	Publisher ReportPublisher
	Logger    *log.Logger
}

type ReportConfig struct {
	RefreshConcurrency int
	// Now supplies referenceNow for each computation. Defaults to time.Now.
	Now func() time.Time
}

// RefreshResult counts the outcome of a RefreshAll run.
type RefreshResult struct {
	Total     int
	Succeeded int
	Failed    int
}

// ReportService fetches, classifies, aggregates and persists monthly
// lunch reports.
type ReportService struct {
	deps ReportDeps
	cfg  ReportConfig
	log  *log.StructuredLogger
}

func NewReportService(deps ReportDeps, cfg ReportConfig) *ReportService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RefreshConcurrency < 1 {
		cfg.RefreshConcurrency = 1
	}
	if deps.Logger == nil {
		deps.Logger = log.New(log.DefaultConfig())
	}
	return &ReportService{
		deps: deps,
		cfg:  cfg,
		log:  log.NewStructuredLogger(deps.Logger.WithComponent(log.ComponentReport)),
	}
}

// MonthlySummary computes the current report for userID. A non-empty
// accountID is used as-is; otherwise the stored link is looked up.
func (s *ReportService) MonthlySummary(ctx context.Context, userID, accountID string) (core.Report, error) {
	if strings.TrimSpace(userID) == "" && strings.TrimSpace(accountID) == "" {
		return core.Report{}, core.ErrMissingUserID
	}
	id, err := s.resolveAccount(ctx, userID, accountID)
	if err != nil {
		return core.Report{}, err
	}
	return s.compute(ctx, userID, id)
}

// UpdateReport recomputes userID's report from fresh upstream data,
// persists it and announces it. A failed announcement is only logged.
func (s *ReportService) UpdateReport(ctx context.Context, userID string) (core.Report, error) {
	if strings.TrimSpace(userID) == "" {
		return core.Report{}, core.ErrMissingUserID
	}
	id, err := s.resolveAccount(ctx, userID, "")
	if err != nil {
		return core.Report{}, err
	}
	return s.update(ctx, userID, id)
}

func (s *ReportService) update(ctx context.Context, userID, accountID string) (core.Report, error) {
	if s.deps.Cache != nil {
		s.deps.Cache.Delete(accountID)
	}
	report, err := s.compute(ctx, userID, accountID)
	if err != nil {
		return core.Report{}, err
	}
	if err := s.deps.Reports.SaveReport(ctx, userID, report); err != nil {
		return core.Report{}, fmt.Errorf("save report: %w", err)
	}

	if s.deps.Publisher != nil {
		sum := report.Summary
		if err := s.deps.Publisher.PublishReportUpdated(ctx, userID, sum.Year, sum.Month); err != nil {
			s.log.LogError(ctx, "Failed to publish report update", err, log.OpPublish,
				log.NewFields().WithUser(userID).WithPeriod(sum.Year, int(sum.Month)))
		}
	}
	return report, nil
}

// RefreshAll updates every linked user's report, at most
// RefreshConcurrency at a time. Per-user failures are logged and counted;
// only listing users or cancellation fails the run.
func (s *ReportService) RefreshAll(ctx context.Context) (RefreshResult, error) {
	users, err := s.deps.Links.ListLinkedUsers(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("list linked users: %w", err)
	}

	var succeeded, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.RefreshConcurrency)
	for _, u := range users {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if _, err := s.update(ctx, u.UserID, u.AccountID); err != nil {
				failed.Add(1)
				s.log.LogError(ctx, "Failed to refresh report", err, log.OpRefresh, log.NewFields().WithUser(u.UserID))
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	res := RefreshResult{Total: len(users), Succeeded: int(succeeded.Load()), Failed: int(failed.Load())}
	slog.InfoContext(ctx, "Refresh finished",
		"component", log.ComponentReport,
		"total", res.Total,
		"succeeded", res.Succeeded,
		"failed", res.Failed)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// GetReport returns the stored report for userID and month.
func (s *ReportService) GetReport(ctx context.Context, userID string, year int, month time.Month) (core.Report, error) {
	if strings.TrimSpace(userID) == "" {
		return core.Report{}, core.ErrMissingUserID
	}
	return s.deps.Reports.GetReport(ctx, userID, year, month)
}

// LinkAccount exchanges credentials for a 10bis account id and stores the
// link. Credentials are not kept.
func (s *ReportService) LinkAccount(ctx context.Context, userID, email, password string) error {
	if strings.TrimSpace(userID) == "" {
		return core.ErrMissingUserID
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return core.ErrMissingCredentials
	}
	accountID, err := s.deps.Source.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.deps.Links.LinkAccount(ctx, userID, accountID); err != nil {
		return fmt.Errorf("store account link: %w", err)
	}
	return nil
}

func (s *ReportService) UpdatePhone(ctx context.Context, userID, phone string) error {
	if strings.TrimSpace(userID) == "" {
		return core.ErrMissingUserID
	}
	if err := s.deps.Links.UpdatePhone(ctx, userID, strings.TrimSpace(phone)); err != nil {
		return fmt.Errorf("update phone: %w", err)
	}
	return nil
}

func (s *ReportService) resolveAccount(ctx context.Context, userID, accountID string) (string, error) {
	if id := strings.TrimSpace(accountID); id != "" {
		return id, nil
	}
	id, err := s.deps.Links.AccountID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("lookup account link: %w", err)
	}
	if id == "" {
		return "", &core.MissingAccountLinkError{UserID: userID}
	}
	return id, nil
}

func (s *ReportService) fetch(ctx context.Context, accountID string) ([]tenbis.RawTransaction, error) {
	if s.deps.Cache != nil {
		if raw, ok := s.deps.Cache.Get(accountID); ok {
			return raw, nil
		}
	}
	raw, err := s.deps.Source.FetchTransactions(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if s.deps.Cache != nil {
		s.deps.Cache.Set(accountID, raw)
	}
	return raw, nil
}

func (s *ReportService) compute(ctx context.Context, userID, accountID string) (core.Report, error) {
	raw, err := s.fetch(ctx, accountID)
	if err != nil {
		return core.Report{}, err
	}
	txs, err := s.deps.Classifier.Parse(ctx, raw)
	if err != nil {
		return core.Report{}, err
	}

	summary, err := s.deps.Aggregator.ComputeSummary(txs, s.cfg.Now())
	if err != nil {
		if errors.Is(err, core.ErrEmptyInput) {
			return core.Report{}, err
		}
		return core.Report{}, fmt.Errorf("compute summary: %w", err)
	}

	s.log.LogReportComputed(ctx, userID, summary.Year, int(summary.Month), len(txs), summary.LunchCount,
		core.FormatAmount(summary.TotalSpent), core.FormatAmount(summary.TodayBudget))
	return core.Report{Summary: summary, Transactions: txs}, nil
}
