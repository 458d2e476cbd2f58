package storage

import (
	"context"
	"time"

	"lunchbudget/internal/core"
)

// LinkedUser is a user with a 10bis account id.
type LinkedUser struct {
	UserID    string
	AccountID string
}

// Ports for persistence adapters.
type (
	// AccountLinkStore maps users to their 10bis account id.
	AccountLinkStore interface {
		// AccountID returns "" with a nil error when the user has no link.
		AccountID(ctx context.Context, userID string) (string, error)
		LinkAccount(ctx context.Context, userID, accountID string) error
		UpdatePhone(ctx context.Context, userID, phone string) error
		ListLinkedUsers(ctx context.Context) ([]LinkedUser, error)
	}

	// ReportStore keeps one report per user and month; saving replaces.
	ReportStore interface {
		SaveReport(ctx context.Context, userID string, report core.Report) error
		// GetReport returns core.ErrReportNotFound when nothing was saved.
		GetReport(ctx context.Context, userID string, year int, month time.Month) (core.Report, error)
	}

	Store interface {
		AccountLinkStore
		ReportStore
		Ping(ctx context.Context) error
		Close() error
	}
)
