package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lunchbudget/internal/core"

	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at dbPath and migrates it.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer avoids SQLITE_BUSY under concurrent refreshes
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) AccountID(ctx context.Context, userID string) (string, error) {
	var accountID string
	err := r.db.QueryRowContext(ctx,
		`SELECT tenbis_uid FROM users WHERE user_id = ?`, userID).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get account id for %s: %w", userID, err)
	}
	return accountID, nil
}

func (r *SQLiteRepository) LinkAccount(ctx context.Context, userID, accountID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, tenbis_uid) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			tenbis_uid = excluded.tenbis_uid,
			updated_at = CURRENT_TIMESTAMP`, userID, accountID)
	if err != nil {
		return fmt.Errorf("link account for %s: %w", userID, err)
	}
	slog.InfoContext(ctx, "Account linked", "user_id", userID)
	return nil
}

// UpdatePhone creates the user when missing and keeps any existing link.
func (r *SQLiteRepository) UpdatePhone(ctx context.Context, userID, phone string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, phone) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			phone = excluded.phone,
			updated_at = CURRENT_TIMESTAMP`, userID, phone)
	if err != nil {
		return fmt.Errorf("update phone for %s: %w", userID, err)
	}
	return nil
}

func (r *SQLiteRepository) ListLinkedUsers(ctx context.Context) ([]LinkedUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, tenbis_uid FROM users WHERE tenbis_uid != '' ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list linked users: %w", err)
	}
	defer rows.Close()

	var out []LinkedUser
	for rows.Next() {
		var u LinkedUser
		if err := rows.Scan(&u.UserID, &u.AccountID); err != nil {
			return nil, fmt.Errorf("scan linked user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SaveReport(ctx context.Context, userID string, report core.Report) error {
	summary, transactions, err := encodeReport(report)
	if err != nil {
		return err
	}
	s := report.Summary
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO reports (user_id, year, month, total_spent, summary, transactions, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, year, month) DO UPDATE SET
			total_spent = excluded.total_spent,
			summary = excluded.summary,
			transactions = excluded.transactions,
			updated_at = excluded.updated_at`,
		userID, s.Year, int(s.Month), s.TotalSpent.String(),
		string(summary), string(transactions), s.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save report %s %d-%02d: %w", userID, s.Year, s.Month, err)
	}

	slog.InfoContext(ctx, "Report saved to SQLite",
		"user_id", userID,
		"year", s.Year,
		"month", int(s.Month),
		"transactions", len(report.Transactions))
	return nil
}

func (r *SQLiteRepository) GetReport(ctx context.Context, userID string, year int, month time.Month) (core.Report, error) {
	var summary, transactions string
	err := r.db.QueryRowContext(ctx,
		`SELECT summary, transactions FROM reports WHERE user_id = ? AND year = ? AND month = ?`,
		userID, year, int(month)).Scan(&summary, &transactions)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Report{}, core.ErrReportNotFound
	}
	if err != nil {
		return core.Report{}, fmt.Errorf("get report %s %d-%02d: %w", userID, year, month, err)
	}
	return decodeReport([]byte(summary), []byte(transactions))
}
