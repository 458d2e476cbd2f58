package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lunchbudget/internal/core"
	"lunchbudget/internal/storage"
	"lunchbudget/internal/storage/memory"
)

func stores(t *testing.T) map[string]storage.Store {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return map[string]storage.Store{
		"sqlite": repo,
		"memory": memory.New(),
	}
}

func sampleReport(month time.Month, spent string) core.Report {
	ts := time.Date(2024, month, 3, 12, 15, 0, 0, time.UTC)
	return core.Report{
		Summary: core.Summary{
			Year:                          2024,
			Month:                         month,
			WorkDays:                      18,
			MonthlyLunchBudget:            decimal.NewFromInt(720),
			TotalSpent:                    decimal.RequireFromString(spent),
			LunchCount:                    1,
			AverageLunchSpending:          decimal.RequireFromString(spent),
			RemainingMonthlyLunchBudget:   decimal.NewFromInt(720).Sub(decimal.RequireFromString(spent)),
			RemainingWorkDays:             3,
			RemainingLunches:              2,
			RemainingAverageLunchSpending: decimal.RequireFromString("13.3333333333333333"),
			TodayBudget:                   decimal.NewFromInt(20),
			NextWorkDayBudget:             core.NoNextWorkDay,
			UpdatedAt:                     ts,
		},
		Transactions: []core.Transaction{{
			ID:            "tx-1",
			Timestamp:     ts,
			VendorName:    "Falafel",
			VendorLogoURL: "http://logo/1",
			Amount:        decimal.RequireFromString(spent),
			OrderType:     "Order",
			PaymentMethod: "Moneycard",
		}},
	}
}

func TestAccountLinks(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			id, err := s.AccountID(ctx, "alice")
			if err != nil || id != "" {
				t.Fatalf("AccountID(unknown) = %q, %v", id, err)
			}

			if err := s.UpdatePhone(ctx, "alice", "+972500000000"); err != nil {
				t.Fatalf("UpdatePhone: %v", err)
			}
			if err := s.LinkAccount(ctx, "alice", "enc-a"); err != nil {
				t.Fatalf("LinkAccount: %v", err)
			}
			if err := s.UpdatePhone(ctx, "alice", "+972511111111"); err != nil {
				t.Fatalf("UpdatePhone: %v", err)
			}
			if err := s.UpdatePhone(ctx, "bob", "+972522222222"); err != nil {
				t.Fatalf("UpdatePhone: %v", err)
			}
			if err := s.LinkAccount(ctx, "carol", "enc-c"); err != nil {
				t.Fatalf("LinkAccount: %v", err)
			}

			id, err = s.AccountID(ctx, "alice")
			if err != nil || id != "enc-a" {
				t.Errorf("AccountID(alice) = %q, %v; phone update must keep the link", id, err)
			}

			users, err := s.ListLinkedUsers(ctx)
			if err != nil {
				t.Fatalf("ListLinkedUsers: %v", err)
			}
			want := []storage.LinkedUser{{UserID: "alice", AccountID: "enc-a"}, {UserID: "carol", AccountID: "enc-c"}}
			if len(users) != len(want) {
				t.Fatalf("ListLinkedUsers = %+v, want %+v", users, want)
			}
			for i := range want {
				if users[i] != want[i] {
					t.Errorf("users[%d] = %+v, want %+v", i, users[i], want[i])
				}
			}
		})
	}
}

func TestReports(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.GetReport(ctx, "alice", 2024, time.April)
			if !errors.Is(err, core.ErrReportNotFound) {
				t.Fatalf("GetReport(missing) err = %v, want ErrReportNotFound", err)
			}

			if err := s.SaveReport(ctx, "alice", sampleReport(time.April, "30")); err != nil {
				t.Fatalf("SaveReport: %v", err)
			}
			if err := s.SaveReport(ctx, "alice", sampleReport(time.April, "55.5")); err != nil {
				t.Fatalf("SaveReport replace: %v", err)
			}
			if err := s.SaveReport(ctx, "alice", sampleReport(time.May, "10")); err != nil {
				t.Fatalf("SaveReport other month: %v", err)
			}

			got, err := s.GetReport(ctx, "alice", 2024, time.April)
			if err != nil {
				t.Fatalf("GetReport: %v", err)
			}
			want := sampleReport(time.April, "55.5")
			if got.Summary.Month != time.April || got.Summary.Year != 2024 {
				t.Errorf("period = %d-%v", got.Summary.Year, got.Summary.Month)
			}
			if !got.Summary.TotalSpent.Equal(want.Summary.TotalSpent) {
				t.Errorf("TotalSpent = %s, want %s", got.Summary.TotalSpent, want.Summary.TotalSpent)
			}
			if !got.Summary.RemainingAverageLunchSpending.Equal(want.Summary.RemainingAverageLunchSpending) {
				t.Errorf("RemainingAverageLunchSpending = %s", got.Summary.RemainingAverageLunchSpending)
			}
			if got.Summary.HasNextWorkDay() {
				t.Error("NextWorkDayBudget sentinel lost")
			}
			if !got.Summary.UpdatedAt.Equal(want.Summary.UpdatedAt) {
				t.Errorf("UpdatedAt = %v, want %v", got.Summary.UpdatedAt, want.Summary.UpdatedAt)
			}
			if got.Summary.RemainingLunches != 2 || got.Summary.WorkDays != 18 {
				t.Errorf("counts = %+v", got.Summary)
			}
			if len(got.Transactions) != 1 {
				t.Fatalf("transactions = %d, want 1", len(got.Transactions))
			}
			tx := got.Transactions[0]
			if tx.ID != "tx-1" || tx.VendorName != "Falafel" || !tx.Amount.Equal(decimal.RequireFromString("55.5")) ||
				!tx.Timestamp.Equal(want.Transactions[0].Timestamp) {
				t.Errorf("transaction = %+v", tx)
			}

			if _, err := s.GetReport(ctx, "bob", 2024, time.April); !errors.Is(err, core.ErrReportNotFound) {
				t.Errorf("GetReport(other user) err = %v", err)
			}
		})
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lunch.db")
	ctx := context.Background()

	repo, err := storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	if err := repo.LinkAccount(ctx, "alice", "enc-a"); err != nil {
		t.Fatalf("LinkAccount: %v", err)
	}
	repo.Close()

	repo, err = storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	id, err := repo.AccountID(ctx, "alice")
	if err != nil || id != "enc-a" {
		t.Errorf("AccountID after reopen = %q, %v", id, err)
	}
}
