// Package memory is an in-process store for DATA_BACKEND=memory and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"lunchbudget/internal/core"
	"lunchbudget/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type reportKey struct {
	userID string
	year   int
	month  time.Month
}

type user struct {
	phone     string
	accountID string
}

type Store struct {
	mu      sync.RWMutex
	users   map[string]user
	reports map[reportKey]core.Report
}

func New() *Store {
	return &Store{
		users:   map[string]user{},
		reports: map[reportKey]core.Report{},
	}
}

func (s *Store) AccountID(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[userID].accountID, nil
}

func (s *Store) LinkAccount(_ context.Context, userID, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	u.accountID = accountID
	s.users[userID] = u
	return nil
}

func (s *Store) UpdatePhone(_ context.Context, userID, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	u.phone = phone
	s.users[userID] = u
	return nil
}

// ListLinkedUsers returns linked users ordered by user id.
func (s *Store) ListLinkedUsers(_ context.Context) ([]storage.LinkedUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []storage.LinkedUser
	for id, u := range s.users {
		if u.accountID == "" {
			continue
		}
		out = append(out, storage.LinkedUser{UserID: id, AccountID: u.accountID})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *Store) SaveReport(_ context.Context, userID string, report core.Report) error {
	key := reportKey{userID: userID, year: report.Summary.Year, month: report.Summary.Month}
	report.Transactions = append([]core.Transaction(nil), report.Transactions...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[key] = report
	return nil
}

func (s *Store) GetReport(_ context.Context, userID string, year int, month time.Month) (core.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[reportKey{userID: userID, year: year, month: month}]
	if !ok {
		return core.Report{}, core.ErrReportNotFound
	}
	report.Transactions = append([]core.Transaction(nil), report.Transactions...)
	return report, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
