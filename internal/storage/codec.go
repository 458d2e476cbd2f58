package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"lunchbudget/internal/core"
)

// summaryRecord is the persisted form of core.Summary.
type summaryRecord struct {
	Year                          int             `json:"year"`
	Month                         int             `json:"month"`
	WorkDays                      int             `json:"workDays"`
	MonthlyLunchBudget            decimal.Decimal `json:"monthlyLunchBudget"`
	TotalSpent                    decimal.Decimal `json:"totalSpent"`
	LunchCount                    int             `json:"lunchCount"`
	AverageLunchSpending          decimal.Decimal `json:"averageLunchSpending"`
	RemainingMonthlyLunchBudget   decimal.Decimal `json:"remainingMonthlyLunchBudget"`
	RemainingWorkDays             int             `json:"remainingWorkDays"`
	RemainingLunches              int             `json:"remainingLunches"`
	RemainingAverageLunchSpending decimal.Decimal `json:"remainingAverageLunchSpending"`
	TodayBudget                   decimal.Decimal `json:"todayBudget"`
	NextWorkDayBudget             decimal.Decimal `json:"nextWorkDayBudget"`
	UpdatedAt                     time.Time       `json:"updatedAt"`
}

type transactionRecord struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	VendorName    string          `json:"vendorName"`
	VendorLogoURL string          `json:"vendorLogoUrl,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	OrderType     string          `json:"orderType,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
}

func encodeReport(r core.Report) (summary, transactions []byte, err error) {
	s := r.Summary
	summary, err = json.Marshal(summaryRecord{
		Year:                          s.Year,
		Month:                         int(s.Month),
		WorkDays:                      s.WorkDays,
		MonthlyLunchBudget:            s.MonthlyLunchBudget,
		TotalSpent:                    s.TotalSpent,
		LunchCount:                    s.LunchCount,
		AverageLunchSpending:          s.AverageLunchSpending,
		RemainingMonthlyLunchBudget:   s.RemainingMonthlyLunchBudget,
		RemainingWorkDays:             s.RemainingWorkDays,
		RemainingLunches:              s.RemainingLunches,
		RemainingAverageLunchSpending: s.RemainingAverageLunchSpending,
		TodayBudget:                   s.TodayBudget,
		NextWorkDayBudget:             s.NextWorkDayBudget,
		UpdatedAt:                     s.UpdatedAt,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("encode summary: %w", err)
	}

	recs := make([]transactionRecord, len(r.Transactions))
	for i, t := range r.Transactions {
		recs[i] = transactionRecord(t)
	}
	transactions, err = json.Marshal(recs)
	if err != nil {
		return nil, nil, fmt.Errorf("encode transactions: %w", err)
	}
	return summary, transactions, nil
}

func decodeReport(summary, transactions []byte) (core.Report, error) {
	var s summaryRecord
	if err := json.Unmarshal(summary, &s); err != nil {
		return core.Report{}, fmt.Errorf("decode summary: %w", err)
	}
	var recs []transactionRecord
	if err := json.Unmarshal(transactions, &recs); err != nil {
		return core.Report{}, fmt.Errorf("decode transactions: %w", err)
	}

	txs := make([]core.Transaction, len(recs))
	for i, t := range recs {
		txs[i] = core.Transaction(t)
	}
	return core.Report{
		Summary: core.Summary{
			Year:                          s.Year,
			Month:                         time.Month(s.Month),
			WorkDays:                      s.WorkDays,
			MonthlyLunchBudget:            s.MonthlyLunchBudget,
			TotalSpent:                    s.TotalSpent,
			LunchCount:                    s.LunchCount,
			AverageLunchSpending:          s.AverageLunchSpending,
			RemainingMonthlyLunchBudget:   s.RemainingMonthlyLunchBudget,
			RemainingWorkDays:             s.RemainingWorkDays,
			RemainingLunches:              s.RemainingLunches,
			RemainingAverageLunchSpending: s.RemainingAverageLunchSpending,
			TodayBudget:                   s.TodayBudget,
			NextWorkDayBudget:             s.NextWorkDayBudget,
			UpdatedAt:                     s.UpdatedAt,
		},
		Transactions: txs,
	}, nil
}
