package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoNextWorkDay is the NextWorkDayBudget sentinel used when no workday
// remains in the month after today.
var NoNextWorkDay = decimal.NewFromInt(-1)

// Summary is the monthly lunch report for one user.
type Summary struct {
	Year  int
	Month time.Month

	WorkDays                    int
	MonthlyLunchBudget          decimal.Decimal
	TotalSpent                  decimal.Decimal
	LunchCount                  int
	AverageLunchSpending        decimal.Decimal
	RemainingMonthlyLunchBudget decimal.Decimal

	RemainingWorkDays             int
	RemainingLunches              int
	RemainingAverageLunchSpending decimal.Decimal
	TodayBudget                   decimal.Decimal
	NextWorkDayBudget             decimal.Decimal

	UpdatedAt time.Time
}

// HasNextWorkDay reports whether NextWorkDayBudget carries a real amount.
func (s Summary) HasNextWorkDay() bool {
	return !s.NextWorkDayBudget.Equal(NoNextWorkDay)
}

// Report is a summary together with the transactions it was computed from.
type Report struct {
	Summary      Summary
	Transactions []Transaction
}
