// Package budget computes the monthly lunch summary: the budget derived
// from the month's workdays, what was spent on lunch, and capped per-day
// recommendations for the rest of the month.
package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"lunchbudget/internal/calendar"
	"lunchbudget/internal/classifier"
	"lunchbudget/internal/core"
)

var (
	DefaultDailyLunchBudget = decimal.NewFromInt(40)
	DefaultMaxLunchLimit    = decimal.NewFromInt(150)
)

type Config struct {
	// DailyLunchBudget is the allowance per workday.
	DailyLunchBudget decimal.Decimal
	// MaxLunchLimit caps any single day's recommendation.
	MaxLunchLimit decimal.Decimal
	// Clock stamps UpdatedAt. Defaults to time.Now.
	Clock func() time.Time
}

func DefaultConfig() Config {
	return Config{
		DailyLunchBudget: DefaultDailyLunchBudget,
		MaxLunchLimit:    DefaultMaxLunchLimit,
		Clock:            time.Now,
	}
}

// Aggregator is stateless; one instance can serve concurrent requests.
type Aggregator struct {
	cal *calendar.Calendar
	cls *classifier.Classifier
	cfg Config
}

func New(cal *calendar.Calendar, cls *classifier.Classifier, cfg Config) *Aggregator {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Aggregator{cal: cal, cls: cls, cfg: cfg}
}

// ComputeSummary builds the summary for the month of the first transaction.
// Every "today" and "remaining" figure is relative to referenceNow and its
// month.
func (a *Aggregator) ComputeSummary(transactions []core.Transaction, referenceNow time.Time) (core.Summary, error) {
	if len(transactions) == 0 {
		return core.Summary{}, core.ErrEmptyInput
	}

	loc := a.cal.Location()
	now := referenceNow.In(loc)
	first := transactions[0].Timestamp.In(loc)
	year, month := first.Year(), first.Month()

	workDays := a.cal.WorkdaysInMonth(year, month)
	monthlyBudget := a.cfg.DailyLunchBudget.Mul(decimal.NewFromInt(int64(workDays)))

	lunches := a.cls.Lunches(transactions)
	totalSpent := core.SumAmounts(lunches)
	average := decimal.Zero
	if len(lunches) > 0 {
		average = totalSpent.Div(decimal.NewFromInt(int64(len(lunches))))
	}
	remainingBudget := core.ClampNonNegative(monthlyBudget.Sub(totalSpent))

	todayIsWorkday := a.cal.IsWorkday(now)
	remainingWorkDays := a.cal.WorkdaysFrom(now)
	todaySpent := core.SumAmounts(lunchesOn(lunches, now))

	todayBudget := a.todayBudget(now, todayIsWorkday, remainingWorkDays, remainingBudget, todaySpent)
	nextBudget := a.nextWorkDayBudget(todayIsWorkday, remainingWorkDays, remainingBudget, todayBudget)

	remainingLunches := a.remainingLunches(now, todayIsWorkday, remainingWorkDays, lunches)

	return core.Summary{
		Year:                          year,
		Month:                         month,
		WorkDays:                      workDays,
		MonthlyLunchBudget:            monthlyBudget,
		TotalSpent:                    totalSpent,
		LunchCount:                    len(lunches),
		AverageLunchSpending:          average,
		RemainingMonthlyLunchBudget:   remainingBudget,
		RemainingWorkDays:             remainingWorkDays,
		RemainingLunches:              remainingLunches,
		RemainingAverageLunchSpending: a.capped(remainingBudget, remainingLunches),
		TodayBudget:                   todayBudget,
		NextWorkDayBudget:             nextBudget,
		UpdatedAt:                     a.cfg.Clock().In(loc),
	}, nil
}

// todayBudget is the additional amount still recommended for today: the
// capped share of what is left (plus what today already took) minus what
// today already took.
func (a *Aggregator) todayBudget(now time.Time, isWorkday bool, remainingWorkDays int, remainingBudget, todaySpent decimal.Decimal) decimal.Decimal {
	if remainingWorkDays <= 0 || !remainingBudget.IsPositive() {
		return decimal.Zero
	}
	if !a.cls.BeforeCutoff(now) || !isWorkday {
		return decimal.Zero
	}
	share := remainingBudget.Add(todaySpent).Div(decimal.NewFromInt(int64(remainingWorkDays)))
	share = decimal.Min(share, a.cfg.MaxLunchLimit)
	return core.ClampNonNegative(share.Sub(todaySpent))
}

// nextWorkDayBudget previews the allowance of the next workday, or returns
// core.NoNextWorkDay when none is left this month.
func (a *Aggregator) nextWorkDayBudget(isWorkday bool, remainingWorkDays int, remainingBudget, todayBudget decimal.Decimal) decimal.Decimal {
	if remainingWorkDays <= 1 {
		return core.NoNextWorkDay
	}
	if !remainingBudget.IsPositive() {
		return decimal.Zero
	}
	days := remainingWorkDays
	if isWorkday {
		// today's slot is already accounted for
		days--
	}
	left := core.ClampNonNegative(remainingBudget.Sub(todayBudget))
	return decimal.Min(left.Div(decimal.NewFromInt(int64(days))), a.cfg.MaxLunchLimit)
}

// remainingLunches counts the workdays left on which a lunch can still be
// ordered: today drops out once it is past the cutoff, and any day that
// already has a lunch recorded drops out too.
func (a *Aggregator) remainingLunches(now time.Time, todayIsWorkday bool, remainingWorkDays int, lunches []core.Transaction) int {
	n := remainingWorkDays
	if todayIsWorkday && !a.cls.BeforeCutoff(now) && len(lunchesOn(lunches, now)) == 0 {
		n--
	}
	start := core.StartOfDay(now)
	eaten := map[time.Time]struct{}{}
	for _, t := range lunches {
		day := core.StartOfDay(t.Timestamp.In(now.Location()))
		if day.Before(start) || day.Month() != now.Month() || day.Year() != now.Year() {
			continue
		}
		if !a.cal.IsWorkday(day) {
			continue
		}
		eaten[day] = struct{}{}
	}
	n -= len(eaten)
	if n < 0 {
		return 0
	}
	return n
}

func (a *Aggregator) capped(amount decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	avg := decimal.Min(amount.Div(decimal.NewFromInt(int64(days))), a.cfg.MaxLunchLimit)
	return core.ClampNonNegative(avg)
}

func lunchesOn(lunches []core.Transaction, day time.Time) []core.Transaction {
	var out []core.Transaction
	for _, t := range lunches {
		if core.SameDay(day, t.Timestamp) {
			out = append(out, t)
		}
	}
	return out
}
