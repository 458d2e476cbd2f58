package sheets

import (
	"context"
	"fmt"

	"lunchbudget/internal/core"
)

// ReportExporter mirrors monthly summaries into a spreadsheet-like sink.
type ReportExporter interface {
	// AppendReport adds one row for userID and returns a reference to it.
	AppendReport(ctx context.Context, userID string, summary core.Summary) (rowRef string, err error)
}

// Header is the column layout of an exported row.
var Header = []string{
	"Updated At", "User", "Month", "Work Days", "Monthly Budget", "Total Spent", "Lunches",
	"Average Lunch", "Remaining Budget", "Remaining Work Days", "Remaining Lunches",
	"Remaining Average", "Today Budget", "Next Work Day Budget",
}

// Row renders summary in Header order with two-decimal amounts. A missing
// next workday is left blank.
func Row(userID string, s core.Summary) []any {
	next := ""
	if s.HasNextWorkDay() {
		next = core.FormatAmount(s.NextWorkDayBudget)
	}
	return []any{
		s.UpdatedAt.Format("2006-01-02 15:04"),
		userID,
		fmt.Sprintf("%04d-%02d", s.Year, int(s.Month)),
		s.WorkDays,
		core.FormatAmount(s.MonthlyLunchBudget),
		core.FormatAmount(s.TotalSpent),
		s.LunchCount,
		core.FormatAmount(s.AverageLunchSpending),
		core.FormatAmount(s.RemainingMonthlyLunchBudget),
		s.RemainingWorkDays,
		s.RemainingLunches,
		core.FormatAmount(s.RemainingAverageLunchSpending),
		core.FormatAmount(s.TodayBudget),
		next,
	}
}
