package http

import (
	"time"

	"github.com/shopspring/decimal"

	"lunchbudget/internal/core"
)

// amount marshals as a JSON number with exactly two decimal places.
type amount decimal.Decimal

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(core.FormatAmount(decimal.Decimal(a))), nil
}

func (a *amount) UnmarshalJSON(data []byte) error {
	return (*decimal.Decimal)(a).UnmarshalJSON(data)
}

type summaryResponse struct {
	Year                          int       `json:"year"`
	Month                         int       `json:"month"`
	WorkDays                      int       `json:"workDays"`
	MonthlyLunchBudget            amount    `json:"monthlyLunchBudget"`
	TotalSpent                    amount    `json:"totalSpent"`
	LunchCount                    int       `json:"lunchCount"`
	AverageLunchSpending          amount    `json:"averageLunchSpending"`
	RemainingMonthlyLunchBudget   amount    `json:"remainingMonthlyLunchBudget"`
	RemainingWorkDays             int       `json:"remainingWorkDays"`
	RemainingLunches              int       `json:"remainingLunches"`
	RemainingAverageLunchSpending amount    `json:"remainingAverageLunchSpending"`
	TodayBudget                   amount    `json:"todayBudget"`
	NextWorkDayBudget             amount    `json:"nextWorkDayBudget"`
	UpdatedAt                     time.Time `json:"updatedAt"`
}

type transactionResponse struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	VendorName    string    `json:"vendorName"`
	VendorLogoURL string    `json:"vendorLogoUrl,omitempty"`
	Amount        amount    `json:"amount"`
	OrderType     string    `json:"orderType,omitempty"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
}

type reportResponse struct {
	Summary      summaryResponse       `json:"summary"`
	Transactions []transactionResponse `json:"transactions"`
}

type statusResponse struct {
	Status string `json:"status"`
	UserID string `json:"userId,omitempty"`
}

func toSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{
		Year:                          s.Year,
		Month:                         int(s.Month),
		WorkDays:                      s.WorkDays,
		MonthlyLunchBudget:            amount(s.MonthlyLunchBudget),
		TotalSpent:                    amount(s.TotalSpent),
		LunchCount:                    s.LunchCount,
		AverageLunchSpending:          amount(s.AverageLunchSpending),
		RemainingMonthlyLunchBudget:   amount(s.RemainingMonthlyLunchBudget),
		RemainingWorkDays:             s.RemainingWorkDays,
		RemainingLunches:              s.RemainingLunches,
		RemainingAverageLunchSpending: amount(s.RemainingAverageLunchSpending),
		TodayBudget:                   amount(s.TodayBudget),
		NextWorkDayBudget:             amount(s.NextWorkDayBudget),
		UpdatedAt:                     s.UpdatedAt,
	}
}

func toReportResponse(r core.Report) reportResponse {
	txs := make([]transactionResponse, 0, len(r.Transactions))
	for _, t := range r.Transactions {
		txs = append(txs, transactionResponse{
			ID:            t.ID,
			Timestamp:     t.Timestamp,
			VendorName:    t.VendorName,
			VendorLogoURL: t.VendorLogoURL,
			Amount:        amount(t.Amount),
			OrderType:     t.OrderType,
			PaymentMethod: t.PaymentMethod,
		})
	}
	return reportResponse{Summary: toSummaryResponse(r.Summary), Transactions: txs}
}
