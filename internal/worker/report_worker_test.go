package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lunchbudget/internal/amqp"
	"lunchbudget/internal/core"
	sheetsmem "lunchbudget/internal/sheets/memory"
	"lunchbudget/internal/storage/memory"
)

type failingExporter struct{}

func (failingExporter) AppendReport(context.Context, string, core.Summary) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestHandleReportUpdatedExports(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	exporter := sheetsmem.New()
	summary := core.Summary{
		Year:              2024,
		Month:             time.April,
		TotalSpent:        decimal.NewFromInt(30),
		NextWorkDayBudget: core.NoNextWorkDay,
	}
	if err := store.SaveReport(ctx, "u1", core.Report{Summary: summary}); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	w := NewReportWorker(store, exporter)
	if err := w.HandleReportUpdated(ctx, amqp.NewReportUpdatedMessage("u1", 2024, time.April)); err != nil {
		t.Fatalf("HandleReportUpdated: %v", err)
	}

	rows := exporter.Rows()
	if len(rows) != 1 || rows[0][1] != "u1" || rows[0][5] != "30.00" {
		t.Errorf("rows = %v", rows)
	}
}

func TestHandleReportUpdatedSkipsMissingReport(t *testing.T) {
	exporter := sheetsmem.New()
	w := NewReportWorker(memory.New(), exporter)

	if err := w.HandleReportUpdated(context.Background(), amqp.NewReportUpdatedMessage("ghost", 2024, time.April)); err != nil {
		t.Fatalf("HandleReportUpdated: %v", err)
	}
	if len(exporter.Rows()) != 0 {
		t.Error("nothing should be exported")
	}
}

func TestHandleReportUpdatedExportError(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	if err := store.SaveReport(ctx, "u1", core.Report{Summary: core.Summary{Year: 2024, Month: time.April}}); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	w := NewReportWorker(store, failingExporter{})
	if err := w.HandleReportUpdated(ctx, amqp.NewReportUpdatedMessage("u1", 2024, time.April)); err == nil {
		t.Fatal("expected export error so the message is requeued")
	}
}
