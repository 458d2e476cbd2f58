package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lunchbudget/internal/amqp"
	"lunchbudget/internal/core"
	"lunchbudget/internal/sheets"
	"lunchbudget/internal/storage"
)

// ReportWorker mirrors persisted reports into a ReportExporter.
type ReportWorker struct {
	reports  storage.ReportStore
	exporter sheets.ReportExporter
}

func NewReportWorker(reports storage.ReportStore, exporter sheets.ReportExporter) *ReportWorker {
	return &ReportWorker{reports: reports, exporter: exporter}
}

// HandleReportUpdated reloads the announced report and exports it. A
// report that no longer exists is skipped, so the message is acked.
func (w *ReportWorker) HandleReportUpdated(ctx context.Context, msg *amqp.ReportUpdatedMessage) error {
	year, month := msg.Period()
	slog.InfoContext(ctx, "Processing report update",
		"component", "worker",
		"message_id", msg.MessageID,
		"user_id", msg.UserID,
		"year", year,
		"month", int(month))

	report, err := w.reports.GetReport(ctx, msg.UserID, year, month)
	if errors.Is(err, core.ErrReportNotFound) {
		slog.WarnContext(ctx, "Report vanished before export",
			"component", "worker", "user_id", msg.UserID, "year", year, "month", int(month))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}

	ref, err := w.exporter.AppendReport(ctx, msg.UserID, report.Summary)
	if err != nil {
		return fmt.Errorf("export report: %w", err)
	}

	slog.InfoContext(ctx, "Report exported",
		"component", "worker",
		"message_id", msg.MessageID,
		"user_id", msg.UserID,
		"ref", ref)
	return nil
}
