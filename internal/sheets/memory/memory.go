// Package memory is a ReportExporter that keeps rows in process. It backs
// the worker when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"lunchbudget/internal/core"
	"lunchbudget/internal/sheets"
)

var _ sheets.ReportExporter = (*Exporter)(nil)

type Exporter struct {
	mu   sync.Mutex
	rows [][]any
}

func New() *Exporter {
	return &Exporter{}
}

// AppendReport stores the row and returns a synthetic row reference.
func (e *Exporter) AppendReport(_ context.Context, userID string, summary core.Summary) (string, error) {
	if userID == "" {
		return "", core.ErrMissingUserID
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = append(e.rows, sheets.Row(userID, summary))
	return fmt.Sprintf("mem:%d", len(e.rows)), nil
}

// Rows returns a copy of the exported rows in append order.
func (e *Exporter) Rows() [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]any, len(e.rows))
	for i, r := range e.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}
