package backend

import (
	"context"

	"lunchbudget/internal/sheets"
	"lunchbudget/internal/storage"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// StoreResult contains the store instance and optional cleanup function
type StoreResult struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// Factory creates the persistence and export backends from configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*StoreResult, error)
	// CreateExporter returns the Google Sheets exporter when a spreadsheet
	// is configured, and the in-memory exporter otherwise.
	CreateExporter(ctx context.Context, config Config) (sheets.ReportExporter, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// SheetsEnabled reports whether reports should go to a real spreadsheet.
func (c Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
