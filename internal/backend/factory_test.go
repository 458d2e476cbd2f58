package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"lunchbudget/internal/config"
	sheetsmem "lunchbudget/internal/sheets/memory"
	"lunchbudget/internal/storage"
	"lunchbudget/internal/storage/memory"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("nil config should fail")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("sheets is no longer a storage backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:         "sqlite",
		SQLiteDBPath:        "/tmp/x.db",
		GoogleSpreadsheetID: "sheet-id",
		GoogleSheetName:     "Lunch",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "/tmp/x.db" || !cfg.SheetsEnabled() {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "a.db"}, ""},
		{"sqlite no path", Config{Type: SQLiteBackend}, "SQLite database path"},
		{"bad type", Config{Type: "postgres"}, "invalid backend type"},
		{"sheets without credentials", Config{Type: MemoryBackend, GoogleSpreadsheetID: "id"}, "GoogleServiceAccount"},
		{"sheets with file", Config{Type: MemoryBackend, GoogleSpreadsheetID: "id", GoogleServiceAccountFile: "sa.json"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateStore(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	res, err := f.CreateStore(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := res.Store.(*memory.Store); !ok {
		t.Errorf("memory store type = %T", res.Store)
	}

	res, err = f.CreateStore(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "lb.db")})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := res.Store.(*storage.SQLiteRepository); !ok {
		t.Errorf("sqlite store type = %T", res.Store)
	}
	if res.Cleanup == nil {
		t.Fatal("sqlite backend must provide cleanup")
	}
	if err := res.Cleanup(); err != nil {
		t.Errorf("cleanup: %v", err)
	}

	if _, err := f.CreateStore(ctx, Config{Type: "bogus"}); err == nil {
		t.Error("expected error for invalid type")
	}
}

func TestCreateExporterDefaultsToMemory(t *testing.T) {
	exp, err := NewFactory(nil).CreateExporter(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateExporter: %v", err)
	}
	if _, ok := exp.(*sheetsmem.Exporter); !ok {
		t.Errorf("exporter type = %T", exp)
	}
}
