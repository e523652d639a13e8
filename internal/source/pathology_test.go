package source

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *PathologyStore {
	t.Helper()

	store, err := OpenPathology(filepath.Join(t.TempDir(), "pathology.sqlite"))
	if err != nil {
		t.Fatalf("OpenPathology() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.EnsureSchema(); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	return store
}

func TestPathologyStore_Reports(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := PathologyReport{
		PatientID:    "123",
		ReportType:   "biopsy",
		ReportDate:   time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		SignedStatus: "SIGNED",
		SignedBy:     "Dr. Osei",
		Diagnosis:    "Invasive ductal carcinoma",
		ERStatus:     "Positive",
	}
	newer := older
	newer.ReportType = "resection"
	newer.ReportDate = time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)

	if err := store.Insert(ctx, older); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.Insert(ctx, newer); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	reports, err := store.Reports(ctx, "123")
	if err != nil {
		t.Fatalf("Reports() error = %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("Reports() returned %d reports, want 2", len(reports))
	}
	if reports[0].ReportType != "resection" {
		t.Errorf("first report type = %q, want resection (newest first)", reports[0].ReportType)
	}
	if reports[0].Diagnosis != "Invasive ductal carcinoma" {
		t.Errorf("diagnosis = %q, want carried through", reports[0].Diagnosis)
	}
}

func TestPathologyStore_Reports_NoRows(t *testing.T) {
	store := openTestStore(t)

	reports, err := store.Reports(context.Background(), "999")
	if err != nil {
		t.Fatalf("Reports() error = %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("Reports() for unknown patient returned %d rows, want 0", len(reports))
	}
}
