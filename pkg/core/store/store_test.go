package store

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func sampleTable() Table {
	return Table{
		Name:    "income_statement",
		Columns: []string{"Year", "Revenue", "OwnershipPct"},
		Rows: [][]any{
			{2026, 10_000_000.0, 0.6},
			{2027, 11_000_000.456, 0.333333},
		},
		Places: map[string]int32{"OwnershipPct": 6},
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{2026, "2026"},
		{1234.005, "1234.01"},
		{-500_000.0, "-500000.00"},
		{"Founders", "Founders"},
		{decimal.NewFromFloat(1.5), "1.50"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := FormatCell(tt.in, DefaultPlaces); got != tt.want {
			t.Errorf("FormatCell(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTable_StringsUsesColumnPlaces(t *testing.T) {
	rows := sampleTable().Strings()
	if rows[1][1] != "11000000.46" {
		t.Errorf("expected money at 2 places, got %q", rows[1][1])
	}
	if rows[1][2] != "0.333333" {
		t.Errorf("expected ownership at 6 places, got %q", rows[1][2])
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestCSVWriter_LiveOnly(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, false)
	run := Run{ID: uuid.New(), Name: "scenarios/base case.yaml"}

	if err := w.WriteTable(context.Background(), run, "income_statement", sampleTable()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	live := filepath.Join(dir, "base_case_income_statement_output.csv")
	records := readCSV(t, live)
	if len(records) != 3 || records[0][0] != "Year" || records[1][1] != "10000000.00" {
		t.Errorf("unexpected live contents: %v", records)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("archive disabled: expected only the live file, got %d files", len(entries))
	}
}

func TestCSVWriter_LiveAndArchive(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, true)
	stamp := time.Date(2026, 3, 4, 9, 7, 0, 0, time.UTC)
	w.SetClock(func() time.Time { return stamp })
	run := Run{ID: uuid.New(), Name: "acme"}

	if err := w.WriteTable(context.Background(), run, "balance_sheet", sampleTable()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{
		"acme_balance_sheet_output.csv",
		"acme_balance_sheet_output_20260304_0907.csv",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestCSVWriter_OverwritesLiveSnapshot(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, false)
	run := Run{Name: "acme"}

	first := sampleTable()
	_ = w.WriteTable(context.Background(), run, "cash_flow", first)
	second := sampleTable()
	second.Rows = second.Rows[:1]
	if err := w.WriteTable(context.Background(), run, "cash_flow", second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := readCSV(t, w.LivePath("acme", "cash_flow"))
	if len(records) != 2 {
		t.Errorf("live snapshot should be replaced, got %d records", len(records))
	}
}

func TestCSVWriter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewCSVWriter(t.TempDir(), false).WriteTable(ctx, Run{Name: "x"}, "t", sampleTable())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type MockWriter struct {
	WriteTableFunc func(ctx context.Context, run Run, label string, t Table) error
	calls          int
}

func (m *MockWriter) WriteTable(ctx context.Context, run Run, label string, t Table) error {
	m.calls++
	if m.WriteTableFunc != nil {
		return m.WriteTableFunc(ctx, run, label, t)
	}
	return nil
}

func TestMulti_AttemptsEveryWriter(t *testing.T) {
	boom := errors.New("disk full")
	failing := &MockWriter{WriteTableFunc: func(context.Context, Run, string, Table) error { return boom }}
	ok := &MockWriter{}

	err := Multi{failing, ok}.WriteTable(context.Background(), Run{}, "x", Table{})
	if !errors.Is(err, boom) {
		t.Errorf("expected joined error to contain %v, got %v", boom, err)
	}
	if ok.calls != 1 {
		t.Errorf("second writer should still be called, got %d calls", ok.calls)
	}
}

func TestPostgresWriter_RoundTrip(t *testing.T) {
	url := os.Getenv("FINMODEL_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("FINMODEL_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Connect(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	w := NewPostgresWriter(db)
	run := Run{ID: uuid.New(), Name: "pg-test", CreatedAt: time.Now().UTC(), Summary: map[string]float64{"enterprise_value": 1}}
	if err := w.WriteTable(ctx, run, "income_statement", sampleTable()); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, rows, err := w.LoadTable(ctx, run.ID, "income_statement")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tbl.Columns) != 3 || len(rows) != 2 || rows[0][1] != "10000000.00" {
		t.Errorf("unexpected round trip: %v %v", tbl.Columns, rows)
	}
}

func TestPostgresWriter_NoPool(t *testing.T) {
	err := NewPostgresWriter(nil).WriteTable(context.Background(), Run{}, "x", Table{})
	if err == nil {
		t.Errorf("expected an error without a pool")
	}
}
