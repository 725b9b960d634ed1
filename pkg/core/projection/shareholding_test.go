package projection

import (
	"errors"
	"math"
	"testing"

	"finmodel/pkg/core/modelerr"
)

func TestAttributeEquity_SplitsByFraction(t *testing.T) {
	bs := []BalanceSheetRow{
		{Year: 2026, TotalEquity: 1_000_000},
		{Year: 2027, TotalEquity: 2_000_000},
	}
	holders := []Holder{{Name: "A", Fraction: 0.6}, {Name: "B", Fraction: 0.4}}

	rows := AttributeEquity(bs, holders)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0].Holder != "A" || rows[0].EquityAttributed != 600_000 {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Holder != "B" || rows[1].Year != 2026 {
		t.Errorf("holders should keep input order within a year: %+v", rows[1])
	}
	if !approxEqual(rows[3].EquityAttributed, 800_000) {
		t.Errorf("expected B 2027 equity 800000, got %.2f", rows[3].EquityAttributed)
	}

	for _, year := range []int{2026, 2027} {
		sum := 0.0
		for _, r := range rows {
			if r.Year == year {
				sum += r.EquityAttributed
			}
		}
		want := bs[year-2026].TotalEquity
		if math.Abs(sum-want) > 1e-6 {
			t.Errorf("year %d: attributed %.2f, total equity %.2f", year, sum, want)
		}
	}
}

func TestAttributeEquity_NoHolders(t *testing.T) {
	rows := AttributeEquity([]BalanceSheetRow{{Year: 2026, TotalEquity: 5}}, nil)
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestOwnershipSumsToOne(t *testing.T) {
	ok, _ := OwnershipSumsToOne([]Holder{{Name: "A", Fraction: 0.7}, {Name: "B", Fraction: 0.3}})
	if !ok {
		t.Errorf("0.7 + 0.3 should sum to one")
	}
	ok, sum := OwnershipSumsToOne([]Holder{{Name: "A", Fraction: 0.5}})
	if ok || sum != 0.5 {
		t.Errorf("expected (false, 0.5), got (%v, %.2f)", ok, sum)
	}
}

func TestValidateOwnership(t *testing.T) {
	tests := []struct {
		name    string
		holders []Holder
		wantErr bool
	}{
		{"valid", []Holder{{"Founders", 0.6}, {"Investors", 0.4}}, false},
		{"empty list", nil, false},
		{"blank name", []Holder{{"  ", 1}}, true},
		{"duplicate", []Holder{{"A", 0.5}, {"A", 0.5}}, true},
		{"negative", []Holder{{"A", -0.1}}, true},
		{"nan", []Holder{{"A", math.NaN()}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOwnership(tt.holders)
			if tt.wantErr && !errors.Is(err, modelerr.ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
