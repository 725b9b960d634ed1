// Package store persists model result tables. Writers are collaborators of
// the pipeline: the engine hands them named tables and a label and does not
// care about the format.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultPlaces is the number of decimals money cells are written with.
const DefaultPlaces int32 = 2

// Table is a named, ordered result table.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	// Places overrides the decimals written for a float column.
	Places map[string]int32 `json:"-"`
}

// Run identifies one model run whose tables are being written.
type Run struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	// Summary holds scalar outputs such as enterprise value.
	Summary map[string]float64 `json:"summary,omitempty"`
}

// TableWriter persists one table of a run under a logical label.
type TableWriter interface {
	WriteTable(ctx context.Context, run Run, label string, t Table) error
}

// FormatCell renders a cell as text. Floats are rounded half away from zero
// to places decimals.
func FormatCell(v any, places int32) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return decimal.NewFromFloat(x).StringFixed(places)
	case decimal.Decimal:
		return x.StringFixed(places)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Strings renders every row of t.
func (t Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			places := DefaultPlaces
			if j < len(t.Columns) {
				if p, ok := t.Places[t.Columns[j]]; ok {
					places = p
				}
			}
			cells[j] = FormatCell(v, places)
		}
		out[i] = cells
	}
	return out
}

// Multi fans a table out to several writers in order. Every writer is
// attempted; their errors are joined.
type Multi []TableWriter

// WriteTable implements TableWriter.
func (m Multi) WriteTable(ctx context.Context, run Run, label string, t Table) error {
	var errs []error
	for _, w := range m {
		if err := w.WriteTable(ctx, run, label, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
