package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"finmodel/pkg/core/store"
)

// HTMLWriter collects the tables of each run and rewrites
// <dir>/<name>_report.html after every table, so the page is complete once
// the last table has been written.
type HTMLWriter struct {
	dir string

	mu   sync.Mutex
	runs map[uuid.UUID][]store.Table
}

// NewHTMLWriter creates a writer rooted at dir.
func NewHTMLWriter(dir string) *HTMLWriter {
	return &HTMLWriter{dir: dir, runs: make(map[uuid.UUID][]store.Table)}
}

// Path returns the report path for a run name.
func (w *HTMLWriter) Path(name string) string {
	return filepath.Join(w.dir, store.BaseName(name)+"_report.html")
}

// WriteTable implements store.TableWriter. A table written twice under the
// same label replaces the earlier one.
func (w *HTMLWriter) WriteTable(ctx context.Context, run store.Run, label string, t store.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.Name = label

	w.mu.Lock()
	tables := w.runs[run.ID]
	replaced := false
	for i := range tables {
		if tables[i].Name == label {
			tables[i] = t
			replaced = true
		}
	}
	if !replaced {
		tables = append(tables, t)
	}
	w.runs[run.ID] = tables
	snapshot := append([]store.Table(nil), tables...)
	w.mu.Unlock()

	page, err := HTML(runMarkdown(run, snapshot), title(run.Name))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := w.Path(run.Name)
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Debug().Str("component", "report").Str("path", path).Str("label", label).Msg("html report updated")
	return nil
}

// Forget drops the tables held for a run.
func (w *HTMLWriter) Forget(id uuid.UUID) {
	w.mu.Lock()
	delete(w.runs, id)
	w.mu.Unlock()
}
