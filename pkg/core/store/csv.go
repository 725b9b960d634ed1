package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ArchiveStampLayout is the timestamp suffix of archived snapshots.
const ArchiveStampLayout = "20060102_1504"

// CSVWriter writes each table to <dir>/<input>_<label>_output.csv, replacing
// the previous live snapshot. With archiving on, it also writes
// <input>_<label>_output_<YYYYMMDD_HHMM>.csv next to it.
type CSVWriter struct {
	dir     string
	archive bool
	now     func() time.Time
}

// NewCSVWriter creates a writer rooted at dir.
func NewCSVWriter(dir string, archive bool) *CSVWriter {
	return &CSVWriter{dir: dir, archive: archive, now: time.Now}
}

// SetClock replaces the clock used for archive stamps.
func (w *CSVWriter) SetClock(now func() time.Time) {
	w.now = now
}

// LivePath returns the live snapshot path for input and label.
func (w *CSVWriter) LivePath(input, label string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s_output.csv", BaseName(input), label))
}

// ArchivePath returns the archive path for input and label at t.
func (w *CSVWriter) ArchivePath(input, label string, t time.Time) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s_output_%s.csv", BaseName(input), label, t.Format(ArchiveStampLayout)))
}

// WriteTable implements TableWriter.
func (w *CSVWriter) WriteTable(ctx context.Context, run Run, label string, t Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	live := w.LivePath(run.Name, label)
	if err := writeCSV(live, t); err != nil {
		return err
	}
	log.Debug().Str("component", "store").Str("path", live).Msg("live snapshot written")

	if w.archive {
		archived := w.ArchivePath(run.Name, label, w.now())
		if err := writeCSV(archived, t); err != nil {
			return err
		}
		log.Debug().Str("component", "store").Str("path", archived).Msg("archive snapshot written")
	}
	return nil
}

func writeCSV(path string, t Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header %s: %w", path, err)
	}
	if err := cw.WriteAll(t.Strings()); err != nil {
		return fmt.Errorf("write rows %s: %w", path, err)
	}
	return nil
}

// BaseName reduces an input reference (often a file path) to a file-name
// friendly stem.
func BaseName(input string) string {
	name := filepath.Base(strings.TrimSpace(input))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "model"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':':
			return '_'
		}
		return r
	}, name)
}
