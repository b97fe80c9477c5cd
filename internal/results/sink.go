package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrWrite marks a failure to persist the output table. The pipeline exists
// to produce this table, so callers abort the run when they see it.
var ErrWrite = errors.New("output write failed")

// Column headers of the output table.
const (
	ColumnFilename  = "filename"
	ColumnVoiceline = "voiceline"
)

// Sink accumulates (filename, voiceline) rows and writes them as CSV. Rows
// are appended in processing order and flushed on Close. Any write failure
// is fatal to the run since a result that cannot be persisted defeats the
// whole pipeline.
type Sink struct {
	path   string
	file   *os.File
	writer *csv.Writer
	rows   int
}

// NewSink prepares a sink for the given path. The file itself is opened on
// first Append or on Close, so a sink that never runs leaves an existing
// table untouched. Opening truncates the previous run's table and writes
// the header row.
func NewSink(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Sink{path: path}, nil
}

func (s *Sink) ensureOpen() error {
	if s.writer != nil {
		return nil
	}
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("%w: create output table: %w", ErrWrite, err)
	}
	writer := csv.NewWriter(file)
	if err := writer.Write([]string{ColumnFilename, ColumnVoiceline}); err != nil {
		file.Close()
		return fmt.Errorf("%w: write header: %w", ErrWrite, err)
	}
	s.file = file
	s.writer = writer
	return nil
}

// Append records one result row. An empty voiceline is a legitimate row for
// silent audio, not an error.
func (s *Sink) Append(filename, voiceline string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if err := s.writer.Write([]string{filename, voiceline}); err != nil {
		return fmt.Errorf("%w: write row for %s: %w", ErrWrite, filename, err)
	}
	s.rows++
	return nil
}

// Rows returns the number of data rows appended so far.
func (s *Sink) Rows() int {
	return s.rows
}

// Path returns the output table location.
func (s *Sink) Path() string {
	return s.path
}

// Close flushes buffered rows and closes the file. A run with no rows still
// produces a header-only table. Close reports the first error encountered
// so a partially persisted table is never mistaken for a complete one.
func (s *Sink) Close() error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	s.writer.Flush()
	flushErr := s.writer.Error()
	closeErr := s.file.Close()
	if flushErr != nil {
		return fmt.Errorf("%w: flush output table: %w", ErrWrite, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: close output table: %w", ErrWrite, closeErr)
	}
	return nil
}
