package transcript

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const fileDateLayout = "2006-01-02"

// FileSink is the date-named output file for one run. A second run on the
// same date overwrites the previous file.
type FileSink struct {
	path string
	f    *os.File
	w    *bufio.Writer
}

// NewFileSink creates <dir>/<YYYY-MM-DD>.txt, truncating any existing file
// for the same date.
func NewFileSink(dir string, now time.Time) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, now.Format(fileDateLayout)+".txt")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create transcript file: %w", err)
	}

	return &FileSink{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Path returns the transcript file location.
func (s *FileSink) Path() string { return s.path }

// Write appends to the transcript through the buffer.
func (s *FileSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Close flushes buffered lines and closes the file. Safe to call after a
// partial run; whatever was assembled stays on disk.
func (s *FileSink) Close() error {
	if err := s.w.Flush(); err != nil {
		_ = s.f.Close()
		return fmt.Errorf("flush transcript: %w", err)
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("close transcript: %w", err)
	}
	return nil
}
