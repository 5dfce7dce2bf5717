package batch

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aarondill/TaraBomSheets/internal/tables"
	"github.com/aarondill/TaraBomSheets/sdks/schema"
	"github.com/aarondill/TaraBomSheets/sdks/streaming"
)

// fileSink is a RowWriter owning a temporary file next to its final path.
// The file only appears under path once commit succeeds.
type fileSink struct {
	streaming.RowWriter
	path      string
	buf       *bufio.Writer
	file      *os.File
	closed    bool
	committed bool
}

func createFileSink(path string, format tables.Format, s schema.Schema, delimiter rune) (*fileSink, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	buf := bufio.NewWriter(f)
	w, err := tables.NewWriter(format, buf, s, delimiter)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to start %s: %w", path, err)
	}

	return &fileSink{
		RowWriter: w,
		path:      path,
		buf:       buf,
		file:      f,
	}, nil
}

// Close finishes the encoding, flushes and closes the file
func (s *fileSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.RowWriter.Close()
	if ferr := s.buf.Flush(); err == nil {
		err = ferr
	}
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// commit moves the finished file to its final path
func (s *fileSink) commit() error {
	if !s.closed {
		return errors.New("commit of unfinished output " + s.path)
	}
	if err := os.Chmod(s.file.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to publish %s: %w", s.path, err)
	}
	if err := os.Rename(s.file.Name(), s.path); err != nil {
		return fmt.Errorf("failed to publish %s: %w", s.path, err)
	}
	s.committed = true
	return nil
}

// discard closes and removes the temporary file unless it was committed
func (s *fileSink) discard() {
	if s.committed {
		return
	}
	if !s.closed {
		s.closed = true
		s.file.Close()
	}
	os.Remove(s.file.Name())
}
