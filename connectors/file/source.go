// Package file reads input tables from delimited text files in a local directory
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/aarondill/TaraBomSheets/internal/tables"
)

// Source is a tables.Source over a directory
type Source struct {
	dir       string
	delimiter rune
	logger    *zap.Logger
}

// NewSource creates a source reading tables relative to dir
func NewSource(dir string, delimiter rune, logger *zap.Logger) (*Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %s is not a directory", dir)
	}

	return &Source{
		dir:       dir,
		delimiter: delimiter,
		logger:    logger,
	}, nil
}

// ReadTable reads the file name within the source directory
func (s *Source) ReadTable(ctx context.Context, name string) (*tables.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := tables.ReadCSV(name, f, s.delimiter)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Read table",
		zap.String("path", path),
		zap.Int("rows", t.Len()))
	return t, nil
}

func (s *Source) Close() error {
	return nil
}
