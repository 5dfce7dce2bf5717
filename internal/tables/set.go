package tables

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aarondill/TaraBomSheets/sdks/schema"
	"github.com/aarondill/TaraBomSheets/sdks/streaming"
)

// Names locates the four input tables within a source
type Names struct {
	Items        string
	Routes       string
	Consumption  string
	StageNumbers string
}

// Set holds the four input tables of one batch
type Set struct {
	Items        *Table
	Routes       *Table
	Consumption  *Table
	StageNumbers *Table
}

// LoadSet reads the four tables concurrently and returns once all of them
// are in memory. The first failure cancels the remaining reads.
func LoadSet(ctx context.Context, src Source, names Names) (*Set, error) {
	set := &Set{}
	g, gctx := errgroup.WithContext(ctx)

	read := func(name string, dst **Table) {
		g.Go(func() error {
			if name == "" {
				return fmt.Errorf("no table name configured")
			}
			t, err := src.ReadTable(gctx, name)
			if err != nil {
				return fmt.Errorf("failed to read table %s: %w", name, err)
			}
			*dst = t
			return nil
		})
	}

	read(names.Items, &set.Items)
	read(names.Routes, &set.Routes)
	read(names.Consumption, &set.Consumption)
	read(names.StageNumbers, &set.StageNumbers)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

// Format selects the encoding of output tables
type Format string

const (
	FormatCSV   Format = "csv"
	FormatArrow Format = "arrow"
)

// ParseFormat validates a configured output format
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatArrow:
		return FormatArrow, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want csv or arrow)", s)
	}
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	if f == FormatArrow {
		return ".arrow"
	}
	return ".csv"
}

// NewWriter returns a sink writing s-shaped rows to w in format f
func NewWriter(f Format, w io.Writer, s schema.Schema, delimiter rune) (streaming.RowWriter, error) {
	switch f {
	case FormatArrow:
		return NewArrowWriter(w, s, 0)
	case FormatCSV, "":
		return NewCSVWriter(w, s, delimiter)
	default:
		return nil, fmt.Errorf("unknown output format %q", f)
	}
}
