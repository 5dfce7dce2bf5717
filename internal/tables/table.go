// Package tables holds the delimited-text tables routegen reads and writes:
// header-addressed input tables, the sources they come from, and the sinks
// output rows go to.
package tables

import (
	"context"
	"fmt"
	"strings"
)

// Table is an input table held in memory. Columns are addressed by header name.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable builds a table and indexes its header. When a header name repeats,
// the first column with that name wins.
func NewTable(name string, header []string, rows [][]string) *Table {
	t := &Table{
		Name:   name,
		Header: header,
		Rows:   rows,
		index:  make(map[string]int, len(header)),
	}
	for i, col := range header {
		if _, exists := t.index[col]; !exists {
			t.index[col] = i
		}
	}
	return t
}

// MissingColumnError reports a required column absent from a table header
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("table %s: missing required column %q", e.Table, e.Column)
}

// Column returns the position of the named column
func (t *Table) Column(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, &MissingColumnError{Table: t.Name, Column: name}
	}
	return i, nil
}

// Columns resolves several column names at once
func (t *Table) Columns(names ...string) ([]int, error) {
	positions := make([]int, len(names))
	for i, name := range names {
		pos, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		positions[i] = pos
	}
	return positions, nil
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Cell returns the value at column col of row, or "" past the end of a short row
func Cell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

// Blank reports whether every cell of row is empty or whitespace. Spreadsheet
// exports carry such rows below the data.
func Blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Source reads named tables from a storage backend
type Source interface {
	ReadTable(ctx context.Context, name string) (*Table, error)
	Close() error
}
