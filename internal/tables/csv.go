package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aarondill/TaraBomSheets/sdks/schema"
	"github.com/aarondill/TaraBomSheets/sdks/streaming"
)

const byteOrderMark = "\ufeff"

// ReadCSV parses a delimited table with a header row. Rows must have as many
// fields as the header.
func ReadCSV(name string, r io.Reader, delimiter rune) (*Table, error) {
	reader := csv.NewReader(r)
	if delimiter != 0 {
		reader.Comma = delimiter
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("table %s: empty input, expected a header row", name)
	}
	if err != nil {
		return nil, fmt.Errorf("table %s: failed to read header: %w", name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], byteOrderMark)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table %s: failed to read row: %w", name, err)
		}
		rows = append(rows, row)
	}

	return NewTable(name, header, rows), nil
}

// CSVWriter writes rows as delimited text, header first
type CSVWriter struct {
	writer *csv.Writer
}

// NewCSVWriter writes the schema header to w and returns a sink for rows
func NewCSVWriter(w io.Writer, s schema.Schema, delimiter rune) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}
	if err := cw.Write(s.Names()); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return &CSVWriter{writer: cw}, nil
}

// Write writes one row
func (c *CSVWriter) Write(row streaming.Row) error {
	return c.writer.Write(row)
}

// Close flushes buffered output
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.writer.Error()
}
