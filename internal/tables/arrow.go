package tables

import (
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/aarondill/TaraBomSheets/sdks/schema"
	"github.com/aarondill/TaraBomSheets/sdks/streaming"
)

const defaultArrowBatchSize = 1000

// ArrowWriter writes rows as an Arrow IPC file, one record batch per
// batchSize rows. Int32 columns are parsed from the row strings; an empty
// cell in a nullable column becomes null.
type ArrowWriter struct {
	schema    schema.Schema
	writer    *ipc.FileWriter
	builder   *array.RecordBuilder
	batchSize int
	pending   int
}

// NewArrowWriter starts an Arrow IPC file on w
func NewArrowWriter(w io.Writer, s schema.Schema, batchSize int) (*ArrowWriter, error) {
	if batchSize <= 0 {
		batchSize = defaultArrowBatchSize
	}

	pool := memory.NewGoAllocator()
	arrowSchema := schema.NewArrowSchemaManager().ToArrow(s)

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(arrowSchema), ipc.WithAllocator(pool))
	if err != nil {
		return nil, fmt.Errorf("failed to create Arrow file writer: %w", err)
	}

	return &ArrowWriter{
		schema:    s,
		writer:    fw,
		builder:   array.NewRecordBuilder(pool, arrowSchema),
		batchSize: batchSize,
	}, nil
}

// Write appends a row to the current batch
func (a *ArrowWriter) Write(row streaming.Row) error {
	if len(row) != len(a.schema.Columns) {
		return fmt.Errorf("row has %d cells, schema %s has %d columns", len(row), a.schema.ID, len(a.schema.Columns))
	}

	for i, col := range a.schema.Columns {
		if err := a.appendValue(a.builder.Field(i), col, row[i]); err != nil {
			return err
		}
	}

	a.pending++
	if a.pending >= a.batchSize {
		return a.flush()
	}
	return nil
}

func (a *ArrowWriter) appendValue(builder array.Builder, col schema.Column, value string) error {
	switch col.Type {
	case schema.TypeInt32:
		b := builder.(*array.Int32Builder)
		if value == "" && col.Nullable {
			b.AppendNull()
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return fmt.Errorf("column %s (%s): %w", col.Name, col.Type, err)
		}
		b.Append(int32(n))
	default:
		builder.(*array.StringBuilder).Append(value)
	}
	return nil
}

func (a *ArrowWriter) flush() error {
	if a.pending == 0 {
		return nil
	}
	record := a.builder.NewRecord()
	defer record.Release()
	a.pending = 0

	if err := a.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write Arrow record: %w", err)
	}
	return nil
}

// Close writes the last batch and the file footer
func (a *ArrowWriter) Close() error {
	defer a.builder.Release()
	if err := a.flush(); err != nil {
		return err
	}
	return a.writer.Close()
}
