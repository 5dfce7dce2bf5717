// Package streaming moves output rows from a producer to a sink through a
// bounded buffer, so a fast producer waits for a slow sink.
package streaming

import (
	"context"
	"sync"
)

// DefaultBufferSize is the number of rows a Pipe holds before Send blocks
const DefaultBufferSize = 256

// Row is one output row, cells in schema column order
type Row []string

// RowSender defines the producer side of a row stream
type RowSender interface {
	Send(ctx context.Context, row Row) error
}

// RowWriter is a sink that persists rows. Close flushes buffered state but
// does not close the underlying writer.
type RowWriter interface {
	Write(row Row) error
	Close() error
}

// Pipe is a bounded row stream between one producer and one sink
type Pipe struct {
	name      string
	rows      chan Row
	closeOnce sync.Once

	mutex       sync.Mutex
	rowsSent    int64
	rowsWritten int64
}

// NewPipe creates a pipe holding at most size rows in flight
func NewPipe(name string, size int) *Pipe {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Pipe{
		name: name,
		rows: make(chan Row, size),
	}
}

// Name returns the table name the pipe feeds
func (p *Pipe) Name() string {
	return p.name
}

// Send queues a row, blocking while the buffer is full
func (p *Pipe) Send(ctx context.Context, row Row) error {
	select {
	case p.rows <- row:
		p.mutex.Lock()
		p.rowsSent++
		p.mutex.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CloseSend marks the end of the stream. It is safe to call more than once.
func (p *Pipe) CloseSend() {
	p.closeOnce.Do(func() { close(p.rows) })
}

// Drain writes rows to w until the producer closes the pipe or ctx is done.
// It returns the number of rows written.
func (p *Pipe) Drain(ctx context.Context, w RowWriter) (int64, error) {
	for {
		select {
		case row, ok := <-p.rows:
			if !ok {
				return p.Written(), w.Close()
			}
			if err := w.Write(row); err != nil {
				return p.Written(), err
			}
			p.mutex.Lock()
			p.rowsWritten++
			p.mutex.Unlock()
		case <-ctx.Done():
			return p.Written(), ctx.Err()
		}
	}
}

// Sent returns the number of rows accepted by Send
func (p *Pipe) Sent() int64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.rowsSent
}

// Written returns the number of rows handed to the sink
func (p *Pipe) Written() int64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.rowsWritten
}

// Collector is an in-memory RowWriter
type Collector struct {
	Rows   []Row
	Closed bool
}

// Write appends a row
func (c *Collector) Write(row Row) error {
	c.Rows = append(c.Rows, row)
	return nil
}

// Close marks the collector closed
func (c *Collector) Close() error {
	c.Closed = true
	return nil
}
