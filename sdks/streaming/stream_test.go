package streaming

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestPipe_DeliversRowsInOrder(t *testing.T) {
	ctx := context.Background()
	pipe := NewPipe("bom", 2)
	sink := &Collector{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer pipe.CloseSend()
		for i := 0; i < 10; i++ {
			if err := pipe.Send(gctx, Row{string(rune('a' + i))}); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		_, err := pipe.Drain(gctx, sink)
		return err
	})
	require.NoError(t, g.Wait())

	require.Len(t, sink.Rows, 10)
	assert.Equal(t, Row{"a"}, sink.Rows[0])
	assert.Equal(t, Row{"j"}, sink.Rows[9])
	assert.True(t, sink.Closed)
	assert.Equal(t, int64(10), pipe.Sent())
	assert.Equal(t, int64(10), pipe.Written())
}

func TestPipe_SendBlocksWhenBufferFull(t *testing.T) {
	pipe := NewPipe("stages", 1)
	require.NoError(t, pipe.Send(context.Background(), Row{"first"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := pipe.Send(ctx, Row{"second"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(1), pipe.Sent())
}

type failingWriter struct{}

func (failingWriter) Write(Row) error { return errors.New("disk full") }
func (failingWriter) Close() error    { return nil }

func TestPipe_SinkFailureUnblocksProducer(t *testing.T) {
	pipe := NewPipe("bom", 1)

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		defer pipe.CloseSend()
		for i := 0; i < 100; i++ {
			if err := pipe.Send(gctx, Row{"x"}); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		_, err := pipe.Drain(gctx, failingWriter{})
		return err
	})

	assert.EqualError(t, g.Wait(), "disk full")
}

func TestPipe_CloseSendIsIdempotent(t *testing.T) {
	pipe := NewPipe("errors", 0)
	pipe.CloseSend()
	pipe.CloseSend()

	n, err := pipe.Drain(context.Background(), &Collector{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
