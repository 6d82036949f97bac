package closer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloser_ClosesInReverseOrder(t *testing.T) {
	c := NewCloser(0)

	var (
		mu    sync.Mutex
		order []string
	)
	for _, name := range []string{"postgres", "redis", "outbox"} {
		c.Add(name, func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"outbox", "redis", "postgres"}, order)
}

func TestCloser_CollectsNamedErrors(t *testing.T) {
	c := NewCloser(0)
	boom := errors.New("boom")

	c.Add("kafka", func(context.Context) error { return boom })
	c.Add("redis", func(context.Context) error { return nil })

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "kafka: boom")
}

func TestCloser_CloseOnce(t *testing.T) {
	c := NewCloser(0)

	calls := 0
	c.Add("x", func(context.Context) error { calls++; return nil })

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestCloser_ForcesRemainingOnTimeout(t *testing.T) {
	c := NewCloser(100 * time.Millisecond)

	var firstForced bool
	c.Add("first", func(ctx context.Context) error {
		firstForced = ctx.Err() == nil
		return nil
	})
	c.Add("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Minute):
			return nil
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := c.Close(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Contains(t, err.Error(), "shutdown interrupted")
	assert.True(t, firstForced)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
