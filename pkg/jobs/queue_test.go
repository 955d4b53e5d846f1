package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestQueueProcessesJobs(t *testing.T) {
	var handled int64
	q := NewQueue("test", func(context.Context, Job) error {
		atomic.AddInt64(&handled, 1)
		return nil
	}, QueueConfig{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job{ID: "j", Type: "noop"}))
	}
	waitFor(t, func() bool { return atomic.LoadInt64(&handled) == 5 })
}

func TestQueueRestartsAfterStop(t *testing.T) {
	var handled int64
	q := NewQueue("test", func(context.Context, Job) error {
		atomic.AddInt64(&handled, 1)
		return nil
	}, QueueConfig{Workers: 1})

	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "noop"}))
	waitFor(t, func() bool { return atomic.LoadInt64(&handled) == 1 })
	q.Stop()

	// a stopped queue refuses work until started again
	assert.Error(t, q.Enqueue(Job{ID: "j2", Type: "noop"}))

	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{ID: "j3", Type: "noop"}))
	waitFor(t, func() bool { return atomic.LoadInt64(&handled) == 2 })
	q.Stop()
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts int64
	q := NewQueue("test", func(context.Context, Job) error {
		if atomic.AddInt64(&attempts, 1) < 3 {
			return errors.New("push failed")
		}
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 5, RetryDelay: 5 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "push"}))
	waitFor(t, func() bool { return atomic.LoadInt64(&attempts) == 3 })
}
