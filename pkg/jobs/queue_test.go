package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var processed int32
	q := NewQueue("test", func(context.Context, Job) error {
		atomic.AddInt32(&processed, 1)
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job{ID: "job", Type: "thumbnail"}))
	}
	q.Wait()
	assert.EqualValues(t, 5, atomic.LoadInt32(&processed))
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "1"}))
}

func TestQueueRetriesAndReportsFailure(t *testing.T) {
	var attempts int32
	var mu sync.Mutex
	var final error
	q := NewQueue("test", func(context.Context, Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("boom")
	}, QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond, OnResult: func(_ Job, err error) {
		mu.Lock()
		final = err
		mu.Unlock()
	}})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1"}))
	q.Wait()
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
	mu.Lock()
	assert.EqualError(t, final, "boom")
	mu.Unlock()
}

func TestQueueCoalescesByKey(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue("test", func(context.Context, Job) error {
		<-release
		return nil
	}, QueueConfig{})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1", Key: "room-1"}))
	assert.ErrorIs(t, q.Enqueue(Job{ID: "2", Key: "room-1"}), ErrDuplicate)
	require.NoError(t, q.Enqueue(Job{ID: "3", Key: "room-2"}))
	close(release)
	q.Wait()
	require.NoError(t, q.Enqueue(Job{ID: "4", Key: "room-1"}))
	q.Wait()
}
