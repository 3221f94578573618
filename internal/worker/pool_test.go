package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{err: errors.New("job error")}
	}
	return &mockResult{err: nil}
}

func TestNewPool(t *testing.T) {
	p1 := NewPool(5)
	if p1.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p1.workers)
	}

	p2 := NewPool(0)
	if p2.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.workers)
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(2)
	pool.Start(context.Background())

	var executed int32
	count := 10

	for i := 0; i < count; i++ {
		pool.Submit(&mockJob{executed: &executed})
	}
	pool.Finish()

	results := pool.Wait()

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}

	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

func TestPool_ManyMoreJobsThanBuffers(t *testing.T) {
	// With 2 workers the queue buffers absorb only a handful of jobs, so
	// submission must proceed while Wait drains results. Far more jobs
	// than buffer capacity must still complete.
	pool := NewPool(2)
	pool.Start(context.Background())

	var executed int32
	count := 30

	go func() {
		for i := 0; i < count; i++ {
			pool.Submit(&mockJob{executed: &executed})
		}
		pool.Finish()
	}()

	done := make(chan []Result, 1)
	go func() {
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if len(results) != count {
			t.Errorf("expected %d results, got %d", count, len(results))
		}
		if atomic.LoadInt32(&executed) != int32(count) {
			t.Errorf("expected %d executed jobs, got %d", count, executed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pool stalled: submission wedged against full buffers")
	}
}

func TestPool_ErrorsCollected(t *testing.T) {
	pool := NewPool(2)
	pool.Start(context.Background())

	pool.Submit(&mockJob{shouldErr: true})
	pool.Submit(&mockJob{})
	pool.Finish()

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	errCount := 0
	for _, r := range results {
		if r.GetError() != nil {
			errCount++
		}
	}
	if errCount != 1 {
		t.Errorf("expected 1 error, got %d", errCount)
	}
}

func TestPool_ContextCancelStopsWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	pool := NewPool(1)
	pool.Start(ctx)

	pool.Submit(&mockJob{duration: 5 * time.Second})
	cancel()

	done := make(chan []Result, 1)
	go func() {
		done <- pool.Wait()
	}()

	select {
	case <-done:
		// Workers observed cancellation; queued work was abandoned
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation did not stop the pool")
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(1)
	pool.Start(context.Background())

	pool.Submit(&mockJob{duration: 5 * time.Second})
	pool.Shutdown()
	// Shutdown must return promptly; the slow job observes cancellation
}
