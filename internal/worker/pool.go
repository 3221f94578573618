package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool manages a pool of workers that execute jobs concurrently.
//
// Usage: Start, Submit jobs, Finish once the last job is submitted,
// then Wait. The queue buffers are small, so a submitter that outruns
// the workers will block in Submit until Wait starts draining results;
// submit from a separate goroutine when the job count can exceed the
// buffers.
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	finishOnce sync.Once
	closeOnce  sync.Once
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, workers*2),
		results:  make(chan Result, workers*2),
	}
}

// Start starts the worker pool. Cancelling ctx stops the workers and
// abandons queued jobs. Start must be called before Submit.
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancelFunc = context.WithCancel(ctx)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker is the worker goroutine that processes jobs
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit submits a job to the pool for execution
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- job:
	}
}

// Finish marks the job stream complete. No Submit may follow.
func (p *Pool) Finish() {
	p.finishOnce.Do(func() {
		close(p.jobQueue)
	})
}

// Wait drains results until every worker has exited, then returns
// them. Safe to call while jobs are still being submitted; the
// submitter signals completion with Finish.
func (p *Pool) Wait() []Result {
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var results []Result
	for result := range p.results {
		results = append(results, result)
	}

	return results
}

// Shutdown shuts down the worker pool immediately
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
