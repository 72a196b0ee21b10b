// Package worker runs verification cases through a bounded pool and keeps
// batch output aligned with batch input.
package worker

import (
	"context"
	"sync"
)

// Job is one unit of work.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is whatever a job produces. Jobs in this package never fail the
// pool; failures travel inside the result.
type Result interface{}

// Pool executes jobs on a fixed number of workers. Submit and Results may
// run concurrently; call Done once all jobs are submitted.
type Pool struct {
	workers int
	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup
}

// NewPool creates a pool with the given worker count (minimum 1).
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, workers*2),
		results: make(chan Result, workers*2),
	}
}

// Start launches the workers. The results channel closes after Done has
// been called and every submitted job has finished.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	// Every submitted job runs even after cancellation: jobs observe the
	// canceled context themselves and return degraded results, so the
	// caller always gets one result per job.
	for job := range p.jobs {
		p.results <- job.Execute(ctx)
	}
}

// Submit queues a job. Blocks when the queue is full.
func (p *Pool) Submit(job Job) {
	p.jobs <- job
}

// Done signals that no more jobs will be submitted.
func (p *Pool) Done() {
	close(p.jobs)
}

// Results returns the channel of completed results.
func (p *Pool) Results() <-chan Result {
	return p.results
}
