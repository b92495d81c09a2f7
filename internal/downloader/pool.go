package downloader

import (
	"context"
	"sync"
)

// Task is one unit of transfer work submitted to a Pool.
type Task struct {
	URL string
	Run func(ctx context.Context) ([]string, error)
}

// TaskResult is the outcome of a Task. Files lists what it wrote to disk.
type TaskResult struct {
	URL   string
	Files []string
	Err   error
}

// Pool runs tasks on a fixed number of workers. A failing task does not
// affect the others; Wait returns every outcome in completion order.
type Pool struct {
	ctx     context.Context
	tasks   chan Task
	wg      sync.WaitGroup
	mu      sync.Mutex
	results []TaskResult
	closed  bool
}

// NewPool starts workers goroutines bound to ctx.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		ctx:   ctx,
		tasks: make(chan Task),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit blocks until a worker accepts t or ctx ends. A task refused
// because of cancellation is recorded as failed with the context error.
func (p *Pool) Submit(t Task) {
	select {
	case p.tasks <- t:
	case <-p.ctx.Done():
		p.record(TaskResult{URL: t.URL, Err: p.ctx.Err()})
	}
}

// Wait stops accepting tasks and returns once every accepted task is done.
func (p *Pool) Wait() []TaskResult {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]TaskResult, len(p.results))
	copy(out, p.results)
	return out
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		p.record(runTask(p.ctx, t))
	}
}

func (p *Pool) record(r TaskResult) {
	p.mu.Lock()
	p.results = append(p.results, r)
	p.mu.Unlock()
}

func runTask(ctx context.Context, t Task) TaskResult {
	files, err := t.Run(ctx)
	return TaskResult{URL: t.URL, Files: files, Err: err}
}
