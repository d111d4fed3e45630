// Package worker runs tasks on a fixed set of goroutines and tracks batches.
package worker

import (
	"context"
	"log"
	"sync"

	"warehouse-sim-backend/internal/task"
)

// Batch is a set of tasks submitted together.
type Batch struct {
	ID string

	wg      sync.WaitGroup
	mu      sync.Mutex
	results []task.Result
	pending int
	done    chan struct{}
}

func newBatch(id string, n int) *Batch {
	b := &Batch{ID: id, results: make([]task.Result, n), pending: n, done: make(chan struct{})}
	b.wg.Add(n)
	go func() {
		b.wg.Wait()
		close(b.done)
	}()
	return b
}

// record stores res and reports whether it was the last outstanding result.
func (b *Batch) record(i int, res task.Result) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[i] = res
	b.pending--
	return b.pending == 0
}

// Done is closed once every task of the batch has finished.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the batch is done or ctx is cancelled.
func (b *Batch) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of tasks still running or queued.
func (b *Batch) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Results returns a copy of the result slots. Slots of unfinished tasks are zero.
func (b *Batch) Results() []task.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]task.Result, len(b.results))
	copy(out, b.results)
	return out
}

// Summary is a compact account of a batch.
type Summary struct {
	ID      string `json:"id"`
	Total   int    `json:"total"`
	Pending int    `json:"pending"`
	Failed  int    `json:"failed"`
}

// Summary counts the batch's finished and failed tasks.
func (b *Batch) Summary() Summary {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := Summary{ID: b.ID, Total: len(b.results), Pending: b.pending}
	for _, r := range b.results {
		if r.Err != nil {
			s.Failed++
		}
	}
	return s
}

type job struct {
	batch *Batch
	index int
	task  task.Task
}

// Pool manages a fixed number of workers.
type Pool struct {
	size int
	jobs chan job

	// OnResult is called from the worker after every task.
	OnResult func(batch *Batch, res task.Result)
	// OnBatchDone is called once per batch after its last task.
	OnBatchDone func(batch *Batch)
}

// NewPool creates a pool of size workers.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{
		size: size,
		jobs: make(chan job, size), // Buffered channel
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Start launches the worker goroutines. They stop when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		go p.worker(ctx, i)
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case j := <-p.jobs:
			p.run(ctx, j)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

func (p *Pool) run(ctx context.Context, j job) {
	res := task.Execute(ctx, j.task)
	if p.OnResult != nil {
		p.OnResult(j.batch, res)
	}
	if j.batch.record(j.index, res) && p.OnBatchDone != nil {
		p.OnBatchDone(j.batch)
	}
	j.batch.wg.Done()
}

// Submit queues tasks as one batch and returns immediately. Queueing happens
// in the background so a full queue never blocks the caller.
func (p *Pool) Submit(id string, tasks ...task.Task) *Batch {
	b := newBatch(id, len(tasks))
	if len(tasks) == 0 {
		return b
	}
	go func() {
		for i, t := range tasks {
			p.jobs <- job{batch: b, index: i, task: t}
		}
	}()
	return b
}
