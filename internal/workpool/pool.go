// Package workpool runs closures on a fixed set of goroutines fed from a
// shared FIFO queue.
package workpool

import (
	"fmt"
	"sync"
)

// Pool is a fixed-size worker pool. Tasks are executed in submission order
// by whichever worker is free; Wait blocks until every submitted task has
// returned, which makes it usable as a round barrier.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   []func()
	stopped bool

	pending sync.WaitGroup
	workers sync.WaitGroup
	size    int

	panicMu  sync.Mutex
	panicVal any
}

// New starts a pool with the given number of workers. With zero workers
// Submit runs tasks inline on the caller's goroutine.
func New(workers int) *Pool {
	if workers < 0 {
		workers = 0
	}
	p := &Pool{size: workers}
	p.cond = sync.NewCond(&p.mu)

	p.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Submit enqueues a task. Submitting to a closed pool panics.
func (p *Pool) Submit(task func()) {
	p.pending.Add(1)
	if p.size == 0 {
		p.run(task)
		return
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		p.pending.Done()
		panic("workpool: submit on closed pool")
	}
	p.tasks = append(p.tasks, task)
	p.mu.Unlock()
	p.cond.Signal()
}

// Wait blocks until all submitted tasks have finished. If a task panicked,
// Wait re-panics with the first recovered value.
func (p *Pool) Wait() {
	p.pending.Wait()

	p.panicMu.Lock()
	v := p.panicVal
	p.panicVal = nil
	p.panicMu.Unlock()
	if v != nil {
		panic(fmt.Sprintf("workpool: task panicked: %v", v))
	}
}

// Close drains the queue and joins every worker. It is safe to call more
// than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.cond.Broadcast()
	p.workers.Wait()
}

func (p *Pool) worker() {
	defer p.workers.Done()
	for {
		p.mu.Lock()
		for !p.stopped && len(p.tasks) == 0 {
			p.cond.Wait()
		}
		if p.stopped && len(p.tasks) == 0 {
			p.mu.Unlock()
			return
		}
		task := p.tasks[0]
		p.tasks[0] = nil
		p.tasks = p.tasks[1:]
		p.mu.Unlock()

		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	defer p.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			p.panicMu.Lock()
			if p.panicVal == nil {
				p.panicVal = r
			}
			p.panicMu.Unlock()
		}
	}()
	task()
}
