// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-vfs.
//
// go-vfs is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package pool provides the fixed-size worker pool the VFS fans out on.
// Tasks are closures; Enqueue returns a handle the caller waits on. The
// queue is unbounded so enqueueing never deadlocks a worker.
package pool

import (
	"errors"
	"sync"
)

// ErrPoolShutdown is returned by Enqueue after Shutdown.
var ErrPoolShutdown = errors.New("thread pool is shut down")

// Task is the handle for an enqueued closure.
type Task struct {
	done chan struct{}
	err  error
}

// Wait blocks until the task has run and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// ThreadPool is a fixed-size worker pool pulling tasks from a single queue.
type ThreadPool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []*task
	shutdown bool

	size uint64
	wg   sync.WaitGroup
}

type task struct {
	fn     func() error
	handle *Task
}

// New creates a pool with n workers. n is clamped to at least 1.
func New(n uint64) *ThreadPool {
	if n < 1 {
		n = 1
	}
	p := &ThreadPool{size: n}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(int(n))
	for i := uint64(0); i < n; i++ {
		go p.worker()
	}
	return p
}

// Size returns the number of workers.
func (p *ThreadPool) Size() uint64 { return p.size }

// Enqueue submits fn for execution and returns its handle. After Shutdown
// the returned task fails immediately with ErrPoolShutdown.
func (p *ThreadPool) Enqueue(fn func() error) *Task {
	h := &Task{done: make(chan struct{})}

	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		h.err = ErrPoolShutdown
		close(h.done)
		return h
	}
	p.queue = append(p.queue, &task{fn: fn, handle: h})
	p.mu.Unlock()
	p.cond.Signal()

	return h
}

// WaitAll blocks until every task has finished and returns the first
// non-nil error. It never returns early: a failed task does not cancel
// its peers.
func (p *ThreadPool) WaitAll(tasks []*Task) error {
	var first error
	for _, t := range tasks {
		if err := t.Wait(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Shutdown stops the workers after the queued tasks drain and waits for
// them to exit.
func (p *ThreadPool) Shutdown() {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return
	}
	p.shutdown = true
	p.mu.Unlock()

	p.cond.Broadcast()
	p.wg.Wait()
}

func (p *ThreadPool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.shutdown {
			p.cond.Wait()
		}
		if len(p.queue) == 0 && p.shutdown {
			p.mu.Unlock()
			return
		}
		t := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		t.handle.err = t.fn()
		close(t.handle.done)
	}
}
