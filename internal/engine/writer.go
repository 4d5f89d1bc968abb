package engine

import (
	"context"
	"sync"
)

// writer runs persistence jobs one at a time in submission order. The queue
// is unbounded so submit never blocks behind a slow provider.
type writer struct {
	mu     sync.Mutex
	wake   *sync.Cond
	jobs   []func()
	closed bool
	done   chan struct{}
	onErr  func(job string, err error)
}

func newWriter(onErr func(job string, err error)) *writer {
	w := &writer{
		done:  make(chan struct{}),
		onErr: onErr,
	}
	w.wake = sync.NewCond(&w.mu)
	go w.run()
	return w
}

func (w *writer) run() {
	defer close(w.done)
	for {
		w.mu.Lock()
		for len(w.jobs) == 0 && !w.closed {
			w.wake.Wait()
		}
		if len(w.jobs) == 0 {
			w.mu.Unlock()
			return
		}
		job := w.jobs[0]
		w.jobs[0] = nil
		w.jobs = w.jobs[1:]
		w.mu.Unlock()

		job()
	}
}

// enqueue appends job and reports false once the writer is closed
func (w *writer) enqueue(job func()) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	w.jobs = append(w.jobs, job)
	w.wake.Signal()
	return true
}

// submit enqueues fn. Once the writer is closed, jobs run inline so late
// mutations are still attempted.
func (w *writer) submit(name string, fn func() error) {
	task := func() {
		if err := fn(); err != nil {
			w.onErr(name, err)
		}
	}
	if !w.enqueue(task) {
		task()
	}
}

// flush blocks until every job submitted before the call has finished
func (w *writer) flush(ctx context.Context) error {
	barrier := make(chan struct{})
	if !w.enqueue(func() { close(barrier) }) {
		barrier = w.done
	}

	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close drains the queue and stops the goroutine
func (w *writer) close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.wake.Broadcast()
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
