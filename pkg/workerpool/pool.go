// Package workerpool runs tasks on a fixed number of goroutines.
//
// The queue consumer uses it so that each received batch is processed as an
// independent invocation while the number of concurrent batches stays
// bounded:
//
//	pool := workerpool.New(4, workerpool.WithName("catalog-batch"))
//	defer pool.Shutdown()
//	_ = pool.SubmitWait(func() { handle(batch) })
package workerpool

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

// ErrPoolFull is returned by Submit when every worker is busy and the
// backlog is full.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned once Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	name    string
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closeMu sync.RWMutex
	closed  bool
	active  atomic.Int64
	panics  atomic.Int64
}

// Option configures a Pool.
type Option func(*Pool)

// WithName labels the pool in panic logs.
func WithName(name string) Option {
	return func(p *Pool) { p.name = name }
}

// New starts size workers (at least one). The backlog holds 2*size tasks.
func New(size int, opts ...Option) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{name: "default", tasks: make(chan func(), size*2)}
	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait enqueues task, blocking until the backlog has room.
func (p *Pool) SubmitWait(task func()) error {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	p.tasks <- task
	return nil
}

// Shutdown stops accepting tasks and waits for queued and running ones.
// Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.closeMu.Lock()
		p.closed = true
		close(p.tasks)
		p.closeMu.Unlock()
		p.wg.Wait()
	})
}

// Active reports how many tasks are running right now.
func (p *Pool) Active() int64 { return p.active.Load() }

// Panics reports how many tasks have panicked.
func (p *Pool) Panics() int64 { return p.panics.Load() }

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

// run executes task; a panic is logged and the worker keeps going.
func (p *Pool) run(task func()) {
	p.active.Add(1)
	defer p.active.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			logger.Error("workerpool: task panicked", "pool", p.name, "panic", r)
		}
	}()
	task()
}
