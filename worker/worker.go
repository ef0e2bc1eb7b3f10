package worker

import (
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/enginetrace/oerror"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

// Pool runs submitted functions on a fixed number of goroutines.
type Pool struct {
	queue chan func()
	wg    sync.WaitGroup
	log   *logrus.Logger

	mu     deadlock.RWMutex
	closed bool
}

// New starts a pool with the given number of workers. A non-positive count uses
// one worker per CPU.
func New(workers int, log *logrus.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := &Pool{
		queue: make(chan func(), workers),
		log:   log,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for f := range p.queue {
		p.run(f)
	}
}

// run executes f, recovering and reporting a panic so the worker survives it.
func (p *Pool) run(f func()) {
	defer func() {
		if err := recover(); err != nil {
			hub := sentry.CurrentHub().Clone()
			hub.Recover(oerror.New("worker task crashed: %v", err))
			hub.Flush(time.Second * 5)
			p.log.Errorf("worker task crashed: %v", err)
		}
	}()
	f()
}

// Submit queues f to be run by the pool. It blocks while every worker is busy and
// the queue is full, and fails once the pool has been closed.
func (p *Pool) Submit(f func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return oerror.New("worker: submit on closed pool")
	}
	p.queue <- f
	return nil
}

// TrySubmit queues f like Submit but never waits. It fails if the queue is full or
// the pool has been closed.
func (p *Pool) TrySubmit(f func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return oerror.New("worker: submit on closed pool")
	}
	select {
	case p.queue <- f:
		return nil
	default:
		return oerror.New("worker: pool is busy")
	}
}

// Close stops accepting work and waits for queued work to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
