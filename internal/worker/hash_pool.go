package worker

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned when work is submitted after Stop.
var ErrPoolClosed = errors.New("hash pool closed")

// HashPool bounds the number of concurrent password-hashing operations so a
// burst of logins cannot monopolize CPU needed by unrelated requests. Jobs
// are plain closures; submission blocks until a worker is free or the
// caller's context is done.
type HashPool struct {
	jobs chan func()
	quit chan struct{}
	wg   sync.WaitGroup
}

// NewHashPool starts a pool with the given number of workers.
func NewHashPool(workers int) *HashPool {
	if workers <= 0 {
		workers = 4
	}
	p := &HashPool{
		jobs: make(chan func()),
		quit: make(chan struct{}),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.run()
	}
	return p
}

func (p *HashPool) run() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobs:
			job()
		case <-p.quit:
			return
		}
	}
}

// Do executes fn on a pool worker and waits for it to finish. It returns the
// context error if the caller gives up before a worker picks the job up.
// The jobs channel is unbuffered, so a successful handoff means a worker is
// already running the closure.
func (p *HashPool) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	job := func() {
		defer close(done)
		fn()
	}

	select {
	case p.jobs <- job:
	case <-p.quit:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	<-done
	return nil
}

// Stop shuts the workers down after their in-flight jobs complete.
func (p *HashPool) Stop() {
	select {
	case <-p.quit:
		return
	default:
	}
	close(p.quit)
	p.wg.Wait()
}
