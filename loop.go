package arthax

import (
	"context"
	"sync"
)

// Loop is a cooperative, single-threaded event queue. Every trigger handler and
// every exchange resolution runs on it, one at a time and in posting order, so
// presenter state and the conversation log are only ever mutated from one
// goroutine.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	pending sync.WaitGroup
}

// NewLoop returns an idle loop. Call Run to start processing.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues f. It never blocks.
func (l *Loop) Post(f func()) {
	l.pending.Add(1)
	l.mu.Lock()
	l.queue = append(l.queue, f)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Go runs work on its own goroutine, the suspension point of the loop, and posts
// the continuation it returns.
func (l *Loop) Go(work func() func()) {
	l.pending.Add(1)
	go func() {
		defer l.pending.Done()
		if next := work(); next != nil {
			l.Post(next)
		}
	}()
}

// Run processes posted functions until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
		for {
			l.mu.Lock()
			if len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			f := l.queue[0]
			l.queue = l.queue[1:]
			l.mu.Unlock()

			f()
			l.pending.Done()
		}
	}
}

// Wait blocks until nothing is queued and no exchange is in flight.
func (l *Loop) Wait() {
	l.pending.Wait()
}
