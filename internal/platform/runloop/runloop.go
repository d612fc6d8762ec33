// Package runloop provides the single logical thread that owns channel state.
//
// Every mutation of mixer state happens inside a task executed by a Scheduler.
// Blocking work (opening an audio device, decoding a file) runs through Async so
// the loop never waits on it; the completion is observed by a later task.
package runloop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
)

// ErrStopped is returned by Call once the loop has exited.
var ErrStopped = errors.New("run loop stopped")

// Scheduler queues work onto the loop thread.
type Scheduler interface {
	// Post queues task to run as soon as the loop is free.
	Post(task func())
	// After queues task to run once d has elapsed.
	After(d time.Duration, task func())
	// Async runs work off the loop and queues done once it returns.
	Async(work func(), done func())
	// Call runs task on the loop and waits for its result. It must not be
	// invoked from inside a loop task.
	Call(ctx context.Context, task func() error) error
}

// Loop is the production Scheduler backed by one goroutine.
type Loop struct {
	log hclog.Logger

	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped chan struct{}
	closed  bool
}

func New(log hclog.Logger) *Loop {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Loop{
		log:     log,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// Run executes queued tasks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.shutdown()
	for {
		for {
			task, ok := l.next()
			if !ok {
				break
			}
			l.exec(task)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-l.wake:
		}
	}
}

func (l *Loop) Post(task func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) After(d time.Duration, task func()) {
	if d <= 0 {
		l.Post(task)
		return
	}
	time.AfterFunc(d, func() { l.Post(task) })
}

func (l *Loop) Async(work func(), done func()) {
	go func() {
		defer l.Post(done)
		defer func() {
			if r := recover(); r != nil {
				l.log.Error("async work panicked", "panic", r)
			}
		}()
		work()
	}()
}

func (l *Loop) Call(ctx context.Context, task func() error) error {
	result := make(chan error, 1)
	l.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("loop task panicked: %v", r)
			}
		}()
		result <- task()
	})
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		select {
		case err := <-result:
			return err
		default:
			return ErrStopped
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, true
}

func (l *Loop) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("loop task panicked", "panic", fmt.Sprint(r))
		}
	}()
	task()
}

func (l *Loop) shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.queue = nil
	close(l.stopped)
}
