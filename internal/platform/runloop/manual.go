package runloop

import (
	"context"
	"sort"
	"time"
)

// Manual is a deterministic Scheduler driven by virtual time. Tasks only run
// when the test calls RunPending or Advance.
type Manual struct {
	now    time.Duration
	seq    int
	queue  []func()
	timers []manualTimer
}

type manualTimer struct {
	at   time.Duration
	seq  int
	task func()
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Post(task func()) {
	m.queue = append(m.queue, task)
}

func (m *Manual) After(d time.Duration, task func()) {
	if d < 0 {
		d = 0
	}
	m.seq++
	m.timers = append(m.timers, manualTimer{at: m.now + d, seq: m.seq, task: task})
}

// Async runs work immediately; done still waits for the next RunPending.
func (m *Manual) Async(work func(), done func()) {
	work()
	m.Post(done)
}

func (m *Manual) Call(ctx context.Context, task func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return task()
}

// Elapsed reports the virtual time consumed so far.
func (m *Manual) Elapsed() time.Duration {
	return m.now
}

// Pending reports queued tasks plus armed timers.
func (m *Manual) Pending() int {
	return len(m.queue) + len(m.timers)
}

// RunPending drains the immediate queue, including tasks posted while draining.
func (m *Manual) RunPending() {
	for len(m.queue) > 0 {
		task := m.queue[0]
		m.queue = m.queue[1:]
		task()
	}
}

// Advance moves virtual time forward by d, firing due timers in order.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	m.RunPending()
	for {
		idx := m.nextDue(target)
		if idx < 0 {
			break
		}
		t := m.timers[idx]
		m.timers = append(m.timers[:idx], m.timers[idx+1:]...)
		m.now = t.at
		t.task()
		m.RunPending()
	}
	m.now = target
}

func (m *Manual) nextDue(target time.Duration) int {
	if len(m.timers) == 0 {
		return -1
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at == m.timers[j].at {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].at < m.timers[j].at
	})
	if m.timers[0].at > target {
		return -1
	}
	return 0
}
