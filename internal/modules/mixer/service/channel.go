package service

import (
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"soundblanket/internal/modules/mixer/domain"
	mixerout "soundblanket/internal/modules/mixer/port/out"
	"soundblanket/internal/platform/runloop"
)

// Timing holds the delays of a channel's deferred work.
type Timing struct {
	// RetryDelay separates a failed backend construction from the next attempt.
	RetryDelay time.Duration
	// ApplyDelay gives a freshly requested backend time to come up before a
	// snapshot's deferred play fires.
	ApplyDelay time.Duration
}

func DefaultTiming() Timing {
	return Timing{RetryDelay: time.Second, ApplyDelay: 200 * time.Millisecond}
}

// Channel is the state machine of one looping audio source. All methods must
// run on the scheduler's loop; every one of them is safe to call in any state.
type Channel struct {
	source  string
	factory mixerout.BackendFactory
	sched   runloop.Scheduler
	log     hclog.Logger
	timing  Timing

	state   domain.ChannelState
	backend mixerout.Backend

	// gen invalidates load completions and retries; bumped per load attempt and on release.
	gen uint64
	// epoch invalidates deferred plays; bumped on stop and release.
	epoch uint64
	// wantPlay records a play requested while the backend was not ready.
	wantPlay bool

	listeners map[int]func(domain.ChannelState)
	nextListener int
}

func NewChannel(id domain.ChannelID, source string, volume float64, factory mixerout.BackendFactory, sched runloop.Scheduler, log hclog.Logger, timing Timing) *Channel {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Channel{
		source:  source,
		factory: factory,
		sched:   sched,
		log:     log.With("channel", string(id)),
		timing:  timing,
		state: domain.ChannelState{
			ID:     id,
			Volume: domain.ClampVolume(volume),
			Status: domain.StatusUnloaded,
		},
		listeners: map[int]func(domain.ChannelState){},
	}
}

func (c *Channel) ID() domain.ChannelID { return c.state.ID }

func (c *Channel) State() domain.ChannelState { return c.state }

func (c *Channel) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		ID:        c.state.ID,
		Volume:    c.state.Volume,
		HasVolume: true,
		Playing:   c.state.Playing,
	}
}

// OnChange registers fn for state changes and returns its cancel function.
func (c *Channel) OnChange(fn func(domain.ChannelState)) func() {
	key := c.nextListener
	c.nextListener++
	c.listeners[key] = fn
	return func() { delete(c.listeners, key) }
}

func (c *Channel) Load() {
	if c.state.Status != domain.StatusUnloaded {
		return
	}
	c.gen++
	gen := c.gen
	c.setStatus(domain.StatusLoading)

	var (
		backend mixerout.Backend
		err     error
	)
	c.sched.Async(func() {
		backend, err = c.factory.Open(c.source)
	}, func() {
		c.finishLoad(gen, backend, err)
	})
}

func (c *Channel) finishLoad(gen uint64, backend mixerout.Backend, err error) {
	if gen != c.gen || c.state.Status != domain.StatusLoading {
		if backend != nil {
			c.closeBackend(backend)
		}
		return
	}
	if err != nil {
		c.log.Warn("backend init failed", "source", c.source, "retry_in", c.timing.RetryDelay, "error", err)
		c.setStatus(domain.StatusFailed)
		c.scheduleRetry(gen)
		return
	}
	c.backend = backend
	c.warnOnError("set loop", backend.SetLoop(true))
	c.warnOnError("set volume", backend.SetVolume(c.state.Volume))
	c.state.Status = domain.StatusReady
	if c.wantPlay {
		c.start()
	}
	c.notify()
}

func (c *Channel) scheduleRetry(gen uint64) {
	c.sched.After(c.timing.RetryDelay, func() {
		if gen != c.gen || c.state.Status != domain.StatusFailed {
			return
		}
		c.state.Status = domain.StatusUnloaded
		c.Load()
	})
}

// Play starts the loop from the top, or defers until the backend is ready.
func (c *Channel) Play() {
	if c.state.Status != domain.StatusReady {
		c.wantPlay = true
		c.Load()
		return
	}
	if c.start() {
		c.notify()
	}
}

// start issues the backend play. It reports whether observable state changed.
func (c *Channel) start() bool {
	c.wantPlay = false
	c.warnOnError("set loop", c.backend.SetLoop(true))
	c.warnOnError("set volume", c.backend.SetVolume(c.state.Volume))
	if err := c.backend.Play(); err != nil {
		c.log.Warn("backend play failed", "retry_in", c.timing.RetryDelay, "error", err)
		c.discardBackend()
		c.state.Playing = false
		c.state.Status = domain.StatusFailed
		c.wantPlay = true
		c.scheduleRetry(c.gen)
		return true
	}
	changed := !c.state.Playing
	c.state.Playing = true
	return changed
}

func (c *Channel) Stop() {
	c.epoch++
	c.wantPlay = false
	if !c.state.Playing {
		return
	}
	c.state.Playing = false
	if err := c.backend.Stop(); err != nil {
		c.log.Warn("backend stop failed, dropping handle", "error", err)
		c.discardBackend()
		c.gen++
		c.state.Status = domain.StatusUnloaded
	}
	c.notify()
}

func (c *Channel) SetVolume(v float64) {
	v = domain.ClampVolume(v)
	if c.state.Status == domain.StatusReady {
		c.warnOnError("set volume", c.backend.SetVolume(v))
	}
	if v == c.state.Volume {
		return
	}
	c.state.Volume = v
	c.notify()
}

// ApplySnapshot moves the channel to the snapshot's state. Playback is
// requested as a deferred task so backend construction can start first.
func (c *Channel) ApplySnapshot(s domain.Snapshot) {
	if s.HasVolume {
		c.SetVolume(s.Volume)
	}
	if !s.Playing {
		c.Stop()
		return
	}
	c.Load()
	epoch := c.epoch
	c.sched.After(c.timing.ApplyDelay, func() {
		if epoch != c.epoch {
			return
		}
		c.Play()
	})
}

func (c *Channel) Release() {
	c.epoch++
	c.gen++
	c.wantPlay = false
	changed := c.state.Playing || c.state.Status != domain.StatusUnloaded
	if c.state.Playing && c.backend != nil {
		c.warnOnError("stop", c.backend.Stop())
	}
	c.state.Playing = false
	c.discardBackend()
	c.state.Status = domain.StatusUnloaded
	if changed {
		c.notify()
	}
}

func (c *Channel) discardBackend() {
	if c.backend == nil {
		return
	}
	c.closeBackend(c.backend)
	c.backend = nil
}

func (c *Channel) closeBackend(b mixerout.Backend) {
	c.warnOnError("release", b.Release())
}

func (c *Channel) setStatus(s domain.Status) {
	if c.state.Status == s {
		return
	}
	c.state.Status = s
	c.notify()
}

func (c *Channel) notify() {
	for _, fn := range c.listeners {
		fn(c.state)
	}
}

func (c *Channel) warnOnError(op string, err error) {
	if err != nil {
		c.log.Warn("backend "+op+" failed", "error", err)
	}
}
