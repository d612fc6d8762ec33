package service_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soundblanket/internal/modules/mixer/domain"
	mixerout "soundblanket/internal/modules/mixer/port/out"
	"soundblanket/internal/modules/mixer/service"
	"soundblanket/internal/platform/clock"
	apperrors "soundblanket/internal/platform/errors"
	"soundblanket/internal/platform/runloop"
)

var testTiming = service.Timing{RetryDelay: time.Second, ApplyDelay: 200 * time.Millisecond}

type fakeBackend struct {
	source   string
	playing  bool
	loop     bool
	volume   float64
	released bool
	plays    int
	stops    int
	failPlay bool
	failStop bool
}

func (b *fakeBackend) Play() error {
	if b.failPlay {
		return errors.New("player in error state")
	}
	b.plays++
	b.playing = true
	return nil
}

func (b *fakeBackend) Stop() error {
	if b.failStop {
		return errors.New("illegal state")
	}
	b.stops++
	b.playing = false
	return nil
}

func (b *fakeBackend) SetVolume(v float64) error { b.volume = v; return nil }
func (b *fakeBackend) SetLoop(loop bool) error   { b.loop = loop; return nil }
func (b *fakeBackend) Release() error {
	b.released = true
	b.playing = false
	return nil
}

type fakeFactory struct {
	failures map[string]int
	// configure, when set, adjusts each backend as it is opened.
	configure func(b *fakeBackend, n int)
	opened    []*fakeBackend
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{failures: map[string]int{}}
}

func (f *fakeFactory) Open(source string) (mixerout.Backend, error) {
	if f.failures[source] > 0 {
		f.failures[source]--
		return nil, fmt.Errorf("open %s: device busy", source)
	}
	b := &fakeBackend{source: source}
	if f.configure != nil {
		f.configure(b, len(f.opened))
	}
	f.opened = append(f.opened, b)
	return b, nil
}

func (f *fakeFactory) last() *fakeBackend {
	if len(f.opened) == 0 {
		return nil
	}
	return f.opened[len(f.opened)-1]
}

type memStore struct {
	order   []string
	mixes   map[string]domain.Mix
	failPut error
	puts    int
}

func newMemStore() *memStore {
	return &memStore{mixes: map[string]domain.Mix{}}
}

func (s *memStore) Keys(context.Context) ([]string, error) {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out, nil
}

func (s *memStore) Exists(_ context.Context, name string) (bool, error) {
	_, ok := s.mixes[name]
	return ok, nil
}

func (s *memStore) Get(_ context.Context, name string) (domain.Mix, error) {
	mix, ok := s.mixes[name]
	if !ok {
		return domain.Mix{}, apperrors.ErrNotFound
	}
	return mix, nil
}

func (s *memStore) Put(_ context.Context, mix domain.Mix) error {
	if s.failPut != nil {
		return s.failPut
	}
	s.puts++
	if _, ok := s.mixes[mix.Name]; !ok {
		s.order = append(s.order, mix.Name)
	}
	s.mixes[mix.Name] = mix
	return nil
}

func (s *memStore) Delete(_ context.Context, name string) error {
	if _, ok := s.mixes[name]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.mixes, name)
	for i, k := range s.order {
		if k == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func newChannel(id string, factory mixerout.BackendFactory, sched runloop.Scheduler) *service.Channel {
	return service.NewChannel(domain.ChannelID(id), id+".ogg", 0.7, factory, sched, nil, testTiming)
}

type rig struct {
	sched   *runloop.Manual
	factory *fakeFactory
	store   *memStore
	mgr     *service.MixManager
}

func newRig(store *memStore, ids ...string) *rig {
	r := &rig{
		sched:   runloop.NewManual(),
		factory: newFakeFactory(),
		store:   store,
	}
	r.mgr = service.NewMixManager(store, clock.Fixed(time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)), nil)
	for _, id := range ids {
		if err := r.mgr.RegisterChannel(newChannel(id, r.factory, r.sched)); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *rig) channel(id string) *service.Channel {
	ch, ok := r.mgr.Channel(domain.ChannelID(id))
	if !ok {
		panic("unknown channel " + id)
	}
	return ch
}
