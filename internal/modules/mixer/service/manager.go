package service

import (
	"context"
	"errors"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	"soundblanket/internal/modules/mixer/domain"
	mixerout "soundblanket/internal/modules/mixer/port/out"
	"soundblanket/internal/platform/clock"
	apperrors "soundblanket/internal/platform/errors"
)

// MixManager owns the ordered channel collection and translates mix
// operations into channel and store calls. Like Channel, it is confined to the
// loop thread.
type MixManager struct {
	store mixerout.MixStore
	clock clock.Clock
	log   hclog.Logger

	channels []*Channel
	byKey    map[string]*Channel
	active   string

	listeners    map[int]func(domain.ChannelState)
	nextListener int
}

func NewMixManager(store mixerout.MixStore, clk clock.Clock, log hclog.Logger) *MixManager {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &MixManager{
		store:     store,
		clock:     clk,
		log:       log,
		byKey:     map[string]*Channel{},
		listeners: map[int]func(domain.ChannelState){},
	}
}

// RegisterChannel appends ch. Ids must be unique ignoring case.
func (m *MixManager) RegisterChannel(ch *Channel) error {
	key := ch.ID().Key()
	if existing, ok := m.byKey[key]; ok {
		return fmt.Errorf("%w: channel %q collides with %q", apperrors.ErrConfiguration, ch.ID(), existing.ID())
	}
	m.channels = append(m.channels, ch)
	m.byKey[key] = ch
	ch.OnChange(m.publish)
	return nil
}

func (m *MixManager) Channels() []*Channel {
	out := make([]*Channel, len(m.channels))
	copy(out, m.channels)
	return out
}

func (m *MixManager) Channel(id domain.ChannelID) (*Channel, bool) {
	ch, ok := m.byKey[id.Key()]
	return ch, ok
}

func (m *MixManager) ActiveMix() string { return m.active }

func (m *MixManager) SaveMix(ctx context.Context, name string) (domain.Mix, error) {
	if err := domain.ValidateUserName(name); err != nil {
		return domain.Mix{}, err
	}
	mix, err := m.save(ctx, name)
	if err != nil {
		return domain.Mix{}, err
	}
	m.active = name
	return mix, nil
}

func (m *MixManager) save(ctx context.Context, name string) (domain.Mix, error) {
	mix := domain.Mix{
		Name:      name,
		Snapshots: make([]domain.Snapshot, 0, len(m.channels)),
		SavedAt:   m.clock.Now(),
	}
	for _, ch := range m.channels {
		mix.Snapshots = append(mix.Snapshots, ch.Snapshot())
	}
	if err := m.store.Put(ctx, mix); err != nil {
		return domain.Mix{}, fmt.Errorf("save mix %q: %w", name, err)
	}
	m.log.Debug("mix saved", "name", name, "sounds", len(mix.Snapshots))
	return mix, nil
}

// LoadMix replaces current playback with the stored mix. Nothing is touched
// until the mix has been read successfully.
func (m *MixManager) LoadMix(ctx context.Context, name string) (domain.Mix, error) {
	mix, err := m.load(ctx, name)
	if err != nil {
		return domain.Mix{}, err
	}
	if !domain.IsReserved(name) {
		m.active = name
	}
	return mix, nil
}

func (m *MixManager) load(ctx context.Context, name string) (domain.Mix, error) {
	mix, err := m.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Mix{}, fmt.Errorf("mix %q: %w", name, apperrors.ErrNotFound)
		}
		return domain.Mix{}, fmt.Errorf("load mix %q: %w", name, err)
	}

	m.StopAll()
	skipped := 0
	for _, snap := range mix.Snapshots {
		ch, ok := m.Channel(snap.ID)
		if !ok {
			skipped++
			continue
		}
		ch.ApplySnapshot(snap)
	}
	if skipped > 0 {
		m.log.Debug("mix references unknown sounds", "name", name, "skipped", skipped)
	}
	return mix, nil
}

func (m *MixManager) GetMix(ctx context.Context, name string) (domain.Mix, error) {
	mix, err := m.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Mix{}, fmt.Errorf("mix %q: %w", name, apperrors.ErrNotFound)
		}
		return domain.Mix{}, fmt.Errorf("get mix %q: %w", name, err)
	}
	return mix, nil
}

func (m *MixManager) DeleteMix(ctx context.Context, name string) error {
	if err := m.store.Delete(ctx, name); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("mix %q: %w", name, apperrors.ErrNotFound)
		}
		return fmt.Errorf("delete mix %q: %w", name, err)
	}
	if m.active == name {
		m.active = ""
	}
	return nil
}

// ListMixes returns stored names in store order, minus the reserved slot.
func (m *MixManager) ListMixes(ctx context.Context) ([]string, error) {
	keys, err := m.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mixes: %w", err)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if domain.IsReserved(k) {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

func (m *MixManager) StopAll() {
	for _, ch := range m.channels {
		ch.Stop()
	}
}

func (m *MixManager) AutoSaveSession(ctx context.Context) error {
	_, err := m.save(ctx, domain.LastSession)
	return err
}

// RestoreLastSession loads the auto-saved session. It reports false on a
// first run, when there is nothing to restore.
func (m *MixManager) RestoreLastSession(ctx context.Context) (bool, error) {
	ok, err := m.store.Exists(ctx, domain.LastSession)
	if err != nil {
		return false, fmt.Errorf("check last session: %w", err)
	}
	if !ok {
		return false, nil
	}
	if _, err := m.load(ctx, domain.LastSession); err != nil {
		return false, err
	}
	return true, nil
}

func (m *MixManager) PreloadAll() {
	for _, ch := range m.channels {
		ch.Load()
	}
}

// ResumePlaying restarts every channel that was playing, rebuilding playback
// the host may have torn down while suspended.
func (m *MixManager) ResumePlaying() {
	for _, ch := range m.channels {
		if ch.State().Playing {
			ch.Play()
		}
	}
}

func (m *MixManager) ReleaseAll() {
	for _, ch := range m.channels {
		ch.Release()
	}
}

func (m *MixManager) Subscribe(fn func(domain.ChannelState)) func() {
	key := m.nextListener
	m.nextListener++
	m.listeners[key] = fn
	return func() { delete(m.listeners, key) }
}

func (m *MixManager) publish(state domain.ChannelState) {
	for _, fn := range m.listeners {
		fn(state)
	}
}
