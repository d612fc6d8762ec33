package usecase

import (
	"context"
	"fmt"

	"soundblanket/internal/modules/mixer/domain"
	"soundblanket/internal/modules/mixer/dto"
	mixerin "soundblanket/internal/modules/mixer/port/in"
	"soundblanket/internal/modules/mixer/service"
	apperrors "soundblanket/internal/platform/errors"
	"soundblanket/internal/platform/runloop"
)

// Interactor exposes the mix manager to callers on other goroutines. Every
// call is marshalled onto the scheduler's loop.
type Interactor struct {
	mgr   *service.MixManager
	sched runloop.Scheduler
}

func NewInteractor(mgr *service.MixManager, sched runloop.Scheduler) mixerin.Usecase {
	return &Interactor{mgr: mgr, sched: sched}
}

func (i *Interactor) ListChannels(ctx context.Context) ([]dto.ChannelOutput, error) {
	var out []dto.ChannelOutput
	err := i.sched.Call(ctx, func() error {
		channels := i.mgr.Channels()
		out = make([]dto.ChannelOutput, 0, len(channels))
		for _, ch := range channels {
			out = append(out, toChannelOutput(ch.State()))
		}
		return nil
	})
	return out, err
}

func (i *Interactor) Play(ctx context.Context, channelID string) (dto.ChannelOutput, error) {
	return i.onChannel(ctx, channelID, (*service.Channel).Play)
}

func (i *Interactor) Stop(ctx context.Context, channelID string) (dto.ChannelOutput, error) {
	return i.onChannel(ctx, channelID, (*service.Channel).Stop)
}

// Toggle stops a playing channel and plays any other. A channel that is still
// loading with a play pending counts as not playing.
func (i *Interactor) Toggle(ctx context.Context, channelID string) (dto.ChannelOutput, error) {
	return i.onChannel(ctx, channelID, func(ch *service.Channel) {
		if ch.State().Playing {
			ch.Stop()
			return
		}
		ch.Play()
	})
}

func (i *Interactor) SetVolume(ctx context.Context, input dto.SetVolumeInput) (dto.ChannelOutput, error) {
	return i.onChannel(ctx, input.ChannelID, func(ch *service.Channel) {
		ch.SetVolume(input.Volume)
	})
}

func (i *Interactor) StopAll(ctx context.Context) error {
	return i.sched.Call(ctx, func() error {
		i.mgr.StopAll()
		return nil
	})
}

func (i *Interactor) SaveMix(ctx context.Context, input dto.SaveMixInput) (dto.MixOutput, error) {
	var out dto.MixOutput
	err := i.sched.Call(ctx, func() error {
		mix, err := i.mgr.SaveMix(ctx, input.Name)
		if err != nil {
			return err
		}
		out = toMixOutput(mix)
		return nil
	})
	return out, err
}

func (i *Interactor) LoadMix(ctx context.Context, name string) (dto.MixOutput, error) {
	var out dto.MixOutput
	err := i.sched.Call(ctx, func() error {
		mix, err := i.mgr.LoadMix(ctx, name)
		if err != nil {
			return err
		}
		out = toMixOutput(mix)
		return nil
	})
	return out, err
}

func (i *Interactor) DeleteMix(ctx context.Context, name string) error {
	return i.sched.Call(ctx, func() error {
		return i.mgr.DeleteMix(ctx, name)
	})
}

func (i *Interactor) ListMixes(ctx context.Context) ([]string, error) {
	var out []string
	err := i.sched.Call(ctx, func() error {
		names, err := i.mgr.ListMixes(ctx)
		out = names
		return err
	})
	return out, err
}

func (i *Interactor) GetMix(ctx context.Context, name string) (dto.MixOutput, error) {
	var out dto.MixOutput
	err := i.sched.Call(ctx, func() error {
		mix, err := i.mgr.GetMix(ctx, name)
		if err != nil {
			return err
		}
		out = toMixOutput(mix)
		return nil
	})
	return out, err
}

func (i *Interactor) ActiveMix(ctx context.Context) (string, error) {
	var name string
	err := i.sched.Call(ctx, func() error {
		name = i.mgr.ActiveMix()
		return nil
	})
	return name, err
}

func (i *Interactor) Preload(ctx context.Context) error {
	return i.sched.Call(ctx, func() error {
		i.mgr.PreloadAll()
		return nil
	})
}

func (i *Interactor) AutoSaveSession(ctx context.Context) error {
	return i.sched.Call(ctx, func() error {
		return i.mgr.AutoSaveSession(ctx)
	})
}

func (i *Interactor) RestoreLastSession(ctx context.Context) (dto.RestoreOutput, error) {
	var out dto.RestoreOutput
	err := i.sched.Call(ctx, func() error {
		restored, err := i.mgr.RestoreLastSession(ctx)
		out.Restored = restored
		return err
	})
	return out, err
}

// ClearSession forgets the auto-saved session.
func (i *Interactor) ClearSession(ctx context.Context) error {
	return i.sched.Call(ctx, func() error {
		return i.mgr.DeleteMix(ctx, domain.LastSession)
	})
}

func (i *Interactor) ResumePlaying(ctx context.Context) error {
	return i.sched.Call(ctx, func() error {
		i.mgr.ResumePlaying()
		return nil
	})
}

func (i *Interactor) ReleaseAll(ctx context.Context) error {
	return i.sched.Call(ctx, func() error {
		i.mgr.ReleaseAll()
		return nil
	})
}

func (i *Interactor) Subscribe(ctx context.Context, fn func(dto.ChannelOutput)) (func(), error) {
	var cancel func()
	err := i.sched.Call(ctx, func() error {
		cancel = i.mgr.Subscribe(func(state domain.ChannelState) {
			fn(toChannelOutput(state))
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return func() {
		i.sched.Post(cancel)
	}, nil
}

func (i *Interactor) onChannel(ctx context.Context, channelID string, apply func(*service.Channel)) (dto.ChannelOutput, error) {
	var out dto.ChannelOutput
	err := i.sched.Call(ctx, func() error {
		ch, ok := i.mgr.Channel(domain.ChannelID(channelID))
		if !ok {
			return fmt.Errorf("channel %q: %w", channelID, apperrors.ErrNotFound)
		}
		apply(ch)
		out = toChannelOutput(ch.State())
		return nil
	})
	return out, err
}

func toChannelOutput(state domain.ChannelState) dto.ChannelOutput {
	return dto.ChannelOutput{
		ID:      string(state.ID),
		Volume:  state.Volume,
		Playing: state.Playing,
		Status:  state.Status.String(),
	}
}

func toMixOutput(mix domain.Mix) dto.MixOutput {
	out := dto.MixOutput{Name: mix.Name, SavedAt: mix.SavedAt, Sounds: make([]dto.SoundOutput, 0, len(mix.Snapshots))}
	for _, snap := range mix.Snapshots {
		out.Sounds = append(out.Sounds, dto.SoundOutput{
			Name:      string(snap.ID),
			Playing:   snap.Playing,
			Volume:    snap.Volume,
			HasVolume: snap.HasVolume,
		})
	}
	return out
}
