package in

import (
	"context"

	"soundblanket/internal/modules/mixer/dto"
)

type Usecase interface {
	ListChannels(ctx context.Context) ([]dto.ChannelOutput, error)
	Play(ctx context.Context, channelID string) (dto.ChannelOutput, error)
	Stop(ctx context.Context, channelID string) (dto.ChannelOutput, error)
	Toggle(ctx context.Context, channelID string) (dto.ChannelOutput, error)
	SetVolume(ctx context.Context, input dto.SetVolumeInput) (dto.ChannelOutput, error)
	StopAll(ctx context.Context) error

	SaveMix(ctx context.Context, input dto.SaveMixInput) (dto.MixOutput, error)
	LoadMix(ctx context.Context, name string) (dto.MixOutput, error)
	DeleteMix(ctx context.Context, name string) error
	ListMixes(ctx context.Context) ([]string, error)
	GetMix(ctx context.Context, name string) (dto.MixOutput, error)
	ActiveMix(ctx context.Context) (string, error)

	Preload(ctx context.Context) error
	AutoSaveSession(ctx context.Context) error
	RestoreLastSession(ctx context.Context) (dto.RestoreOutput, error)
	ClearSession(ctx context.Context) error
	ResumePlaying(ctx context.Context) error
	ReleaseAll(ctx context.Context) error

	// Subscribe registers fn for channel state changes. fn runs on the loop
	// thread and must not call back into the usecase.
	Subscribe(ctx context.Context, fn func(dto.ChannelOutput)) (func(), error)
}
