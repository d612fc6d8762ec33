package in

import (
	"context"

	"soundblanket/internal/modules/mixer/dto"
	mixerin "soundblanket/internal/modules/mixer/port/in"
)

// TUIHandler is the slice of the mixer the terminal UI drives.
type TUIHandler struct {
	usecase mixerin.Usecase
}

func NewTUIHandler(usecase mixerin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Channels(ctx context.Context) ([]dto.ChannelOutput, error) {
	return h.usecase.ListChannels(ctx)
}

func (h TUIHandler) Toggle(ctx context.Context, channelID string) (dto.ChannelOutput, error) {
	return h.usecase.Toggle(ctx, channelID)
}

func (h TUIHandler) SetVolume(ctx context.Context, channelID string, volume float64) (dto.ChannelOutput, error) {
	return h.usecase.SetVolume(ctx, dto.SetVolumeInput{ChannelID: channelID, Volume: volume})
}

func (h TUIHandler) StopAll(ctx context.Context) error {
	return h.usecase.StopAll(ctx)
}

func (h TUIHandler) Mixes(ctx context.Context) ([]string, error) {
	return h.usecase.ListMixes(ctx)
}

func (h TUIHandler) ActiveMix(ctx context.Context) (string, error) {
	return h.usecase.ActiveMix(ctx)
}

func (h TUIHandler) Mix(ctx context.Context, name string) (dto.MixOutput, error) {
	return h.usecase.GetMix(ctx, name)
}

func (h TUIHandler) SaveMix(ctx context.Context, name string) (dto.MixOutput, error) {
	return h.usecase.SaveMix(ctx, dto.SaveMixInput{Name: name})
}

func (h TUIHandler) LoadMix(ctx context.Context, name string) (dto.MixOutput, error) {
	return h.usecase.LoadMix(ctx, name)
}

func (h TUIHandler) DeleteMix(ctx context.Context, name string) error {
	return h.usecase.DeleteMix(ctx, name)
}

func (h TUIHandler) Subscribe(ctx context.Context, fn func(dto.ChannelOutput)) (func(), error) {
	return h.usecase.Subscribe(ctx, fn)
}
