package in

import (
	"context"

	"soundblanket/internal/modules/mixer/dto"
	mixerin "soundblanket/internal/modules/mixer/port/in"
)

type CLIHandler struct {
	usecase mixerin.Usecase
}

func NewCLIHandler(usecase mixerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) ListMixes(ctx context.Context) ([]string, error) {
	return h.usecase.ListMixes(ctx)
}

func (h CLIHandler) ShowMix(ctx context.Context, name string) (dto.MixOutput, error) {
	return h.usecase.GetMix(ctx, name)
}

func (h CLIHandler) DeleteMix(ctx context.Context, name string) error {
	return h.usecase.DeleteMix(ctx, name)
}

func (h CLIHandler) ClearSession(ctx context.Context) error {
	return h.usecase.ClearSession(ctx)
}

func (h CLIHandler) LoadMix(ctx context.Context, name string) (dto.MixOutput, error) {
	return h.usecase.LoadMix(ctx, name)
}

func (h CLIHandler) ListChannels(ctx context.Context) ([]dto.ChannelOutput, error) {
	return h.usecase.ListChannels(ctx)
}
