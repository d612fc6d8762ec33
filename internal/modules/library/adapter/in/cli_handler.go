package in

import (
	"context"

	"soundblanket/internal/modules/library/dto"
	libraryin "soundblanket/internal/modules/library/port/in"
)

type CLIHandler struct {
	usecase libraryin.Usecase
}

func NewCLIHandler(usecase libraryin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) ListSounds(ctx context.Context) ([]dto.SoundOutput, error) {
	return h.usecase.ListSounds(ctx)
}
