package in

import (
	"context"

	"soundblanket/internal/modules/library/dto"
)

type Usecase interface {
	ListSounds(ctx context.Context) ([]dto.SoundOutput, error)
}
