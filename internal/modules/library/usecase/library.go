package usecase

import (
	"context"

	"soundblanket/internal/modules/library/dto"
	libraryin "soundblanket/internal/modules/library/port/in"
	"soundblanket/internal/modules/library/service"
)

type Interactor struct {
	svc *service.SoundService
}

func NewInteractor(svc *service.SoundService) libraryin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) ListSounds(ctx context.Context) ([]dto.SoundOutput, error) {
	sounds, err := i.svc.Sounds(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SoundOutput, 0, len(sounds))
	for _, s := range sounds {
		out = append(out, dto.SoundOutput{Name: s.Name, Path: s.Path})
	}
	return out, nil
}
