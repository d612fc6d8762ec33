package service

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	hclog "github.com/hashicorp/go-hclog"

	"soundblanket/internal/modules/library/domain"
	libraryout "soundblanket/internal/modules/library/port/out"
)

type SoundService struct {
	source libraryout.SoundSource
	log    hclog.Logger
}

func NewSoundService(source libraryout.SoundSource, log hclog.Logger) *SoundService {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &SoundService{source: source, log: log}
}

// Sounds returns the playable assets in file-name order. Files whose derived
// name collides with an earlier one are skipped. A missing directory is an
// empty library.
func (s *SoundService) Sounds(ctx context.Context) ([]domain.Sound, error) {
	files, err := s.source.Files(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("sounds directory missing, library is empty", "error", err)
			return nil, nil
		}
		return nil, err
	}
	seen := map[string]string{}
	out := make([]domain.Sound, 0, len(files))
	for _, path := range files {
		if !domain.Supported(path) {
			continue
		}
		name := domain.NameFromPath(path)
		key := strings.ToLower(name)
		if first, ok := seen[key]; ok {
			s.log.Warn("duplicate sound name, skipping", "name", name, "path", path, "kept", first)
			continue
		}
		seen[key] = path
		out = append(out, domain.Sound{Name: name, Path: path})
	}
	return out, nil
}
