package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	libraryout "soundblanket/internal/modules/library/port/out"
)

type DirSoundSource struct {
	dir string
}

func NewDirSoundSource(dir string) libraryout.SoundSource {
	return &DirSoundSource{dir: dir}
}

// Files lists regular files directly inside the directory.
func (s *DirSoundSource) Files(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read sounds dir: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		out = append(out, filepath.Join(s.dir, entry.Name()))
	}
	return out, nil
}
