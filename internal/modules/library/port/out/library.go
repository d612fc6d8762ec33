package out

import "context"

// SoundSource lists candidate asset files, sorted by file name.
type SoundSource interface {
	Files(ctx context.Context) ([]string, error)
}
