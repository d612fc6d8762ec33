package out

import (
	"context"

	"soundblanket/internal/modules/mixer/domain"
)

// MixStore persists mixes keyed by name. Put replaces any previous mix with
// the same name atomically; Get and Delete return apperrors.ErrNotFound for
// unknown keys.
type MixStore interface {
	Keys(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, name string) (bool, error)
	Get(ctx context.Context, name string) (domain.Mix, error)
	Put(ctx context.Context, mix domain.Mix) error
	Delete(ctx context.Context, name string) error
}
