package domain

import (
	"fmt"
	"time"

	apperrors "soundblanket/internal/platform/errors"
)

// LastSession is the reserved mix written on suspend and restored on start.
const LastSession = "last_session"

type Mix struct {
	Name      string
	Snapshots []Snapshot
	SavedAt   time.Time
}

// ValidateUserName rejects names a user may not save under.
func ValidateUserName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", apperrors.ErrInvalidName)
	}
	if name == LastSession {
		return fmt.Errorf("%w: %q is reserved", apperrors.ErrInvalidName, name)
	}
	return nil
}

// IsReserved reports whether name is hidden from user-facing listings.
func IsReserved(name string) bool {
	return name == LastSession
}
