package id

import "github.com/google/uuid"

// UUID creates random run identifiers.
type UUID struct{}

func (UUID) New() string {
	return uuid.NewString()
}
