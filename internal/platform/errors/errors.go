package apperrors

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrInvalidName        = errors.New("invalid mix name")
	ErrConfiguration      = errors.New("configuration error")
	ErrBackendUnavailable = errors.New("audio backend unavailable")
)
