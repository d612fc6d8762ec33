package out

import (
	"errors"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	mixerout "soundblanket/internal/modules/mixer/port/out"
	apperrors "soundblanket/internal/platform/errors"
)

var errReleased = errors.New("backend released")

// Variant names a playback backend implementation.
type Variant string

const (
	VariantAuto   Variant = "auto"
	VariantDevice Variant = "device"
	VariantSystem Variant = "system"
)

// ParseVariant accepts the configured backend name.
func ParseVariant(name string) (Variant, error) {
	switch v := Variant(name); v {
	case VariantAuto, VariantDevice, VariantSystem:
		return v, nil
	case "":
		return VariantAuto, nil
	}
	return "", fmt.Errorf("%w: unknown audio backend %q", apperrors.ErrConfiguration, name)
}

// NewBackendFactory builds the factory for variant. Auto prefers the in-process
// device output and falls back to an external player when the device cannot
// be opened.
func NewBackendFactory(variant Variant, sampleRate int, log hclog.Logger) (mixerout.BackendFactory, Variant, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	switch variant {
	case VariantDevice:
		return NewDeviceBackendFactory(sampleRate, log), VariantDevice, nil
	case VariantSystem:
		return systemFactory(log), VariantSystem, nil
	case VariantAuto:
		if _, err := sharedDeviceContext(sampleRate); err != nil {
			log.Warn("audio device unavailable, using external player", "error", err)
			return systemFactory(log), VariantSystem, nil
		}
		return NewDeviceBackendFactory(sampleRate, log), VariantDevice, nil
	}
	return nil, "", fmt.Errorf("%w: unknown audio backend %q", apperrors.ErrConfiguration, variant)
}

func systemFactory(log hclog.Logger) *SystemBackendFactory {
	f := NewSystemBackendFactory(log)
	if !f.Available() {
		log.Warn("no external audio player installed, sounds will stay silent")
	}
	return f
}
