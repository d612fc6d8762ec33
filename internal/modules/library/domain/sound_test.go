package domain_test

import (
	"testing"

	"soundblanket/internal/modules/library/domain"
)

func TestNameFromPath(t *testing.T) {
	t.Parallel()
	tests := []struct{ path, want string }{
		{"sounds/rain.ogg", "Rain"},
		{"sounds/heavy-rain.OGG", "Heavy Rain"},
		{"/tmp/light_rain.wav", "Light_Rain"},
		{"white--noise.mp3", "White  Noise"},
		{"sounds/THUNDER-storm.mp3", "Thunder Storm"},
		{"3am-city.ogg", "3Am City"},
		{"birds.at.dawn.ogg", "Birds.At.Dawn"},
	}
	for _, tc := range tests {
		if got := domain.NameFromPath(tc.path); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.path, tc.want, got)
		}
	}
}

func TestSupported(t *testing.T) {
	t.Parallel()
	for _, path := range []string{"a.ogg", "b.WAV", "c.Mp3"} {
		if !domain.Supported(path) {
			t.Fatalf("%s should be supported", path)
		}
	}
	for _, path := range []string{"notes.txt", "cover.png", "noext", "d.flac"} {
		if domain.Supported(path) {
			t.Fatalf("%s should not be supported", path)
		}
	}
}
