package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	libraryout "soundblanket/internal/modules/library/adapter/out"
	"soundblanket/internal/modules/library/service"
	"soundblanket/internal/modules/library/usecase"
)

func TestListSoundsScansDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, name := range []string{"wind.wav", "Rain.ogg", "notes.txt", "fire-place.MP3", "rain.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "extra.ogg"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	uc := usecase.NewInteractor(service.NewSoundService(libraryout.NewDirSoundSource(dir), nil))
	sounds, err := uc.ListSounds(context.Background())
	if err != nil {
		t.Fatalf("list sounds: %v", err)
	}
	want := []string{"Rain", "Fire Place", "Wind"}
	if len(sounds) != len(want) {
		t.Fatalf("expected %v, got %+v", want, sounds)
	}
	for i, name := range want {
		if sounds[i].Name != name {
			t.Fatalf("expected %v, got %+v", want, sounds)
		}
	}
	if sounds[0].Path != filepath.Join(dir, "Rain.ogg") {
		t.Fatalf("expected first rain file kept, got %s", sounds[0].Path)
	}
}

func TestListSoundsMissingDirectoryIsEmpty(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewSoundService(libraryout.NewDirSoundSource(filepath.Join(t.TempDir(), "missing")), nil))
	sounds, err := uc.ListSounds(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sounds) != 0 {
		t.Fatalf("expected empty library, got %+v", sounds)
	}
}
