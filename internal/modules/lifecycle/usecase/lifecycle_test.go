package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"soundblanket/internal/modules/lifecycle/usecase"
	mixerdto "soundblanket/internal/modules/mixer/dto"
	mixerin "soundblanket/internal/modules/mixer/port/in"
)

type fakeMixer struct {
	mixerin.Usecase
	calls    []string
	fail     error
	restored bool
}

func (m *fakeMixer) record(op string) error {
	m.calls = append(m.calls, op)
	return m.fail
}

func (m *fakeMixer) Preload(context.Context) error         { return m.record("preload") }
func (m *fakeMixer) AutoSaveSession(context.Context) error { return m.record("autosave") }
func (m *fakeMixer) ResumePlaying(context.Context) error   { return m.record("resume") }
func (m *fakeMixer) ReleaseAll(context.Context) error      { return m.record("release") }
func (m *fakeMixer) RestoreLastSession(context.Context) (mixerdto.RestoreOutput, error) {
	return mixerdto.RestoreOutput{Restored: m.restored}, m.record("restore")
}

func (m *fakeMixer) trace() string { return strings.Join(m.calls, ",") }

func TestLifecycleDrivesMixerThroughPhases(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mixer := &fakeMixer{restored: true}
	lc := usecase.NewInteractor(mixer, nil)

	if got := lc.Phase().Phase; got != "cold" {
		t.Fatalf("expected cold, got %s", got)
	}
	lc.Start(ctx)
	lc.Suspend(ctx)
	if got := lc.Phase().Phase; got != "suspended" {
		t.Fatalf("expected suspended, got %s", got)
	}
	lc.Resume(ctx)
	lc.Suspend(ctx)
	lc.Resume(ctx)
	lc.Terminate(ctx)

	want := "preload,restore,autosave,resume,autosave,resume,release"
	if got := mixer.trace(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got := lc.Phase().Phase; got != "terminated" {
		t.Fatalf("expected terminated, got %s", got)
	}
}

func TestLifecycleIgnoresInvalidTransitions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mixer := &fakeMixer{}
	lc := usecase.NewInteractor(mixer, nil)

	lc.Resume(ctx)
	lc.Suspend(ctx)
	if mixer.trace() != "" {
		t.Fatalf("cold session must ignore suspend/resume, got %s", mixer.trace())
	}
	lc.Start(ctx)
	lc.Start(ctx)
	lc.Resume(ctx)
	if got := mixer.trace(); got != "preload,restore" {
		t.Fatalf("unexpected calls %s", got)
	}
	lc.Terminate(ctx)
	lc.Terminate(ctx)
	lc.Start(ctx)
	lc.Suspend(ctx)
	if got := mixer.trace(); got != "preload,restore,release" {
		t.Fatalf("terminated session must stay terminated, got %s", got)
	}
}

func TestLifecycleTerminateFromColdReleases(t *testing.T) {
	t.Parallel()
	mixer := &fakeMixer{}
	lc := usecase.NewInteractor(mixer, nil)
	lc.Terminate(context.Background())
	if got := mixer.trace(); got != "release" {
		t.Fatalf("expected release, got %s", got)
	}
}

func TestLifecycleSwallowsMixerFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mixer := &fakeMixer{fail: errors.New("store unavailable")}
	lc := usecase.NewInteractor(mixer, nil)

	lc.Start(ctx)
	lc.Suspend(ctx)
	lc.Resume(ctx)
	lc.Terminate(ctx)
	if got := mixer.trace(); got != "preload,restore,autosave,resume,release" {
		t.Fatalf("expected every step attempted despite failures, got %s", got)
	}
}
