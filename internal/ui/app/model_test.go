package app

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	mixdto "soundblanket/internal/modules/mixer/dto"
	apperrors "soundblanket/internal/platform/errors"
	mixesview "soundblanket/internal/ui/views/mixes"
)

type fakeMixer struct {
	saved   []string
	saveErr error
	stopped int
}

func (f *fakeMixer) Channels(context.Context) ([]mixdto.ChannelOutput, error) {
	return []mixdto.ChannelOutput{{ID: "Rain", Volume: 0.7, Status: "unloaded"}}, nil
}
func (f *fakeMixer) Toggle(_ context.Context, id string) (mixdto.ChannelOutput, error) {
	return mixdto.ChannelOutput{ID: id, Playing: true, Status: "ready"}, nil
}
func (f *fakeMixer) SetVolume(_ context.Context, id string, v float64) (mixdto.ChannelOutput, error) {
	return mixdto.ChannelOutput{ID: id, Volume: v}, nil
}
func (f *fakeMixer) StopAll(context.Context) error             { f.stopped++; return nil }
func (f *fakeMixer) Mixes(context.Context) ([]string, error)   { return nil, nil }
func (f *fakeMixer) ActiveMix(context.Context) (string, error) { return "", nil }
func (f *fakeMixer) DeleteMix(context.Context, string) error   { return nil }
func (f *fakeMixer) Mix(context.Context, string) (mixdto.MixOutput, error) {
	return mixdto.MixOutput{}, apperrors.ErrNotFound
}
func (f *fakeMixer) LoadMix(context.Context, string) (mixdto.MixOutput, error) {
	return mixdto.MixOutput{}, apperrors.ErrNotFound
}
func (f *fakeMixer) SaveMix(_ context.Context, name string) (mixdto.MixOutput, error) {
	if f.saveErr != nil {
		return mixdto.MixOutput{}, f.saveErr
	}
	f.saved = append(f.saved, name)
	return mixdto.MixOutput{Name: name}, nil
}

type fakeLifecycle struct {
	calls []string
}

func (f *fakeLifecycle) Suspend(context.Context)   { f.calls = append(f.calls, "suspend") }
func (f *fakeLifecycle) Resume(context.Context)    { f.calls = append(f.calls, "resume") }
func (f *fakeLifecycle) Terminate(context.Context) { f.calls = append(f.calls, "terminate") }

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return out, cmd
}

func TestPaletteSaveStoresMixAndMarksActive(t *testing.T) {
	t.Parallel()
	mixer := &fakeMixer{}
	m := NewModel(mixer, &fakeLifecycle{})

	next, cmd := m.executePalette("mix:save Night Rain")
	if cmd == nil {
		t.Fatalf("expected save command")
	}
	m, _ = update(t, next.(Model), cmd())
	if len(mixer.saved) != 1 || mixer.saved[0] != "Night Rain" {
		t.Fatalf("unexpected saves %v", mixer.saved)
	}
	if m.activeMix != "Night Rain" {
		t.Fatalf("expected active mix, got %q", m.activeMix)
	}
}

func TestSaveFailureShowsReason(t *testing.T) {
	t.Parallel()
	mixer := &fakeMixer{saveErr: errors.New("disk full")}
	m := NewModel(mixer, &fakeLifecycle{})

	next, cmd := m.executePalette("mix:save Storm")
	m, _ = update(t, next.(Model), cmd())
	if m.status != "could not save: disk full" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestLoadOfMissingMixShowsReason(t *testing.T) {
	t.Parallel()
	m := NewModel(&fakeMixer{}, &fakeLifecycle{})
	m, _ = update(t, m, mixesview.MixAppliedMsg{Name: "Storm", Err: apperrors.ErrNotFound})
	if m.status != "could not load: no such mix" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestPaletteRejectsMissingName(t *testing.T) {
	t.Parallel()
	m := NewModel(&fakeMixer{}, &fakeLifecycle{})
	next, cmd := m.executePalette("mix:load")
	if cmd != nil || next.(Model).status != "usage: mix:load <name>" {
		t.Fatalf("expected usage hint, got %q", next.(Model).status)
	}
}

func TestStopAllKey(t *testing.T) {
	t.Parallel()
	mixer := &fakeMixer{}
	m := NewModel(mixer, &fakeLifecycle{})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	msg := cmd()
	if _, ok := msg.(stoppedAllMsg); !ok || mixer.stopped != 1 {
		t.Fatalf("expected stop all, got %T stopped=%d", msg, mixer.stopped)
	}
}

func TestSuspendSavesBeforeSuspending(t *testing.T) {
	t.Parallel()
	lc := &fakeLifecycle{}
	m := NewModel(&fakeMixer{}, lc)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	if _, ok := cmd().(tea.SuspendMsg); !ok {
		t.Fatalf("expected suspend message")
	}
	_, cmd = update(t, m, tea.ResumeMsg{})
	if _, ok := cmd().(resumedMsg); !ok {
		t.Fatalf("expected resumed message")
	}
	if len(lc.calls) != 2 || lc.calls[0] != "suspend" || lc.calls[1] != "resume" {
		t.Fatalf("unexpected lifecycle calls %v", lc.calls)
	}
}

func TestQuitTerminates(t *testing.T) {
	t.Parallel()
	lc := &fakeLifecycle{}
	m := NewModel(&fakeMixer{}, lc)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
	if len(lc.calls) != 1 || lc.calls[0] != "terminate" {
		t.Fatalf("unexpected lifecycle calls %v", lc.calls)
	}
}
