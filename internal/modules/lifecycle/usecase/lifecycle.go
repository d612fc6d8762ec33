package usecase

import (
	"context"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	"soundblanket/internal/modules/lifecycle/domain"
	"soundblanket/internal/modules/lifecycle/dto"
	lifecyclein "soundblanket/internal/modules/lifecycle/port/in"
	mixerin "soundblanket/internal/modules/mixer/port/in"
)

type Interactor struct {
	mixer mixerin.Usecase
	log   hclog.Logger

	mu    sync.Mutex
	phase domain.Phase
}

func NewInteractor(mixer mixerin.Usecase, log hclog.Logger) lifecyclein.Usecase {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Interactor{mixer: mixer, log: log}
}

// Start preloads every channel and restores the auto-saved session, if any.
func (i *Interactor) Start(ctx context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.enter(domain.PhaseRunning) {
		return
	}
	i.logError("preload", i.mixer.Preload(ctx))
	restored, err := i.mixer.RestoreLastSession(ctx)
	if err != nil {
		i.logError("restore last session", err)
		return
	}
	i.log.Info("session started", "restored", restored.Restored)
}

// Suspend writes the session before returning; the host may exit right after.
func (i *Interactor) Suspend(ctx context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.enter(domain.PhaseSuspended) {
		return
	}
	i.logError("auto-save session", i.mixer.AutoSaveSession(ctx))
}

func (i *Interactor) Resume(ctx context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.phase != domain.PhaseSuspended {
		i.log.Debug("resume ignored", "phase", i.phase.String())
		return
	}
	i.enter(domain.PhaseRunning)
	i.logError("resume playing", i.mixer.ResumePlaying(ctx))
}

func (i *Interactor) Terminate(ctx context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.enter(domain.PhaseTerminated) {
		return
	}
	i.logError("release channels", i.mixer.ReleaseAll(ctx))
}

func (i *Interactor) Phase() dto.PhaseOutput {
	i.mu.Lock()
	defer i.mu.Unlock()
	return dto.PhaseOutput{Phase: i.phase.String()}
}

func (i *Interactor) enter(next domain.Phase) bool {
	if !i.phase.CanTransition(next) {
		i.log.Debug("lifecycle transition ignored", "from", i.phase.String(), "to", next.String())
		return false
	}
	i.log.Debug("lifecycle transition", "from", i.phase.String(), "to", next.String())
	i.phase = next
	return true
}

func (i *Interactor) logError(op string, err error) {
	if err != nil {
		i.log.Error(op+" failed", "error", err)
	}
}
