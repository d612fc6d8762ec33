package in

import (
	"context"
	"errors"
	"os"
	"os/signal"

	hclog "github.com/hashicorp/go-hclog"

	lifecyclein "soundblanket/internal/modules/lifecycle/port/in"
)

// ErrTerminated is returned by Run after a terminate signal was handled.
var ErrTerminated = errors.New("terminated by signal")

type action int

const (
	actionNone action = iota
	actionSuspend
	actionResume
	actionTerminate
)

// SignalHandler maps process signals onto lifecycle transitions.
type SignalHandler struct {
	usecase     lifecyclein.Usecase
	log         hclog.Logger
	signals     []os.Signal
	suspendSelf func() error
}

func NewSignalHandler(usecase lifecyclein.Usecase, log hclog.Logger) SignalHandler {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return SignalHandler{usecase: usecase, log: log, signals: watchedSignals, suspendSelf: stopProcess}
}

// NewTerminateHandler watches terminate signals only. The terminal UI owns
// job control itself, and catching SIGTSTP would keep it from stopping.
func NewTerminateHandler(usecase lifecyclein.Usecase, log hclog.Logger) SignalHandler {
	h := NewSignalHandler(usecase, log)
	h.signals = terminateSignals
	return h
}

// Run serves signals until ctx is done or a terminate signal arrives.
func (h SignalHandler) Run(ctx context.Context) error {
	signals := make(chan os.Signal, 4)
	signal.Notify(signals, h.signals...)
	defer signal.Stop(signals)
	return h.serve(ctx, signals)
}

func (h SignalHandler) serve(ctx context.Context, signals <-chan os.Signal) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-signals:
			h.log.Debug("signal received", "signal", sig.String())
			switch classify(sig) {
			case actionSuspend:
				h.usecase.Suspend(ctx)
				if err := h.suspendSelf(); err != nil {
					h.log.Warn("could not stop process", "error", err)
				}
			case actionResume:
				h.usecase.Resume(ctx)
			case actionTerminate:
				h.usecase.Terminate(ctx)
				return ErrTerminated
			}
		}
	}
}
