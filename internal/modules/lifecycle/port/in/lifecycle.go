package in

import (
	"context"

	"soundblanket/internal/modules/lifecycle/dto"
)

// Usecase bridges host lifecycle events to the mixer. None of its transitions
// report errors; failures are logged.
type Usecase interface {
	Start(ctx context.Context)
	Suspend(ctx context.Context)
	Resume(ctx context.Context)
	Terminate(ctx context.Context)
	Phase() dto.PhaseOutput
}
