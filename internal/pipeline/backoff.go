package pipeline

import (
	"context"
	"time"

	"github.com/prajwal-ck/aidoc/internal/prompts"
)

// Backoff is consulted before every stage call.
type Backoff interface {
	Wait(ctx context.Context, stage prompts.Kind) error
}

// FixedDelay waits a static, per-stage duration regardless of how earlier
// calls went. It never adapts to observed rate-limit errors.
type FixedDelay struct {
	Delays map[prompts.Kind]time.Duration
	Sleep  func(ctx context.Context, d time.Duration) error
}

func NewFixedDelay(frontend, backend, synthesis time.Duration) *FixedDelay {
	return &FixedDelay{
		Delays: map[prompts.Kind]time.Duration{
			prompts.FrontendAnalysis: frontend,
			prompts.BackendAnalysis:  backend,
			prompts.Synthesis:        synthesis,
		},
		Sleep: SleepContext,
	}
}

func (f *FixedDelay) Wait(ctx context.Context, stage prompts.Kind) error {
	d := f.Delays[stage]
	if d <= 0 {
		return nil
	}
	sleep := f.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	return sleep(ctx, d)
}

// SleepContext sleeps for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
