package backend

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"hybridd/pkg/types"
)

// Runner abstracts the on-device model runtime. The default is a subprocess
// (SubprocessRunner); an in-process llama.cpp runner is available behind the
// 'llama' build tag. The router never sees the difference, which isolates the
// one genuinely platform-specific, failure-prone boundary.
type Runner interface {
	Run(ctx context.Context, model types.ModelProfile, req Request) (Result, error)
}

// Local dispatches generation to an on-device runtime via a Runner.
type Local struct {
	runner Runner
	log    zerolog.Logger
}

// NewLocal builds the local backend around the given runtime.
func NewLocal(runner Runner, log zerolog.Logger) *Local {
	return &Local{runner: runner, log: log.With().Str("backend", NameLocal).Logger()}
}

func (l *Local) Name() string { return NameLocal }

// Generate runs the prompt on the local runtime. The context deadline is
// applied strictly: an overrunning process is terminated, never left as an
// orphan, and GenerationTimeout is returned.
func (l *Local) Generate(ctx context.Context, model types.ModelProfile, req Request) (Result, error) {
	res, err := l.runner.Run(ctx, model, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			l.log.Warn().Str("model", model.Name).Msg("local generation timed out")
			return Result{}, ErrGenerationTimeout(NameLocal)
		}
		// Caller cancellation is not a backend failure; a fallback attempt on
		// a dead request would be wasted work.
		if errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
			return Result{}, context.Canceled
		}
		if IsRetryable(err) {
			return Result{}, err
		}
		l.log.Warn().Str("model", model.Name).Err(err).Msg("local generation failed")
		return Result{}, ErrUnavailable(NameLocal, err.Error())
	}
	return res, nil
}
