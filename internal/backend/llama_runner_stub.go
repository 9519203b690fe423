//go:build !llama

package backend

import (
	"context"

	"hybridd/pkg/types"
)

// LlamaRunner is a no-CGO stub compiled when the 'llama' build tag is not
// set. It refuses to run rather than mock generation.
type LlamaRunner struct{}

// NewLlamaRunner builds the stub runner.
func NewLlamaRunner(ctxSize, threads int) *LlamaRunner { return &LlamaRunner{} }

func (r *LlamaRunner) Run(ctx context.Context, model types.ModelProfile, req Request) (Result, error) {
	return Result{}, ErrUnavailable(NameLocal, "llama support not built (missing 'llama' build tag)")
}
