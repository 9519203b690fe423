//go:build llama

package backend

import (
	"context"
	"errors"

	llama "github.com/go-skynet/go-llama.cpp"

	"hybridd/internal/common/fsutil"
	"hybridd/pkg/types"
)

// LlamaRunner runs models in-process through llama.cpp bindings. Compiled
// only with the 'llama' build tag so default builds stay CGO-free.
type LlamaRunner struct {
	ctxSize int
	threads int
}

// NewLlamaRunner builds an in-process runner.
func NewLlamaRunner(ctxSize, threads int) *LlamaRunner {
	return &LlamaRunner{ctxSize: ctxSize, threads: threads}
}

func (r *LlamaRunner) Run(ctx context.Context, model types.ModelProfile, req Request) (Result, error) {
	path, err := fsutil.ExpandHome(model.Path)
	if err != nil {
		return Result{}, err
	}
	if path == "" {
		return Result{}, errors.New("model path is empty")
	}
	m, err := llama.New(path, llama.SetContext(r.ctxSize))
	if err != nil {
		return Result{}, err
	}
	defer m.Free()

	m.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	})
	text, err := m.Predict(req.Prompt, predictOptions(req.Params, r.threads)...)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, err
	}
	return Result{Content: text, FinishReason: "stop"}, nil
}

func predictOptions(p types.GenParams, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(maxInt(1, p.MaxTokens)),
		llama.SetThreads(maxInt(1, threads)),
	}
	if p.Temperature > 0 {
		po = append(po, llama.SetTemperature(float32(p.Temperature)))
	}
	if p.TopP > 0 {
		po = append(po, llama.SetTopP(float32(p.TopP)))
	}
	if p.TopK > 0 {
		po = append(po, llama.SetTopK(p.TopK))
	}
	if p.Seed != 0 {
		po = append(po, llama.SetSeed(int(p.Seed)))
	}
	if len(p.Stop) > 0 {
		po = append(po, llama.SetStopWords(p.Stop...))
	}
	return po
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
