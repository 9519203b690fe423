package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"hybridd/pkg/types"
)

// Remote calls a hosted chat-completion API. Any non-2xx response maps to
// BackendUnavailable; a deadline overrun maps to GenerationTimeout.
type Remote struct {
	client *openai.Client
	log    zerolog.Logger
}

// NewRemote builds the remote backend. baseURL may point at any
// OpenAI-compatible endpoint; empty means the upstream default.
func NewRemote(baseURL, apiKey string, log zerolog.Logger) *Remote {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Remote{
		client: openai.NewClientWithConfig(cfg),
		log:    log.With().Str("backend", NameRemote).Logger(),
	}
}

func (r *Remote) Name() string { return NameRemote }

func (r *Remote) Generate(ctx context.Context, model types.ModelProfile, req Request) (Result, error) {
	ccr := openai.ChatCompletionRequest{
		Model: model.Name,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	if req.Params.MaxTokens > 0 {
		ccr.MaxTokens = req.Params.MaxTokens
	}
	if req.Params.Temperature > 0 {
		ccr.Temperature = float32(req.Params.Temperature)
	}
	if req.Params.TopP > 0 {
		ccr.TopP = float32(req.Params.TopP)
	}
	if len(req.Params.Stop) > 0 {
		ccr.Stop = req.Params.Stop
	}
	if req.Params.Seed != 0 {
		seed := int(req.Params.Seed)
		ccr.Seed = &seed
	}

	resp, err := r.client.CreateChatCompletion(ctx, ccr)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			r.log.Warn().Str("model", model.Name).Msg("remote generation timed out")
			return Result{}, ErrGenerationTimeout(NameRemote)
		}
		if errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
			return Result{}, context.Canceled
		}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			r.log.Warn().Str("model", model.Name).Int("status", apiErr.HTTPStatusCode).Msg("remote api error")
			return Result{}, ErrUnavailable(NameRemote, fmt.Sprintf("http %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
		}
		r.log.Warn().Str("model", model.Name).Err(err).Msg("remote call failed")
		return Result{}, ErrUnavailable(NameRemote, err.Error())
	}
	if len(resp.Choices) == 0 {
		return Result{}, ErrUnavailable(NameRemote, "response contained no choices")
	}
	choice := resp.Choices[0]
	return Result{
		Content: choice.Message.Content,
		Usage: types.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		FinishReason: string(choice.FinishReason),
	}, nil
}
