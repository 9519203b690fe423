// Package backend provides the two generation engines behind the router: an
// on-device runtime (LocalBackend) and a hosted chat-completion API
// (RemoteBackend). Backends are stateless with respect to the router; they
// know nothing about the cache or about each other.
package backend

import (
	"context"

	"hybridd/pkg/types"
)

// Backend names used in error reporting and metrics.
const (
	NameLocal  = "local"
	NameRemote = "remote"
)

// Request is a single generation request handed to a backend. The timeout is
// carried by the context deadline.
type Request struct {
	Prompt string
	Params types.GenParams
}

// Result is a completed generation.
type Result struct {
	Content      string
	Usage        types.Usage
	FinishReason string
}

// Backend is the common generation contract. Implementations must return
// promptly once the context deadline passes: a local process is terminated,
// a remote call is abandoned. Failures map to the taxonomy in errors.go.
type Backend interface {
	Name() string
	Generate(ctx context.Context, model types.ModelProfile, req Request) (Result, error)
}
