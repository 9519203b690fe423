package cache

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"hybridd/pkg/types"
)

// Fingerprint computes the deterministic cache key for a request: a stable
// hash over the normalized prompt, the model identifier and the generation
// parameters. Parameters are serialized in a fixed field order so the caller's
// ordering can never change the key.
func Fingerprint(prompt, model string, p types.GenParams) string {
	var b strings.Builder
	b.WriteString(NormalizePrompt(prompt))
	b.WriteByte(0)
	b.WriteString(model)
	b.WriteByte(0)
	fmt.Fprintf(&b, "max_tokens=%d", p.MaxTokens)
	fmt.Fprintf(&b, "|seed=%d", p.Seed)
	fmt.Fprintf(&b, "|stop=%s", strings.Join(p.Stop, "\x1f"))
	fmt.Fprintf(&b, "|temperature=%g", p.Temperature)
	fmt.Fprintf(&b, "|top_k=%d", p.TopK)
	fmt.Fprintf(&b, "|top_p=%g", p.TopP)
	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}

// NormalizePrompt trims the prompt and collapses runs of whitespace to a
// single space, so trivially reformatted prompts fingerprint identically.
func NormalizePrompt(prompt string) string {
	return strings.Join(strings.Fields(prompt), " ")
}
