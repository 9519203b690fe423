package cache

import (
	"testing"

	"hybridd/pkg/types"
)

func TestFingerprint_Deterministic(t *testing.T) {
	p := types.GenParams{MaxTokens: 64, Temperature: 0.7, TopP: 0.9}
	a := Fingerprint("write a haiku", "qwen2.5-1.5b-q4", p)
	b := Fingerprint("write a haiku", "qwen2.5-1.5b-q4", p)
	if a != b {
		t.Fatalf("same input produced different keys: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("key not a 64-bit hex string: %q", a)
	}
}

func TestFingerprint_NormalizesWhitespace(t *testing.T) {
	p := types.GenParams{}
	a := Fingerprint("write   a\thaiku\n", "m", p)
	b := Fingerprint(" write a haiku ", "m", p)
	if a != b {
		t.Fatalf("whitespace variants should share a key")
	}
}

func TestFingerprint_DiscriminatesInputs(t *testing.T) {
	base := Fingerprint("prompt", "m", types.GenParams{MaxTokens: 10})
	cases := map[string]string{
		"prompt":      Fingerprint("other prompt", "m", types.GenParams{MaxTokens: 10}),
		"model":       Fingerprint("prompt", "m2", types.GenParams{MaxTokens: 10}),
		"max_tokens":  Fingerprint("prompt", "m", types.GenParams{MaxTokens: 11}),
		"temperature": Fingerprint("prompt", "m", types.GenParams{MaxTokens: 10, Temperature: 0.1}),
		"seed":        Fingerprint("prompt", "m", types.GenParams{MaxTokens: 10, Seed: 42}),
		"stop":        Fingerprint("prompt", "m", types.GenParams{MaxTokens: 10, Stop: []string{"###"}}),
	}
	for field, key := range cases {
		if key == base {
			t.Fatalf("changing %s did not change the key", field)
		}
	}
}

func TestFingerprint_StopListSeparator(t *testing.T) {
	// ["ab","c"] and ["a","bc"] must not collide.
	a := Fingerprint("p", "m", types.GenParams{Stop: []string{"ab", "c"}})
	b := Fingerprint("p", "m", types.GenParams{Stop: []string{"a", "bc"}})
	if a == b {
		t.Fatalf("stop list boundary ambiguity")
	}
}

func TestNormalizePrompt(t *testing.T) {
	if got := NormalizePrompt("  a\t b\n\nc "); got != "a b c" {
		t.Fatalf("NormalizePrompt: %q", got)
	}
	if got := NormalizePrompt(""); got != "" {
		t.Fatalf("NormalizePrompt empty: %q", got)
	}
}
