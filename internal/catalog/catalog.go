// Package catalog holds the registry of known model profiles. The catalog is
// built once at startup from the built-in table plus any profiles supplied by
// configuration, and is never mutated afterwards.
package catalog

import (
	"fmt"
	"strings"

	"hybridd/pkg/types"
)

type Catalog struct {
	profiles []types.ModelProfile
	byName   map[string]types.ModelProfile
}

// New builds a catalog from the given profiles. Names must be unique and
// non-empty; profiles are identity-keyed, so a duplicate is a load error
// rather than a silent override.
func New(profiles []types.ModelProfile) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]types.ModelProfile, len(profiles))}
	for _, p := range profiles {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("model profile with empty name")
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("duplicate model profile: %s", name)
		}
		switch p.Kind {
		case types.KindLocal, types.KindRemote:
		default:
			return nil, fmt.Errorf("model %s: unknown backend kind %q", name, p.Kind)
		}
		p.Name = name
		c.byName[name] = p
		c.profiles = append(c.profiles, p)
	}
	return c, nil
}

// List returns all profiles. The slice is a copy to avoid external mutation.
func (c *Catalog) List() []types.ModelProfile {
	out := make([]types.ModelProfile, len(c.profiles))
	copy(out, c.profiles)
	return out
}

// Get returns the profile for name, or a ModelNotFound error. There is no
// silent default.
func (c *Catalog) Get(name string) (types.ModelProfile, error) {
	p, ok := c.byName[strings.TrimSpace(name)]
	if !ok {
		return types.ModelProfile{}, ErrModelNotFound(name)
	}
	return p, nil
}

// Builtin is the static profile table shipped with the daemon. Config can
// extend it with additional profiles.
func Builtin() []types.ModelProfile {
	return []types.ModelProfile{
		{
			Name:          "qwen2.5-1.5b-q4",
			Kind:          types.KindLocal,
			DiskSizeMB:    1100,
			RAMRequiredMB: 2048,
			Quant:         "Q4_K_M",
			Capabilities:  []string{"chat", "code"},
		},
		{
			Name:          "phi-3-mini-q4",
			Kind:          types.KindLocal,
			DiskSizeMB:    2300,
			RAMRequiredMB: 3584,
			Quant:         "Q4_K_M",
			Capabilities:  []string{"chat"},
		},
		{
			Name:          "llama-3.1-8b-q4",
			Kind:          types.KindLocal,
			DiskSizeMB:    4700,
			RAMRequiredMB: 6656,
			Quant:         "Q4_K_M",
			Capabilities:  []string{"chat", "code"},
		},
		{
			Name:         "gpt-4o-mini",
			Kind:         types.KindRemote,
			Capabilities: []string{"chat", "code"},
		},
		{
			Name:         "gpt-4o",
			Kind:         types.KindRemote,
			Capabilities: []string{"chat", "code"},
		},
	}
}
