// Package selector picks the best eligible model from the catalog for a task,
// given the current device snapshot.
package selector

import (
	"github.com/rs/zerolog"

	"hybridd/internal/catalog"
	"hybridd/pkg/types"
)

// Options narrow a selection beyond the capability filter.
type Options struct {
	// Eco asks for the smallest eligible profile. Forced regardless of this
	// flag when battery is below the eco threshold.
	Eco bool
	// Kind restricts candidates to one backend kind; empty means any.
	Kind types.BackendKind
}

// Selector filters and ranks catalog profiles.
type Selector struct {
	catalog       *catalog.Catalog
	safetyFactor  float64
	ecoBattery    int
	preferLargest bool
	log           zerolog.Logger
}

// New builds a selector. safetyFactor scales available RAM before the fit
// check, leaving headroom for the OS and the calling process. preferLargest
// picks the biggest profile that fits in non-eco mode (larger generally
// implies higher quality); it is policy, not a hard rule.
func New(cat *catalog.Catalog, safetyFactor float64, ecoBatteryThreshold int, preferLargest bool, log zerolog.Logger) *Selector {
	return &Selector{
		catalog:       cat,
		safetyFactor:  safetyFactor,
		ecoBattery:    ecoBatteryThreshold,
		preferLargest: preferLargest,
		log:           log.With().Str("component", "selector").Logger(),
	}
}

// Select returns the best eligible profile for the capability, or
// NoSuitableModel. Eligible means: declares the capability, matches the kind
// filter, and requires less RAM than available*safetyFactor. Unknown battery
// or unknown available RAM is treated as sufficient, never fail-closed.
func (s *Selector) Select(capability string, res types.Resources, opts Options) (types.ModelProfile, error) {
	eco := opts.Eco || s.ecoForced(res)

	var eligible []types.ModelProfile
	for _, p := range s.catalog.List() {
		if !p.HasCapability(capability) {
			continue
		}
		if opts.Kind != "" && p.Kind != opts.Kind {
			continue
		}
		if !s.fitsRAM(p, res) {
			continue
		}
		eligible = append(eligible, p)
	}
	if len(eligible) == 0 {
		return types.ModelProfile{}, ErrNoSuitableModel(capability)
	}

	best := eligible[0]
	for _, p := range eligible[1:] {
		if s.better(p, best, eco) {
			best = p
		}
	}
	s.log.Debug().
		Str("capability", capability).
		Str("model", best.Name).
		Bool("eco", eco).
		Int("candidates", len(eligible)).
		Msg("model selected")
	return best, nil
}

// EcoForced reports whether the device snapshot forces eco mode regardless of
// caller intent.
func (s *Selector) EcoForced(res types.Resources) bool { return s.ecoForced(res) }

func (s *Selector) ecoForced(res types.Resources) bool {
	return res.BatteryKnown() && res.BatteryPercent < s.ecoBattery
}

func (s *Selector) fitsRAM(p types.ModelProfile, res types.Resources) bool {
	if res.AvailableRAMMB <= 0 {
		// Probe failed or unsupported platform: assume sufficient.
		return true
	}
	return float64(p.RAMRequiredMB) < float64(res.AvailableRAMMB)*s.safetyFactor
}

// better reports whether a should replace b under the active policy. Ties
// break by name so selection is deterministic.
func (s *Selector) better(a, b types.ModelProfile, eco bool) bool {
	wantLargest := s.preferLargest && !eco
	if a.RAMRequiredMB != b.RAMRequiredMB {
		if wantLargest {
			return a.RAMRequiredMB > b.RAMRequiredMB
		}
		return a.RAMRequiredMB < b.RAMRequiredMB
	}
	return a.Name < b.Name
}
