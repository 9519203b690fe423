package types

import "time"

// BackendKind identifies which generation engine serves a model.
type BackendKind string

const (
	KindLocal  BackendKind = "local"
	KindRemote BackendKind = "remote"
)

// mobileRAMCeilingMB is the RAM footprint below which a model is considered
// safe to run on constrained (mobile-class) devices.
const mobileRAMCeilingMB = 4096

// ModelProfile describes a known model: identity, footprint and capabilities.
// Profiles are immutable once the catalog is loaded.
type ModelProfile struct {
	// Unique model name, also the identifier sent to the serving backend.
	// example: qwen2.5-1.5b-q4
	Name string `json:"name" yaml:"name" toml:"name"`
	// Which backend kind serves this model (local or remote).
	Kind BackendKind `json:"kind" yaml:"kind" toml:"kind"`
	// Size of the model artifact on disk in MB. Zero for hosted models.
	DiskSizeMB int `json:"disk_size_mb,omitempty" yaml:"disk_size_mb" toml:"disk_size_mb"`
	// RAM needed to run the model in MB. Zero for hosted models.
	RAMRequiredMB int `json:"ram_required_mb,omitempty" yaml:"ram_required_mb" toml:"ram_required_mb"`
	// Quantization variant string, e.g. Q4_K_M.
	Quant string `json:"quant,omitempty" yaml:"quant" toml:"quant"`
	// Capability tags, e.g. "chat", "code".
	Capabilities []string `json:"capabilities" yaml:"capabilities" toml:"capabilities"`
	// Absolute path to the model artifact. Empty for hosted models; local
	// models with an empty path resolve against the configured models dir.
	Path string `json:"path,omitempty" yaml:"path" toml:"path"`
}

// HasCapability reports whether the profile declares the given capability tag.
func (p ModelProfile) HasCapability(cap string) bool {
	for _, c := range p.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// MobileFriendly reports whether the model fits under the fixed RAM ceiling
// for constrained devices. Derived, never stored.
func (p ModelProfile) MobileFriendly() bool {
	return p.RAMRequiredMB < mobileRAMCeilingMB
}

// GenParams are the generation parameters that shape a completion and
// therefore participate in the cache fingerprint.
type GenParams struct {
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	Stop        []string `json:"stop,omitempty"`
	Seed        int64    `json:"seed,omitempty"`
}

// Usage contains token accounting reported by a backend.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// BatteryUnknown marks a device without a readable battery (desktops, probe
// failure). Selection treats it as "assume sufficient".
const BatteryUnknown = -1

// Resources is a point-in-time snapshot of device resources. Probes are
// rate-limited, so snapshots may be slightly stale by design.
type Resources struct {
	// Battery charge 0-100, or BatteryUnknown.
	BatteryPercent int `json:"battery_percent"`
	// Whether the device is plugged in and charging.
	Charging bool `json:"charging"`
	// Available (not total) system memory in MB.
	AvailableRAMMB int `json:"available_ram_mb"`
	// When the snapshot was taken.
	SampledAt time.Time `json:"sampled_at"`
}

// BatteryKnown reports whether the snapshot carries a usable battery reading.
func (r Resources) BatteryKnown() bool {
	return r.BatteryPercent >= 0 && r.BatteryPercent <= 100
}

// Mode tags a response with how it was served.
type Mode string

const (
	ModeCached  Mode = "cached"
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)
