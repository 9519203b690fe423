package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"hybridd/pkg/types"
)

// Defaults applied by ApplyDefaults when the corresponding field is unset.
const (
	DefaultAddr                  = ":8090"
	DefaultMaxCacheSizeMB        = 100
	DefaultCacheTTLHours         = 72
	DefaultEcoBatteryThreshold   = 20
	DefaultRequestTimeoutS       = 120
	DefaultSafetyFactor          = 0.7
	DefaultResourceProbeS        = 60
	DefaultConnectivityProbeS    = 30
	DefaultConnectivityProbeAddr = "1.1.1.1:443"
	DefaultCapability            = "chat"
)

// Selection policies for non-eco model choice.
const (
	SelectLargest  = "largest"
	SelectSmallest = "smallest"
)

// Config holds all runtime parameters for the daemon. Zero values mean
// "unspecified" and are replaced by ApplyDefaults; there is no hidden
// environment-driven state, callers construct one Config and pass it down.
type Config struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	// Cache
	CacheDir       string `json:"cache_dir" yaml:"cache_dir" toml:"cache_dir"`
	MaxCacheSizeMB int    `json:"max_cache_size_mb" yaml:"max_cache_size_mb" toml:"max_cache_size_mb"`
	CacheTTLHours  int    `json:"cache_ttl_hours" yaml:"cache_ttl_hours" toml:"cache_ttl_hours"`

	// Routing
	EcoBatteryThreshold int     `json:"eco_battery_threshold" yaml:"eco_battery_threshold" toml:"eco_battery_threshold"`
	PreferOffline       bool    `json:"prefer_offline" yaml:"prefer_offline" toml:"prefer_offline"`
	ForceOffline        bool    `json:"force_offline" yaml:"force_offline" toml:"force_offline"`
	DefaultModel        string  `json:"default_model" yaml:"default_model" toml:"default_model"`
	RequestTimeoutS     int     `json:"request_timeout_s" yaml:"request_timeout_s" toml:"request_timeout_s"`
	SafetyFactor        float64 `json:"safety_factor" yaml:"safety_factor" toml:"safety_factor"`
	// "largest" (quality over minimalism, the default) or "smallest".
	SelectionPolicy string `json:"selection_policy" yaml:"selection_policy" toml:"selection_policy"`

	// Probes
	ResourceProbeIntervalS     int    `json:"resource_probe_interval_s" yaml:"resource_probe_interval_s" toml:"resource_probe_interval_s"`
	ConnectivityProbeIntervalS int    `json:"connectivity_probe_interval_s" yaml:"connectivity_probe_interval_s" toml:"connectivity_probe_interval_s"`
	ConnectivityProbeAddr      string `json:"connectivity_probe_addr" yaml:"connectivity_probe_addr" toml:"connectivity_probe_addr"`

	// Local backend
	LocalRuntimeBin string `json:"local_runtime_bin" yaml:"local_runtime_bin" toml:"local_runtime_bin"`
	ModelsDir       string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`

	// Remote backend
	RemoteBaseURL    string `json:"remote_base_url" yaml:"remote_base_url" toml:"remote_base_url"`
	RemoteAPIKey     string `json:"remote_api_key" yaml:"remote_api_key" toml:"remote_api_key"`
	RemoteAPIKeyFile string `json:"remote_api_key_file" yaml:"remote_api_key_file" toml:"remote_api_key_file"`

	// Extra model profiles merged into the built-in catalog.
	Models []types.ModelProfile `json:"models" yaml:"models" toml:"models"`

	// Ambient
	LogLevel           string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields in place and returns the config.
func (c Config) ApplyDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(userCacheBase(), "hybridd", "responses")
	}
	if c.MaxCacheSizeMB <= 0 {
		c.MaxCacheSizeMB = DefaultMaxCacheSizeMB
	}
	if c.CacheTTLHours <= 0 {
		c.CacheTTLHours = DefaultCacheTTLHours
	}
	if c.EcoBatteryThreshold <= 0 {
		c.EcoBatteryThreshold = DefaultEcoBatteryThreshold
	}
	if c.RequestTimeoutS <= 0 {
		c.RequestTimeoutS = DefaultRequestTimeoutS
	}
	if c.SafetyFactor <= 0 || c.SafetyFactor > 1 {
		c.SafetyFactor = DefaultSafetyFactor
	}
	if c.SelectionPolicy == "" {
		c.SelectionPolicy = SelectLargest
	}
	if c.ResourceProbeIntervalS <= 0 {
		c.ResourceProbeIntervalS = DefaultResourceProbeS
	}
	if c.ConnectivityProbeIntervalS <= 0 {
		c.ConnectivityProbeIntervalS = DefaultConnectivityProbeS
	}
	if c.ConnectivityProbeAddr == "" {
		c.ConnectivityProbeAddr = DefaultConnectivityProbeAddr
	}
	if c.ModelsDir == "" {
		c.ModelsDir = "~/models/llm"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}

// Validate rejects configurations that cannot work.
func (c Config) Validate() error {
	switch c.SelectionPolicy {
	case SelectLargest, SelectSmallest:
	default:
		return fmt.Errorf("selection_policy must be %q or %q, got %q", SelectLargest, SelectSmallest, c.SelectionPolicy)
	}
	if c.SafetyFactor <= 0 || c.SafetyFactor > 1 {
		return fmt.Errorf("safety_factor must be in (0,1], got %g", c.SafetyFactor)
	}
	if c.RemoteAPIKey != "" && c.RemoteAPIKeyFile != "" {
		return fmt.Errorf("remote_api_key and remote_api_key_file are mutually exclusive")
	}
	return nil
}

// MaxCacheBytes returns the cache size bound in bytes.
func (c Config) MaxCacheBytes() int64 { return int64(c.MaxCacheSizeMB) * 1024 * 1024 }

// CacheTTL returns the entry time-to-live as a duration.
func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLHours) * time.Hour }

// RequestTimeout returns the per-backend-call timeout.
func (c Config) RequestTimeout() time.Duration { return time.Duration(c.RequestTimeoutS) * time.Second }

// ResolveRemoteAPIKey returns the API key, reading the key file if configured.
func (c Config) ResolveRemoteAPIKey() (string, error) {
	if c.RemoteAPIKey != "" {
		return c.RemoteAPIKey, nil
	}
	if c.RemoteAPIKeyFile == "" {
		return "", nil
	}
	b, err := os.ReadFile(c.RemoteAPIKeyFile)
	if err != nil {
		return "", fmt.Errorf("read api key file: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func userCacheBase() string {
	if d, err := os.UserCacheDir(); err == nil {
		return d
	}
	return os.TempDir()
}
