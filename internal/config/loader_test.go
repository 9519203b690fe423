package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", `
addr: ":9000"
max_cache_size_mb: 50
default_model: phi-3-mini-q4
models:
  - name: custom-7b-q4
    kind: local
    ram_required_mb: 5120
    capabilities: [chat]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.MaxCacheSizeMB != 50 || cfg.DefaultModel != "phi-3-mini-q4" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Models) != 1 || cfg.Models[0].Name != "custom-7b-q4" || cfg.Models[0].RAMRequiredMB != 5120 {
		t.Fatalf("models not parsed: %+v", cfg.Models)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{"addr":":9001","cache_ttl_hours":24,"force_offline":true}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9001" || cfg.CacheTTLHours != 24 || !cfg.ForceOffline {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeTemp(t, "cfg.toml", "addr = \":9002\"\nsafety_factor = 0.5\nprefer_offline = true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9002" || cfg.SafetyFactor != 0.5 || !cfg.PreferOffline {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeTemp(t, "cfg.ini", "addr=:9003")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for .ini config")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}.ApplyDefaults()
	if cfg.Addr != DefaultAddr {
		t.Fatalf("addr default: %q", cfg.Addr)
	}
	if cfg.MaxCacheSizeMB != DefaultMaxCacheSizeMB || cfg.CacheTTLHours != DefaultCacheTTLHours {
		t.Fatalf("cache defaults: %+v", cfg)
	}
	if cfg.SafetyFactor != DefaultSafetyFactor || cfg.EcoBatteryThreshold != DefaultEcoBatteryThreshold {
		t.Fatalf("selection defaults: %+v", cfg)
	}
	if cfg.SelectionPolicy != SelectLargest {
		t.Fatalf("selection policy default: %q", cfg.SelectionPolicy)
	}
	if cfg.CacheDir == "" || cfg.ConnectivityProbeAddr != DefaultConnectivityProbeAddr {
		t.Fatalf("probe/cache defaults: %+v", cfg)
	}
}

func TestApplyDefaults_PreservesSetValues(t *testing.T) {
	cfg := Config{Addr: ":1", MaxCacheSizeMB: 5, SelectionPolicy: SelectSmallest}.ApplyDefaults()
	if cfg.Addr != ":1" || cfg.MaxCacheSizeMB != 5 || cfg.SelectionPolicy != SelectSmallest {
		t.Fatalf("set values overwritten: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	good := Config{}.ApplyDefaults()
	if err := good.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := good
	bad.SelectionPolicy = "fastest"
	if err := bad.Validate(); err == nil {
		t.Fatalf("bad selection policy accepted")
	}

	bad = good
	bad.SafetyFactor = 1.5
	if err := bad.Validate(); err == nil {
		t.Fatalf("safety factor > 1 accepted")
	}

	bad = good
	bad.RemoteAPIKey = "k"
	bad.RemoteAPIKeyFile = "/tmp/k"
	if err := bad.Validate(); err == nil {
		t.Fatalf("key and key file together accepted")
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Config{MaxCacheSizeMB: 2, CacheTTLHours: 3, RequestTimeoutS: 4}
	if cfg.MaxCacheBytes() != 2*1024*1024 {
		t.Fatalf("MaxCacheBytes: %d", cfg.MaxCacheBytes())
	}
	if cfg.CacheTTL() != 3*time.Hour {
		t.Fatalf("CacheTTL: %v", cfg.CacheTTL())
	}
	if cfg.RequestTimeout() != 4*time.Second {
		t.Fatalf("RequestTimeout: %v", cfg.RequestTimeout())
	}
}

func TestResolveRemoteAPIKey(t *testing.T) {
	cfg := Config{RemoteAPIKey: "inline"}
	key, err := cfg.ResolveRemoteAPIKey()
	if err != nil || key != "inline" {
		t.Fatalf("inline key: %q %v", key, err)
	}

	path := writeTemp(t, "key.txt", "  sk-from-file \n")
	cfg = Config{RemoteAPIKeyFile: path}
	key, err = cfg.ResolveRemoteAPIKey()
	if err != nil || key != "sk-from-file" {
		t.Fatalf("file key: %q %v", key, err)
	}

	cfg = Config{}
	key, err = cfg.ResolveRemoteAPIKey()
	if err != nil || key != "" {
		t.Fatalf("no key configured: %q %v", key, err)
	}

	cfg = Config{RemoteAPIKeyFile: filepath.Join(t.TempDir(), "missing")}
	if _, err := cfg.ResolveRemoteAPIKey(); err == nil {
		t.Fatalf("missing key file accepted")
	}
}
