package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"hybridd/internal/backend"
	"hybridd/internal/cache"
	"hybridd/internal/catalog"
	"hybridd/internal/common/fsutil"
	"hybridd/internal/config"
	"hybridd/internal/router"
	"hybridd/internal/selector"
	"hybridd/internal/sysmon"
)

// defaultLlamaCtxSize is the context window handed to the in-process runner
// when the subprocess runtime is not configured.
const defaultLlamaCtxSize = 4096

// buildRouter wires the full stack from one Config. All state is owned by
// the returned router; nothing global.
func buildRouter(cfg config.Config, log zerolog.Logger) (*router.Router, error) {
	cat, err := catalog.New(append(catalog.Builtin(), cfg.Models...))
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	cacheDir, err := fsutil.ExpandHome(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	store, err := cache.Open(cacheDir, cfg.MaxCacheBytes(), cfg.CacheTTL(), log)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	resMon := sysmon.NewResourceMonitor(secondsDur(cfg.ResourceProbeIntervalS), log)
	connMon := sysmon.NewConnectivityMonitor(secondsDur(cfg.ConnectivityProbeIntervalS), cfg.ConnectivityProbeAddr, log)

	sel := selector.New(cat, cfg.SafetyFactor, cfg.EcoBatteryThreshold,
		cfg.SelectionPolicy == config.SelectLargest, log)

	var runner backend.Runner
	if cfg.LocalRuntimeBin != "" {
		runner = backend.NewSubprocessRunner(cfg.LocalRuntimeBin, cfg.ModelsDir, log)
	} else {
		runner = backend.NewLlamaRunner(defaultLlamaCtxSize, 0)
	}
	local := backend.NewLocal(runner, log)

	apiKey, err := cfg.ResolveRemoteAPIKey()
	if err != nil {
		return nil, err
	}
	remote := backend.NewRemote(cfg.RemoteBaseURL, apiKey, log)

	rt := router.New(router.Config{
		DefaultModel:      cfg.DefaultModel,
		DefaultCapability: config.DefaultCapability,
		PreferOffline:     cfg.PreferOffline,
		ForceOffline:      cfg.ForceOffline,
		RequestTimeout:    cfg.RequestTimeout(),
	}, cat, sel, store, resMon, connMon, local, remote, log)
	return rt, nil
}

func secondsDur(s int) time.Duration { return time.Duration(s) * time.Second }
