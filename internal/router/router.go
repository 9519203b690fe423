// Package router implements the hybrid provider: per request it serves from
// the response cache, an on-device model or a hosted API, with a bounded
// one-hop fallback between the two backends.
package router

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"hybridd/internal/backend"
	"hybridd/internal/cache"
	"hybridd/internal/catalog"
	"hybridd/internal/selector"
	"hybridd/pkg/types"
)

// ResourceSampler yields the current device resource snapshot.
type ResourceSampler interface {
	Sample() types.Resources
}

// ConnectivityChecker answers whether the device is online.
type ConnectivityChecker interface {
	Online() bool
	LastChecked() time.Time
}

// Config holds the router tunables. Constructed once and passed in; there is
// no hidden global state.
type Config struct {
	// Model used when the request does not name one. Empty means pure
	// auto-selection.
	DefaultModel string
	// Capability assumed when the request does not name one.
	DefaultCapability string
	// Bias toward local generation when both backends are viable.
	PreferOffline bool
	// Disable the remote backend entirely.
	ForceOffline bool
	// Per-backend-call timeout.
	RequestTimeout time.Duration
}

// Router composes cache, selector, monitors and backends. Safe for
// concurrent use; the cache index is the only shared mutable state and it
// guards itself.
type Router struct {
	cfg      Config
	catalog  *catalog.Catalog
	selector *selector.Selector
	cache    *cache.Store
	res      ResourceSampler
	conn     ConnectivityChecker
	local    backend.Backend
	remote   backend.Backend
	log      zerolog.Logger
	now      func() time.Time

	startTime     time.Time
	servedCached  atomic.Uint64
	servedOffline atomic.Uint64
	servedOnline  atomic.Uint64
}

// New wires a router from its collaborators.
func New(cfg Config, cat *catalog.Catalog, sel *selector.Selector, store *cache.Store,
	res ResourceSampler, conn ConnectivityChecker, local, remote backend.Backend, log zerolog.Logger) *Router {
	if cfg.DefaultCapability == "" {
		cfg.DefaultCapability = "chat"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120 * time.Second
	}
	return &Router{
		cfg:       cfg,
		catalog:   cat,
		selector:  sel,
		cache:     store,
		res:       res,
		conn:      conn,
		local:     local,
		remote:    remote,
		log:       log.With().Str("component", "router").Logger(),
		now:       time.Now,
		startTime: time.Now(),
	}
}

// plan is one backend attempt the router may make for a request.
type plan struct {
	backend backend.Backend
	profile types.ModelProfile
	mode    types.Mode
}

// Generate serves one request: cache lookup, then model selection, backend
// dispatch and a bounded fallback, then cache write. The response is always
// tagged with its serving mode.
func (r *Router) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	start := r.now()
	if strings.TrimSpace(req.Prompt) == "" {
		return types.GenerateResponse{}, fmt.Errorf("prompt is required")
	}
	capability := req.Capability
	if capability == "" {
		capability = r.cfg.DefaultCapability
	}

	// An explicitly named model must exist; there is no silent fallback to
	// auto-selection. The configured default acts as if the caller named it.
	var explicit *types.ModelProfile
	if name := r.explicitModel(req); name != "" {
		p, err := r.catalog.Get(name)
		if err != nil {
			return types.GenerateResponse{}, err
		}
		explicit = &p
	}

	key := cache.Fingerprint(req.Prompt, r.keyModel(req), req.Params)
	if e, ok := r.cache.Get(key); ok {
		r.servedCached.Add(1)
		requestsTotal.WithLabelValues(string(types.ModeCached)).Inc()
		r.log.Debug().Str("key", key).Str("model", e.Model).Msg("cache hit")
		return types.GenerateResponse{
			Response:    e.Response,
			Mode:        types.ModeCached,
			Model:       e.Model,
			Usage:       e.Usage,
			GeneratedAt: e.CreatedAt,
			Hits:        e.HitCount,
			ElapsedMS:   r.now().Sub(start).Milliseconds(),
		}, nil
	}

	res := r.res.Sample()
	online := r.conn.Online()
	forceOffline := r.cfg.ForceOffline || req.Offline
	eco := req.Eco || r.selector.EcoForced(res)

	localProfile, localErr := r.resolve(explicit, capability, res, types.KindLocal, eco)
	remoteProfile, remoteErr := r.resolve(explicit, capability, res, types.KindRemote, eco)
	localCapable := localErr == nil
	remoteViable := remoteErr == nil && online && !forceOffline

	seq := r.sequence(localCapable, remoteViable, forceOffline, online, eco,
		localProfile, remoteProfile)
	if len(seq) == 0 {
		err := r.noRouteError(localErr, remoteErr, forceOffline, online)
		requestsTotal.WithLabelValues("error").Inc()
		return types.GenerateResponse{}, err
	}

	var attempts []Attempt
	for i, p := range seq {
		if i > 0 {
			fallbacksTotal.WithLabelValues(seq[i-1].backend.Name(), p.backend.Name()).Inc()
			r.log.Info().
				Str("from", seq[i-1].backend.Name()).
				Str("to", p.backend.Name()).
				Msg("falling back")
		}
		result, err := r.dispatch(ctx, p, req)
		if err == nil {
			r.writeCache(key, req, p.profile, result)
			r.countMode(p.mode)
			return types.GenerateResponse{
				Response:    result.Content,
				Mode:        p.mode,
				Model:       p.profile.Name,
				Usage:       result.Usage,
				GeneratedAt: r.now(),
				ElapsedMS:   r.now().Sub(start).Milliseconds(),
			}, nil
		}
		attempts = append(attempts, Attempt{Backend: p.backend.Name(), Err: err})
		if !backend.IsRetryable(err) {
			break
		}
	}
	requestsTotal.WithLabelValues("error").Inc()
	return types.GenerateResponse{}, ErrAllBackendsFailed(attempts)
}

// dispatch runs one backend call under the per-call timeout.
func (r *Router) dispatch(ctx context.Context, p plan, req types.GenerateRequest) (backend.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()
	start := r.now()
	result, err := p.backend.Generate(callCtx, p.profile, backend.Request{Prompt: req.Prompt, Params: req.Params})
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	backendSeconds.WithLabelValues(p.backend.Name(), outcome).Observe(r.now().Sub(start).Seconds())
	return result, err
}

// sequence builds the ordered backend attempts for this request. At most one
// entry per backend, so a request that fails everywhere terminates after two
// calls and can never oscillate.
func (r *Router) sequence(localCapable, remoteViable, forceOffline, online, eco bool,
	localProfile, remoteProfile types.ModelProfile) []plan {
	localPlan := plan{backend: r.local, profile: localProfile, mode: types.ModeOffline}
	remotePlan := plan{backend: r.remote, profile: remoteProfile, mode: types.ModeOnline}

	localFirst := forceOffline || !online || (eco && localCapable) || (r.cfg.PreferOffline && localCapable)
	var seq []plan
	if localFirst {
		if localCapable {
			seq = append(seq, localPlan)
		}
		// Local failure may fall back to remote only with connectivity and
		// without force_offline.
		if remoteViable {
			seq = append(seq, remotePlan)
		}
		return seq
	}
	if remoteViable {
		seq = append(seq, remotePlan)
	}
	if localCapable {
		seq = append(seq, localPlan)
	}
	return seq
}

// resolve returns the profile to use for one backend kind: the explicitly
// requested model when it matches the kind, otherwise the selector's pick.
func (r *Router) resolve(explicit *types.ModelProfile, capability string, res types.Resources,
	kind types.BackendKind, eco bool) (types.ModelProfile, error) {
	if explicit != nil {
		if explicit.Kind != kind {
			return types.ModelProfile{}, selector.ErrNoSuitableModel(capability)
		}
		return *explicit, nil
	}
	return r.selector.Select(capability, res, selector.Options{Eco: eco, Kind: kind})
}

// noRouteError picks the most meaningful error when nothing was attemptable.
func (r *Router) noRouteError(localErr, remoteErr error, forceOffline, online bool) error {
	if forceOffline || !online {
		return localErr
	}
	if remoteErr != nil {
		return remoteErr
	}
	return localErr
}

// writeCache persists a successful generation. Best effort: a failed write is
// logged, never surfaced, and only the eviction check extends the return path.
func (r *Router) writeCache(key string, req types.GenerateRequest, profile types.ModelProfile, result backend.Result) {
	err := r.cache.Put(cache.Entry{
		Key:      key,
		Prompt:   req.Prompt,
		Model:    profile.Name,
		Response: result.Content,
		Usage:    result.Usage,
		Params:   req.Params,
	})
	if err != nil {
		r.log.Warn().Str("key", key).Err(err).Msg("cache write failed")
	}
}

// explicitModel returns the model name the caller pinned, directly or through
// the configured default. Empty means pure auto-selection.
func (r *Router) explicitModel(req types.GenerateRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return r.cfg.DefaultModel
}

// keyModel is the model identifier folded into the cache fingerprint. For
// auto-selected requests a fixed marker keeps repeat submissions on one key
// regardless of which backend ends up serving them.
func (r *Router) keyModel(req types.GenerateRequest) string {
	if name := r.explicitModel(req); name != "" {
		return name
	}
	return "auto"
}

func (r *Router) countMode(mode types.Mode) {
	requestsTotal.WithLabelValues(string(mode)).Inc()
	switch mode {
	case types.ModeOffline:
		r.servedOffline.Add(1)
	case types.ModeOnline:
		r.servedOnline.Add(1)
	}
}

// Models returns the catalog list for the API surface.
func (r *Router) Models() []types.ModelProfile { return r.catalog.List() }

// Ready reports whether the router can serve. It is constructed fully wired,
// so readiness only reflects that construction completed.
func (r *Router) Ready() bool { return r.cache != nil }

// Status builds the /status payload.
func (r *Router) Status() types.StatusResponse {
	now := r.now()
	return types.StatusResponse{
		Device: types.DeviceStatus{
			Resources:       r.res.Sample(),
			Online:          r.conn.Online(),
			ConnCheckedUnix: r.conn.LastChecked().Unix(),
		},
		Cache: r.cache.Stats(),
		Served: map[string]uint64{
			string(types.ModeCached):  r.servedCached.Load(),
			string(types.ModeOffline): r.servedOffline.Load(),
			string(types.ModeOnline):  r.servedOnline.Load(),
		},
		UptimeSeconds:  int64(now.Sub(r.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}
