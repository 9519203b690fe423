// Package httpapi exposes the router over HTTP: generation, catalog listing,
// status and metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"hybridd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error)
	Models() []types.ModelProfile
	Status() types.StatusResponse
	Ready() bool
}

// Options configures the HTTP layer. Zero values get sane defaults.
type Options struct {
	Logger zerolog.Logger
	// Maximum request body size for JSON endpoints. Default 1 MiB.
	MaxBodyBytes int64
	// Base context canceled on shutdown; joined with each request context so
	// in-flight generations stop with the server.
	BaseContext context.Context

	CORSEnabled        bool
	CORSAllowedOrigins []string
}

// NewMux builds the HTTP handler.
func NewMux(svc Service, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.BaseContext == nil {
		opts.BaseContext = context.Background()
	}
	log := opts.Logger

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if opts.CORSEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}

	r.Get("/models", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: svc.Models()})
	})

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if !svc.Ready() {
			writeJSONError(w, http.StatusServiceUnavailable, "not ready", nil, nil)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Post("/generate", func(w http.ResponseWriter, req *http.Request) {
		ct := req.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil, nil)
			return
		}
		req.Body = http.MaxBytesReader(w, req.Body, opts.MaxBodyBytes)
		var greq types.GenerateRequest
		if err := json.NewDecoder(req.Body).Decode(&greq); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body", nil, nil)
			return
		}
		if strings.TrimSpace(greq.Prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required", nil, nil)
			return
		}

		start := time.Now()
		joined, cancel := joinContexts(opts.BaseContext, req.Context())
		defer cancel()
		resp, err := svc.Generate(joined, greq)
		if err != nil {
			// Client disconnect or shutdown: nothing useful to write.
			if req.Context().Err() != nil || opts.BaseContext.Err() != nil {
				return
			}
			status, kinds, backends := mapError(err)
			log.Warn().
				Err(err).
				Int("status", status).
				Str("request_id", middleware.GetReqID(req.Context())).
				Msg("generate failed")
			writeJSONError(w, status, err.Error(), kinds, backends)
			return
		}
		log.Info().
			Str("mode", string(resp.Mode)).
			Str("model", resp.Model).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(req.Context())).
			Msg("generate served")
		writeJSON(w, http.StatusOK, resp)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
