package types

import "time"

// GenerateRequest represents a generation request payload.
type GenerateRequest struct {
	// Required prompt text to generate a completion for.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt"`
	// Optional model name. If empty, the router picks the best eligible
	// model from the catalog (or the configured default).
	// example: qwen2.5-1.5b-q4
	Model string `json:"model,omitempty"`
	// Capability the task needs, used when the model is auto-selected.
	// Defaults to "chat".
	// example: code
	Capability string `json:"capability,omitempty"`
	// Force local generation for this request only.
	Offline bool `json:"offline,omitempty"`
	// Prefer the smallest eligible model for this request only.
	Eco bool `json:"eco,omitempty"`
	// Generation parameters. Part of the cache fingerprint.
	Params GenParams `json:"params,omitempty"`
}

// GenerateResponse is returned for a served generation.
type GenerateResponse struct {
	// Generated text.
	Response string `json:"response"`
	// How the request was served: cached, offline or online.
	Mode Mode `json:"mode"`
	// Model that produced (or originally produced) the response.
	Model string `json:"model"`
	// Token accounting, when the backend reports it.
	Usage Usage `json:"usage,omitempty"`
	// When the underlying generation originally happened. For cache hits
	// this is the creation time of the cached entry.
	GeneratedAt time.Time `json:"generated_at"`
	// Cache hit count for this fingerprint, 0 on a fresh generation.
	Hits int64 `json:"hits,omitempty"`
	// Wall time spent serving this request, milliseconds.
	ElapsedMS int64 `json:"elapsed_ms"`
}

// ModelsResponse wraps the catalog list returned by GET /models.
type ModelsResponse struct {
	Models []ModelProfile `json:"models"`
}

// ErrorResponse is a consistent JSON error payload. Kinds and Backends tell
// the caller which failure taxonomy entries occurred and which backends were
// attempted, never a bare "something went wrong".
type ErrorResponse struct {
	// Error message.
	// example: no suitable model for capability "chat"
	Error string `json:"error"`
	// HTTP status code.
	// example: 422
	Code int `json:"code"`
	// Failure taxonomy kinds, e.g. ["generation_timeout","backend_unavailable"].
	Kinds []string `json:"kinds,omitempty"`
	// Backends attempted before the error, in order.
	Backends []string `json:"backends_attempted,omitempty"`
}

// CacheStats summarizes the response cache for /status.
type CacheStats struct {
	Entries     int    `json:"entries"`
	SizeBytes   int64  `json:"size_bytes"`
	MaxBytes    int64  `json:"max_bytes"`
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
}

// DeviceStatus is the device snapshot exposed by /status.
type DeviceStatus struct {
	Resources Resources `json:"resources"`
	Online    bool      `json:"online"`
	// When connectivity was last probed (unix seconds).
	ConnCheckedUnix int64 `json:"conn_checked_unix"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Device DeviceStatus `json:"device"`
	Cache  CacheStats   `json:"cache"`
	// Serve-mode counters since start.
	Served map[string]uint64 `json:"served"`
	// Uptime of the server in seconds.
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Server time in unix seconds.
	ServerTimeUnix int64 `json:"server_time_unix"`
}
