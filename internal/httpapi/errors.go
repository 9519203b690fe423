package httpapi

import (
	"encoding/json"
	"net/http"

	"hybridd/internal/backend"
	"hybridd/internal/catalog"
	"hybridd/internal/router"
	"hybridd/internal/selector"

	"hybridd/pkg/types"
)

// writeJSONError writes the consistent JSON error payload, including the
// failure taxonomy kinds and the backends attempted.
func writeJSONError(w http.ResponseWriter, status int, msg string, kinds, backends []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{
		Error:    msg,
		Code:     status,
		Kinds:    kinds,
		Backends: backends,
	})
}

// mapError translates router errors to HTTP status codes plus the taxonomy
// metadata surfaced to the caller.
func mapError(err error) (status int, kinds, backends []string) {
	kinds = router.ErrorKinds(err)
	backends = router.AttemptsOf(err)
	switch {
	case catalog.IsModelNotFound(err):
		return http.StatusNotFound, kinds, backends
	case selector.IsNoSuitableModel(err):
		return http.StatusUnprocessableEntity, kinds, backends
	case router.IsAllBackendsFailed(err):
		// Pure timeout failures map to 504, anything else to 502.
		allTimeout := len(kinds) > 0
		for _, k := range kinds {
			if k != "generation_timeout" {
				allTimeout = false
			}
		}
		if allTimeout {
			return http.StatusGatewayTimeout, kinds, backends
		}
		return http.StatusBadGateway, kinds, backends
	case backend.IsGenerationTimeout(err):
		return http.StatusGatewayTimeout, kinds, backends
	case backend.IsUnavailable(err):
		return http.StatusBadGateway, kinds, backends
	}
	return http.StatusInternalServerError, kinds, backends
}
