package router

import (
	"errors"
	"strings"

	"hybridd/internal/backend"
	"hybridd/internal/catalog"
	"hybridd/internal/selector"
)

// Attempt records one failed backend call for error reporting.
type Attempt struct {
	Backend string
	Err     error
}

// exhaustedError aggregates the failures of every attempted backend so the
// caller sees a single error naming all causes.
type exhaustedError struct{ attempts []Attempt }

func (e exhaustedError) Error() string {
	parts := make([]string, 0, len(e.attempts))
	for _, a := range e.attempts {
		parts = append(parts, a.Backend+": "+a.Err.Error())
	}
	return "all backends failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the underlying causes to errors.Is/As.
func (e exhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.attempts))
	for _, a := range e.attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// ErrAllBackendsFailed constructs the aggregate error.
func ErrAllBackendsFailed(attempts []Attempt) error {
	return exhaustedError{attempts: attempts}
}

// IsAllBackendsFailed reports whether err is the aggregate failure.
func IsAllBackendsFailed(err error) bool {
	var target exhaustedError
	return errors.As(err, &target)
}

// AttemptsOf returns the backends attempted before err, in order. Empty when
// err is not an aggregate failure.
func AttemptsOf(err error) []string {
	var target exhaustedError
	if !errors.As(err, &target) {
		return nil
	}
	out := make([]string, 0, len(target.attempts))
	for _, a := range target.attempts {
		out = append(out, a.Backend)
	}
	return out
}

// ErrorKinds maps err onto the failure taxonomy names exposed to callers.
func ErrorKinds(err error) []string {
	var kinds []string
	add := func(k string) {
		for _, have := range kinds {
			if have == k {
				return
			}
		}
		kinds = append(kinds, k)
	}
	var target exhaustedError
	if errors.As(err, &target) {
		for _, a := range target.attempts {
			for _, k := range ErrorKinds(a.Err) {
				add(k)
			}
		}
		return kinds
	}
	switch {
	case catalog.IsModelNotFound(err):
		add("model_not_found")
	case selector.IsNoSuitableModel(err):
		add("no_suitable_model")
	case backend.IsGenerationTimeout(err):
		add("generation_timeout")
	case backend.IsUnavailable(err):
		add("backend_unavailable")
	}
	return kinds
}
