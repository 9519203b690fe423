package selector

import "errors"

// noSuitableModelError signals that no catalog profile fits the task and the
// current device constraints.
type noSuitableModelError struct{ capability string }

func (e noSuitableModelError) Error() string {
	return "no suitable model for capability \"" + e.capability + "\""
}

// ErrNoSuitableModel constructs the error for a capability with no fit.
func ErrNoSuitableModel(capability string) error {
	return noSuitableModelError{capability: capability}
}

// IsNoSuitableModel reports whether err indicates an empty eligible set.
func IsNoSuitableModel(err error) bool {
	var target noSuitableModelError
	return errors.As(err, &target)
}
