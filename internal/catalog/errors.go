package catalog

import "errors"

// modelNotFoundError signals a model name absent from the catalog.
type modelNotFoundError struct{ name string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.name }

// ErrModelNotFound constructs an error for an unknown model name.
func ErrModelNotFound(name string) error { return modelNotFoundError{name: name} }

// IsModelNotFound reports whether the error indicates a missing model name.
func IsModelNotFound(err error) bool {
	var target modelNotFoundError
	return errors.As(err, &target)
}
