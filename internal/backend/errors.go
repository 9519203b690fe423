package backend

import "errors"

// generationTimeoutError signals a backend call that exceeded its deadline.
type generationTimeoutError struct{ backend string }

func (e generationTimeoutError) Error() string {
	return "generation timeout on " + e.backend + " backend"
}

// ErrGenerationTimeout constructs a timeout error for the named backend.
func ErrGenerationTimeout(backend string) error {
	return generationTimeoutError{backend: backend}
}

// IsGenerationTimeout reports whether err indicates a deadline exceeded.
func IsGenerationTimeout(err error) bool {
	var target generationTimeoutError
	return errors.As(err, &target)
}

// unavailableError signals a network or process failure on a backend.
type unavailableError struct {
	backend string
	msg     string
}

func (e unavailableError) Error() string {
	return e.backend + " backend unavailable: " + e.msg
}

// ErrUnavailable constructs an unavailable error for the named backend.
func ErrUnavailable(backend, msg string) error {
	return unavailableError{backend: backend, msg: msg}
}

// IsUnavailable reports whether err indicates a backend failure that a
// fallback to the other backend may recover from.
func IsUnavailable(err error) bool {
	var target unavailableError
	return errors.As(err, &target)
}

// IsRetryable reports whether err is a backend failure eligible for the
// bounded one-hop fallback.
func IsRetryable(err error) bool {
	return IsGenerationTimeout(err) || IsUnavailable(err)
}
