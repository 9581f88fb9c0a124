package builder

import "fmt"

// ValidationFailedError reports that a body or option violated a stated
// constraint. The caller can recover by correcting the input; the builder
// never retries.
type ValidationFailedError struct {
	Field  string
	Reason string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// SigningFailedError reports that the signer capability could not produce
// a signature. The cause is propagated verbatim; key-availability issues
// are rarely transient, so no retry is attempted.
type SigningFailedError struct {
	Cause error
}

func (e *SigningFailedError) Error() string {
	return fmt.Sprintf("signing failed: %v", e.Cause)
}

func (e *SigningFailedError) Unwrap() error {
	return e.Cause
}
