package steem

import "fmt"

// SigningError reports a structurally invalid posting key or a failed
// signing attempt. It is raised before any network call is made.
type SigningError struct {
	Reason string
	Err    error
}

func (e *SigningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("signing failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("signing failed: %s", e.Reason)
}

func (e *SigningError) Unwrap() error { return e.Err }

// BuildError reports that a transaction could not be assembled, typically
// because the chain reference data is missing or malformed.
type BuildError struct {
	Reason string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("cannot build transaction: %s", e.Reason)
}

// SerializationError reports a value that cannot be encoded within the
// chain's size limits.
type SerializationError struct {
	Field string
	Size  int
	Limit int
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s serializes to %d bytes, chain limit is %d", e.Field, e.Size, e.Limit)
}
