package strategycache

import "fmt"

// StoreError represents a failed read or write against a cache backend.
// Callers treat it as a miss or a no-op.
type StoreError struct {
	Backend string
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s cache: %s: %v", e.Backend, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s cache: %s", e.Backend, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}
