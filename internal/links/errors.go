package links

import "fmt"

// VerifyError means the batch reachability check could not run at all.
// Individual unreachable links are not errors.
type VerifyError struct {
	Message string
	Cause   error
}

func (e *VerifyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link verification failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("link verification failed: %s", e.Message)
}

func (e *VerifyError) Unwrap() error {
	return e.Cause
}

// KeywordError is a failed keyword phrase request.
type KeywordError struct {
	Message string
	Cause   error
}

func (e *KeywordError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("keyword generation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("keyword generation failed: %s", e.Message)
}

func (e *KeywordError) Unwrap() error {
	return e.Cause
}
