package engine

import "fmt"

// PreconditionError is returned when the request itself is unusable.
// It is the only error Analyze returns.
type PreconditionError struct {
	Message string
	Cause   error
}

func (e *PreconditionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("precondition failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("precondition failed: %s", e.Message)
}

func (e *PreconditionError) Unwrap() error {
	return e.Cause
}

// Kind classifies a failure the engine absorbed instead of returning
type Kind string

// Degradation kinds
const (
	KindUpstreamGeneration  Kind = "UpstreamGenerationFailure"
	KindMalformedOutput     Kind = "MalformedOutput"
	KindLinkUnreachable     Kind = "LinkUnreachable"
	KindVerificationOffline Kind = "VerificationServiceUnavailable"
	KindCacheUnavailable    Kind = "CacheUnavailable"
)

// Degradation is one absorbed failure, reported through the logger, the
// metrics and the optional progress callback
type Degradation struct {
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail,omitempty"`
}
