package recovery

import (
	"errors"
	"fmt"
)

// ErrEmptyOutput marks a completion that was empty or missing entirely
var ErrEmptyOutput = errors.New("model output is empty")

// errNotTruncated is returned by the truncation tier for text that ends in a closing brace
var errNotTruncated = errors.New("text ends with a closing brace")

// TierError records why one cascade tier could not produce an analysis
type TierError struct {
	Tier  Tier
	Cause error
}

func (e *TierError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("recovery tier %s failed: %v", e.Tier, e.Cause)
	}
	return fmt.Sprintf("recovery tier %s failed", e.Tier)
}

func (e *TierError) Unwrap() error {
	return e.Cause
}
