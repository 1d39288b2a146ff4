// Package server provides the HTTP API for the strategy engine.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/scintive/werkstudentjobs-sub002/internal/engine"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates a collaborator the endpoint needs is not configured or not reachable
type ErrUnavailable struct {
	Service string
	Cause   error
}

func (e *ErrUnavailable) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s unavailable: %v", e.Service, e.Cause)
	}
	return fmt.Sprintf("%s unavailable", e.Service)
}

func (e *ErrUnavailable) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation   *ErrValidation
		precondition *engine.PreconditionError
		unavailable  *ErrUnavailable
		tooLarge     *http.MaxBytesError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &precondition):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
