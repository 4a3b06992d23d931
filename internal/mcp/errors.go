package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/cannonplot/internal/chart"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
)

// APIError represents an MCP tool error.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
	cause        error
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, cannon.ErrCannonNotFound):
		return &APIError{Code: "CANNON_NOT_FOUND", Message: "cannon not found", RecoveryHint: "Call list_cannons for valid ids", cause: err}
	case errors.Is(err, cannon.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), cause: err}
	case errors.Is(err, cannon.ErrDuplicateFilename):
		return &APIError{Code: "DUPLICATE_FILENAME", Message: "a cannon with this filename is already stored", cause: err}
	case errors.Is(err, chart.ErrInvalidRequest):
		return &APIError{Code: "INVALID_CHART_REQUEST", Message: err.Error(), RecoveryHint: "Check mode and preset names", cause: err}
	default:
		return nil
	}
}

func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
