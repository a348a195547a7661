package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrComputeTimeout indicates the simulation pool did not finish within its
// wall-clock budget. The run is side-effect-free, so callers may retry.
var ErrComputeTimeout = errors.New("simulation exceeded compute budget")

// ErrCacheInconsistency indicates a cached result's stored hash no longer
// matches the inputs it was fetched for. Treated as a cache miss upstream.
var ErrCacheInconsistency = errors.New("cached result does not match input hash")

// IncompleteInputError reports required retirement-planning fields that are
// missing from a household profile. The builder never defaults these; the
// caller is expected to ask the household to complete them.
type IncompleteInputError struct {
	MissingFields []string
}

func (e *IncompleteInputError) Error() string {
	return fmt.Sprintf("profile is missing required fields: %s", strings.Join(e.MissingFields, ", "))
}

// InvalidParameterError reports a parameter that is out of range or otherwise
// unusable. Rejected before any simulation work begins.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

// IsRetryable reports whether the caller can reasonably retry the same
// request without changing its inputs.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrComputeTimeout)
}
