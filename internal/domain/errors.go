package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInsufficientStops = errors.New("not enough geocoded addresses for a route")
	ErrNoRoute           = errors.New("optimizer returned no routes")
	ErrNotFound          = errors.New("no saved route")
	ErrInvalidZone       = errors.New("invalid zone id")
	ErrInvalidProfile    = errors.New("invalid profile")
	ErrZoneBusy          = errors.New("route generation already running for zone")
)

// OptimizationError reports a failed optimization call.
// StatusCode is zero when the request never produced an HTTP response.
type OptimizationError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *OptimizationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("optimization failed: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("optimization failed: %v", e.Err)
}

func (e *OptimizationError) Unwrap() error { return e.Err }

// DirectionsError reports a failed directions call or an unusable response.
type DirectionsError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *DirectionsError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("directions failed: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("directions failed: %v", e.Err)
}

func (e *DirectionsError) Unwrap() error { return e.Err }

// RouteIntegrityError is returned when the optimizer result does not visit every
// submitted job exactly once.
type RouteIntegrityError struct {
	Missing   []int
	Unknown   []int
	Duplicate []int
}

func (e *RouteIntegrityError) Error() string {
	parts := make([]string, 0, 3)
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing jobs %v", e.Missing))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("unknown jobs %v", e.Unknown))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate jobs %v", e.Duplicate))
	}
	return "optimizer result integrity: " + strings.Join(parts, ", ")
}

// CorruptRecordError is returned when a saved route cannot be decoded.
type CorruptRecordError struct {
	Path string
	Err  error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt route record %q: %v", e.Path, e.Err)
}

func (e *CorruptRecordError) Unwrap() error { return e.Err }
