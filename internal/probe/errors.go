package probe

import "errors"

// Sentinel errors returned by Run.
var (
	ErrUnhealthy         = errors.New("probe: service unhealthy")
	ErrPropertyViolation = errors.New("probe: property violated")
)
