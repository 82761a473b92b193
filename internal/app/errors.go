package service

import "errors"

var (
	// ErrNotStarted is returned by every operation before Start succeeds.
	ErrNotStarted = errors.New("service not started")
	// ErrRender wraps chart drawing failures.
	ErrRender = errors.New("render chart")
)
