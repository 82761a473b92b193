package config

import "errors"

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("config: invalid")
	// ErrLoadConfig wraps file, env and decode failures.
	ErrLoadConfig = errors.New("config: load failed")
)
