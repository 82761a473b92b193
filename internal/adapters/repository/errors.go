package repository

import "errors"

// Sentinel kinds for dataset loading errors.
var (
	ErrEmptyDataset  = errors.New("dataset has no header row")
	ErrMissingColumn = errors.New("dataset is missing a required column")
	ErrMalformedRow  = errors.New("malformed dataset row")
	ErrNoSource      = errors.New("no dataset source configured")
	ErrNotLoaded     = errors.New("dataset not loaded")
)
