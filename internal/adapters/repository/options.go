// Package repository loads the launch dataset and serves it read-only.
package repository

import "io"

// Option applies a configuration option to the CSVStore.
type Option func(*CSVStore)

// WithPath reads the dataset from a CSV file.
func WithPath(path string) Option {
	return func(s *CSVStore) {
		if path != "" {
			s.path = path
		}
	}
}

// WithReader reads the dataset from r instead of a file. It takes
// precedence over WithPath.
func WithReader(r io.Reader) Option {
	return func(s *CSVStore) {
		if r != nil {
			s.reader = r
		}
	}
}
