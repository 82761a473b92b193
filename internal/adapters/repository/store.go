// Package repository loads the launch dataset and serves it read-only.
package repository

import (
	"context"

	"github.com/okian/launchdash/internal/domain/model"
)

// Store provides read access to the launch dataset.
type Store interface {
	// Dataset returns the loaded dataset, or ErrNotLoaded.
	Dataset(ctx context.Context) (*model.Dataset, error)

	// Count returns the number of loaded launches, 0 before loading.
	Count(ctx context.Context) int
}
