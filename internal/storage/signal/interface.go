// Package signal provides persistence for trade signals.
package signal

import (
	"context"
	"time"

	"github.com/nexustrader/nexus/internal/core"
)

// Store defines the interface for signal persistence. Status mutation
// goes through Update and is reserved for the lifecycle engine.
type Store interface {
	// Save persists a new signal, assigning its id and timestamp.
	Save(ctx context.Context, sig *core.Signal) error

	// GetByID retrieves a copy of a signal by its id.
	GetByID(ctx context.Context, id string) (*core.Signal, error)

	// Update applies fn to the stored signal and returns the result.
	Update(ctx context.Context, id string, fn func(*core.Signal)) (*core.Signal, error)

	// List retrieves signals matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]core.Signal, error)

	// Count returns the number of signals matching the filter.
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter defines criteria for listing signals.
type ListFilter struct {
	Instrument string
	Source     core.Source
	Status     core.Status
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}
