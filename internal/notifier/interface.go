package notifier

import (
	"time"

	"github.com/nexustrader/nexus/internal/core"
)

// Config holds notifier configuration
type Config struct {
	Type   string         `mapstructure:"type"`
	Params map[string]any `mapstructure:"params"`
}

// Event describes a signal reaching a terminal lifecycle state.
type Event struct {
	Signal     core.Signal `json:"signal"`
	Status     core.Status `json:"status"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Notifier defines the interface for lifecycle event notification
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Init initializes the notifier with configuration
	Init(cfg Config) error

	// Send delivers a single lifecycle event
	Send(ev Event) error
}
