// Package audit keeps a trail of security- and risk-relevant events:
// content-safety rejections, operator decisions and execution outcomes.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nexustrader/nexus/internal/storage/archive"
	"go.uber.org/zap"
)

// Category classifies an audit entry.
type Category string

const (
	CategorySecurity Category = "SECURITY"
	CategoryRisk     Category = "RISK"
	CategorySystem   Category = "SYSTEM"
)

// Entry is one audit record. Details never contain raw untrusted
// payloads, only identifiers and reasons.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Category  Category  `json:"category"`
	Details   string    `json:"details,omitempty"`
}

// Recorder collects audit entries in a bounded in-memory ring and
// optionally archives each entry to a storage backend.
type Recorder struct {
	mu      sync.RWMutex
	entries []Entry
	maxSize int

	store  archive.Storage
	logger *zap.Logger
}

// NewRecorder creates a recorder keeping at most maxSize entries in
// memory. store may be nil to disable archival.
func NewRecorder(maxSize int, store archive.Storage, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		entries: make([]Entry, 0, maxSize),
		maxSize: maxSize,
		store:   store,
		logger:  logger,
	}
}

// Record stamps and stores an entry. Archival failures are logged, not
// propagated: the audit trail must never fail the operation it records.
func (r *Recorder) Record(ctx context.Context, e Entry) Entry {
	e.ID = uuid.NewString()
	e.Timestamp = time.Now().UTC()

	r.mu.Lock()
	r.entries = append(r.entries, e)
	if r.maxSize > 0 && len(r.entries) > r.maxSize {
		r.entries = r.entries[len(r.entries)-r.maxSize:]
	}
	r.mu.Unlock()

	r.logger.Info("audit event",
		zap.String("action", e.Action),
		zap.String("category", string(e.Category)),
		zap.String("actor", e.Actor),
	)

	if r.store != nil {
		if err := r.archiveEntry(ctx, e); err != nil {
			r.logger.Error("failed to archive audit entry",
				zap.String("entry_id", e.ID),
				zap.Error(err),
			)
		}
	}

	return e
}

func (r *Recorder) archiveEntry(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	path := "audit/" + e.Timestamp.Format("2006/01/02") + "/" + e.ID + ".json"
	return r.store.Write(ctx, path, data)
}

// Entries returns a snapshot of the in-memory trail, oldest first.
func (r *Recorder) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
