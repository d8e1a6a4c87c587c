// Package lifecycle owns the signal state machine. The engine is the
// single writer of a signal's status; everything else reads copies.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nexustrader/nexus/internal/audit"
	"github.com/nexustrader/nexus/internal/core"
	"github.com/nexustrader/nexus/internal/metrics"
	"github.com/nexustrader/nexus/internal/notifier"
	"github.com/nexustrader/nexus/internal/storage/signal"
	"github.com/nexustrader/nexus/internal/validator"
	"go.uber.org/zap"
)

// Event names a lifecycle transition trigger.
type Event string

const (
	EventRiskClear  Event = "risk_gate_clear"
	EventRiskFail   Event = "risk_gate_fail"
	EventApprove    Event = "approve"
	EventReject     Event = "reject"
	EventBrokerAck  Event = "broker_ack"
	EventBrokerNack Event = "broker_nack"
)

// transitions is the complete edge table. Any (state, event) pair not
// listed here is an invalid transition; terminal states have no edges.
var transitions = map[core.Status]map[Event]core.Status{
	core.StatusPendingRisk: {
		EventRiskClear: core.StatusAwaitingApproval,
		EventRiskFail:  core.StatusRejected,
	},
	core.StatusAwaitingApproval: {
		EventApprove: core.StatusApproved,
		EventReject:  core.StatusRejected,
	},
	core.StatusApproved: {
		EventBrokerAck:  core.StatusExecuted,
		EventBrokerNack: core.StatusFailed,
	},
}

// DefaultRiskThreshold is the confidence below which a fresh signal
// must pass the risk gate before reaching operator approval.
const DefaultRiskThreshold = 0.70

// Engine applies lifecycle transitions. Transitions on one signal id
// are serialized by a per-id mutex; different ids proceed concurrently.
type Engine struct {
	store     signal.Store
	validator *validator.Validator
	threshold float64
	logger    *zap.Logger

	notifiers *notifier.Registry
	auditor   *audit.Recorder
	metrics   *metrics.Registry

	locks sync.Map // signal id -> *sync.Mutex
}

// NewEngine creates an engine with the given risk-gate threshold.
func NewEngine(store signal.Store, v *validator.Validator, threshold float64, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = DefaultRiskThreshold
	}
	return &Engine{
		store:     store,
		validator: v,
		threshold: threshold,
		logger:    logger,
	}
}

// SetNotifiers wires a notifier registry for terminal transitions.
func (e *Engine) SetNotifiers(r *notifier.Registry) { e.notifiers = r }

// SetAuditor wires the audit recorder.
func (e *Engine) SetAuditor(a *audit.Recorder) { e.auditor = a }

// SetMetrics wires the metrics registry.
func (e *Engine) SetMetrics(m *metrics.Registry) { e.metrics = m }

// Ingest validates a signal and admits it into the lifecycle. Invalid
// signals are rejected before they receive an id. The initial state is
// AWAITING_APPROVAL when confidence clears the risk threshold,
// PENDING_RISK otherwise.
func (e *Engine) Ingest(ctx context.Context, sig core.Signal, actor string) (*core.Signal, error) {
	outcome := e.validator.Validate(&sig)
	if !outcome.Valid {
		if e.metrics != nil {
			kind := "structural"
			if outcome.Security {
				kind = "security"
			}
			e.metrics.RecordValidationFailure(kind)
		}
		if outcome.Security && e.auditor != nil {
			e.auditor.Record(ctx, audit.Entry{
				Actor:    actor,
				Action:   "content_safety_reject",
				Category: audit.CategorySecurity,
				Details:  "signal rejected by content-safety filter at ingest",
			})
		}
		return nil, core.WrapError(core.ErrValidationFailed, errors.New(outcome.Reason))
	}

	if sig.Confidence >= e.threshold {
		sig.Status = core.StatusAwaitingApproval
	} else {
		sig.Status = core.StatusPendingRisk
	}

	if err := e.store.Save(ctx, &sig); err != nil {
		return nil, err
	}

	e.logger.Info("signal ingested",
		zap.String("signal_id", sig.ID),
		zap.String("instrument", sig.Instrument),
		zap.String("source", string(sig.Source)),
		zap.Float64("confidence", sig.Confidence),
		zap.String("status", string(sig.Status)),
	)
	if e.metrics != nil {
		e.metrics.RecordIngest(string(sig.Source), string(sig.Status))
	}

	return &sig, nil
}

// Get returns a copy of a signal.
func (e *Engine) Get(ctx context.Context, id string) (*core.Signal, error) {
	return e.store.GetByID(ctx, id)
}

// List returns signals matching the filter, newest first.
func (e *Engine) List(ctx context.Context, filter signal.ListFilter) ([]core.Signal, error) {
	return e.store.List(ctx, filter)
}

// Count returns the number of signals matching the filter.
func (e *Engine) Count(ctx context.Context, filter signal.ListFilter) (int, error) {
	return e.store.Count(ctx, filter)
}

// RunRiskGate re-validates a pending signal and either clears it to
// operator approval or rejects it.
func (e *Engine) RunRiskGate(ctx context.Context, id string) (*core.Signal, error) {
	sig, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	event := EventRiskClear
	if outcome := e.validator.Validate(sig); !outcome.Valid {
		event = EventRiskFail
	}
	return e.apply(ctx, id, event, "risk-gate")
}

// FailRiskGate rejects a pending signal, e.g. on gate timeout.
func (e *Engine) FailRiskGate(ctx context.Context, id string) (*core.Signal, error) {
	return e.apply(ctx, id, EventRiskFail, "risk-gate")
}

// Approve moves an awaiting signal to APPROVED.
func (e *Engine) Approve(ctx context.Context, id, operator string) (*core.Signal, error) {
	return e.apply(ctx, id, EventApprove, operator)
}

// Reject moves an awaiting signal to the terminal REJECTED state.
func (e *Engine) Reject(ctx context.Context, id, operator string) (*core.Signal, error) {
	return e.apply(ctx, id, EventReject, operator)
}

// MarkExecuted records a broker fill confirmation.
func (e *Engine) MarkExecuted(ctx context.Context, id string) (*core.Signal, error) {
	return e.apply(ctx, id, EventBrokerAck, "execution-backend")
}

// MarkFailed records a broker execution error.
func (e *Engine) MarkFailed(ctx context.Context, id string) (*core.Signal, error) {
	return e.apply(ctx, id, EventBrokerNack, "execution-backend")
}

// AttachAnalysis stores the advisory narrative on a non-terminal signal.
func (e *Engine) AttachAnalysis(ctx context.Context, id, analysis string) (*core.Signal, error) {
	mu := e.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	sig, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sig.Status.IsTerminal() {
		return nil, core.WrapError(core.ErrInvalidTransition,
			fmt.Errorf("signal %s is terminal (%s)", id, sig.Status))
	}
	return e.store.Update(ctx, id, func(s *core.Signal) {
		s.Analysis = analysis
	})
}

func (e *Engine) apply(ctx context.Context, id string, event Event, actor string) (*core.Signal, error) {
	mu := e.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	sig, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := transitions[sig.Status][event]
	if !ok {
		return nil, core.WrapError(core.ErrInvalidTransition,
			fmt.Errorf("event %s not permitted from %s", event, sig.Status))
	}

	from := sig.Status
	updated, err := e.store.Update(ctx, id, func(s *core.Signal) {
		s.Status = next
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("lifecycle transition",
		zap.String("signal_id", id),
		zap.String("event", string(event)),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
		zap.String("actor", actor),
	)
	if e.metrics != nil {
		e.metrics.RecordTransition(string(from), string(next))
	}

	e.recordDecision(ctx, updated, event, actor)

	if next.IsTerminal() && e.notifiers != nil {
		ev := notifier.Event{Signal: *updated, Status: next, OccurredAt: time.Now().UTC()}
		go func() {
			for name, err := range e.notifiers.NotifyAll(ev) {
				e.logger.Error("notifier failed",
					zap.String("notifier", name),
					zap.Error(err),
				)
			}
		}()
	}

	return updated, nil
}

func (e *Engine) recordDecision(ctx context.Context, sig *core.Signal, event Event, actor string) {
	if e.auditor == nil {
		return
	}
	category := audit.CategorySystem
	switch event {
	case EventApprove, EventReject, EventRiskClear, EventRiskFail:
		category = audit.CategoryRisk
	}
	e.auditor.Record(ctx, audit.Entry{
		Actor:    actor,
		Action:   string(event),
		Category: category,
		Details:  fmt.Sprintf("signal %s -> %s", sig.ID, sig.Status),
	})
}

func (e *Engine) lockFor(id string) *sync.Mutex {
	v, _ := e.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}
