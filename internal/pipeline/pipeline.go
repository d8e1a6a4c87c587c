// Package pipeline is the public contract of the signal core: parse and
// score raw text, admit signals through validation and rate limiting,
// drive the lifecycle, and relay advisory analysis streams.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nexustrader/nexus/internal/advisory"
	"github.com/nexustrader/nexus/internal/audit"
	"github.com/nexustrader/nexus/internal/core"
	"github.com/nexustrader/nexus/internal/lifecycle"
	"github.com/nexustrader/nexus/internal/metrics"
	"github.com/nexustrader/nexus/internal/parser"
	"github.com/nexustrader/nexus/internal/ratelimit"
	"github.com/nexustrader/nexus/internal/validator"
	"go.uber.org/zap"
)

// Limiter scopes, used for metrics and logs.
const (
	scopeIngest   = "ingest"
	scopeAdvisory = "advisory"
)

// Pipeline ties the components together. All methods are safe for
// concurrent use.
type Pipeline struct {
	validator       *validator.Validator
	ingestLimiter   *ratelimit.Limiter
	advisoryLimiter *ratelimit.Limiter
	engine          *lifecycle.Engine
	logger          *zap.Logger

	analyzer advisory.Analyzer
	auditor  *audit.Recorder
	metrics  *metrics.Registry
}

// New creates a pipeline. The two limiters are independent: one guards
// ingestion/validation traffic, the other advisory analysis calls.
func New(engine *lifecycle.Engine, v *validator.Validator, ingestLimiter, advisoryLimiter *ratelimit.Limiter, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		validator:       v,
		ingestLimiter:   ingestLimiter,
		advisoryLimiter: advisoryLimiter,
		engine:          engine,
		logger:          logger,
	}
}

// SetAnalyzer wires the advisory backend. Without one, analysis
// requests fail with UPSTREAM_UNAVAILABLE.
func (p *Pipeline) SetAnalyzer(a advisory.Analyzer) { p.analyzer = a }

// SetAuditor wires the audit recorder.
func (p *Pipeline) SetAuditor(a *audit.Recorder) { p.auditor = a }

// SetMetrics wires the metrics registry.
func (p *Pipeline) SetMetrics(m *metrics.Registry) { p.metrics = m }

// Engine exposes the lifecycle engine for operator surfaces.
func (p *Pipeline) Engine() *lifecycle.Engine { return p.engine }

// ParseAndScore extracts a confidence-scored draft from raw text.
// Pure; parsing the same text twice yields identical drafts.
func (p *Pipeline) ParseAndScore(text string) core.ParseDraft {
	return parser.Parse(text)
}

// IngestDraft promotes a parsed draft and ingests it.
func (p *Pipeline) IngestDraft(ctx context.Context, draft core.ParseDraft, source core.Source, identity string) (*core.Signal, error) {
	return p.Ingest(ctx, draft.Promote(source), identity)
}

// Ingest admits a signal through the rate limiter and validator into
// the lifecycle. Rate-limit and validation failures are distinct error
// kinds so callers can show "slow down" vs "fix your input".
func (p *Pipeline) Ingest(ctx context.Context, sig core.Signal, identity string) (*core.Signal, error) {
	if !p.ingestLimiter.Admit(identity) {
		return nil, p.rateLimited(scopeIngest, identity)
	}
	return p.engine.Ingest(ctx, sig, identity)
}

// RequestAnalysis relays a streamed advisory assessment for a stored
// signal. The signal must pass admission and re-validation before
// anything is forwarded upstream. On clean completion the full text is
// attached to the signal; closing the stream cancels the upstream call.
func (p *Pipeline) RequestAnalysis(ctx context.Context, id, identity string) (*advisory.Stream, error) {
	if p.analyzer == nil {
		return nil, core.WrapError(core.ErrUpstreamUnavailable,
			errors.New("no advisory provider configured"))
	}
	if !p.advisoryLimiter.Admit(identity) {
		return nil, p.rateLimited(scopeAdvisory, identity)
	}

	sig, err := p.engine.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Never forward a signal that fails validation, even if it was
	// edited or stored before the denylist changed.
	if outcome := p.validator.Validate(sig); !outcome.Valid {
		if outcome.Security && p.auditor != nil {
			p.auditor.Record(ctx, audit.Entry{
				Actor:    identity,
				Action:   "content_safety_reject",
				Category: audit.CategorySecurity,
				Details:  fmt.Sprintf("analysis blocked for signal %s", sig.ID),
			})
		}
		return nil, core.WrapError(core.ErrValidationFailed, errors.New(outcome.Reason))
	}

	upstream, err := p.analyzer.Analyze(ctx, *sig)
	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordAnalysisStream("error", 0)
		}
		return nil, err
	}

	out, w := advisory.NewStream(upstream.Close)
	go p.relay(sig.ID, upstream, w)
	return out, nil
}

// relay forwards chunks from the provider to the caller, accumulating
// the full text so it can be attached once the stream ends cleanly.
func (p *Pipeline) relay(signalID string, upstream *advisory.Stream, w *advisory.StreamWriter) {
	var full strings.Builder
	start := time.Now()

	for {
		chunk, err := upstream.Recv()
		if errors.Is(err, io.EOF) {
			p.finishAnalysis(signalID, full.String())
			if p.metrics != nil {
				p.metrics.RecordAnalysisStream("complete", time.Since(start).Seconds())
			}
			w.End(nil)
			return
		}
		if err != nil {
			p.logger.Warn("advisory stream failed",
				zap.String("signal_id", signalID),
				zap.Error(err),
			)
			if p.metrics != nil {
				p.metrics.RecordAnalysisStream("error", time.Since(start).Seconds())
			}
			w.End(err)
			return
		}
		if !w.Write(chunk) {
			// Caller went away; tear down the upstream connection and
			// keep whatever was already delivered.
			upstream.Close()
			if p.metrics != nil {
				p.metrics.RecordAnalysisStream("cancelled", time.Since(start).Seconds())
			}
			w.End(nil)
			return
		}
		full.WriteString(chunk)
	}
}

func (p *Pipeline) finishAnalysis(signalID, analysis string) {
	if analysis == "" {
		return
	}
	// Detached context: the caller's request may already be gone.
	if _, err := p.engine.AttachAnalysis(context.Background(), signalID, analysis); err != nil {
		p.logger.Warn("failed to attach analysis",
			zap.String("signal_id", signalID),
			zap.Error(err),
		)
	}
}

func (p *Pipeline) rateLimited(scope, identity string) error {
	p.logger.Warn("rate limit exceeded",
		zap.String("scope", scope),
		zap.String("identity", identity),
	)
	if p.metrics != nil {
		p.metrics.RecordRateLimitRejection(scope)
	}
	return core.WrapError(core.ErrRateLimited,
		fmt.Errorf("%s quota exhausted, retry after the window elapses", scope))
}
