// Package validator gate-keeps signals before they enter the lifecycle
// or are forwarded to the advisory service.
package validator

import (
	"regexp"
	"strings"

	"github.com/nexustrader/nexus/internal/core"
	"go.uber.org/zap"
)

// Uppercase letters, digits, slash, hyphen, dot. Anything else in an
// instrument identifier is rejected.
var instrumentRe = regexp.MustCompile(`^[A-Z0-9/\-.]+$`)

// Outcome is the result of validating a signal. It is a pure value;
// the caller decides what to do with it.
type Outcome struct {
	Valid  bool   `json:"is_valid"`
	Reason string `json:"error,omitempty"`

	// Security marks a content-safety rejection so callers can audit it
	// separately from structural failures.
	Security bool `json:"-"`
}

func invalid(reason string) Outcome {
	return Outcome{Reason: reason}
}

// Validator runs structural, numeric and content-safety checks.
// Safe for concurrent use; its only side effect is a security log entry
// when the content-safety check rejects.
type Validator struct {
	logger *zap.Logger
}

// New creates a validator. A nil logger disables logging.
func New(logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{logger: logger}
}

// Validate checks a signal and reports failure instead of erroring.
func (v *Validator) Validate(sig *core.Signal) Outcome {
	if sig == nil {
		return invalid("signal object is missing")
	}

	if sig.Instrument == "" {
		return invalid("invalid instrument format")
	}
	if !instrumentRe.MatchString(sig.Instrument) {
		return invalid("malformatted instrument identifier")
	}

	if sig.Price < 0 || sig.StopLoss < 0 || sig.TakeProfit < 0 {
		return invalid("price values cannot be negative")
	}

	// Metadata is forwarded verbatim to the advisory model, so it is an
	// injection surface. The unsafe payload itself is never logged.
	if phrase := matchUnsafe(sig.Metadata); phrase != "" {
		v.logger.Warn("potential prompt injection detected",
			zap.String("signal_id", sig.ID),
		)
		out := invalid("security policy violation: unsafe content detected")
		out.Security = true
		return out
	}

	return Outcome{Valid: true}
}

// matchUnsafe scans keys and values directly rather than a JSON dump,
// which would escape characters like < and let "<script>" slip through.
func matchUnsafe(meta core.Metadata) string {
	if len(meta) == 0 {
		return ""
	}
	var b strings.Builder
	for k, v := range meta {
		b.WriteString(strings.ToLower(k))
		b.WriteByte('\n')
		b.WriteString(strings.ToLower(v))
		b.WriteByte('\n')
	}
	serialized := b.String()
	for _, phrase := range unsafePhrases {
		if strings.Contains(serialized, phrase) {
			return phrase
		}
	}
	return ""
}
