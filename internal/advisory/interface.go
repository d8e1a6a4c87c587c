// Package advisory defines the interface to the external narrative
// risk-assessment capability and the cancellable text stream its
// providers relay back.
package advisory

import (
	"context"
	"errors"
	"fmt"

	"github.com/nexustrader/nexus/internal/core"
)

// Analyzer submits a signal for narrative risk assessment and relays
// the streamed response. Implementations must never be handed a signal
// that failed validation or rate-limit admission; the pipeline enforces
// that before calling.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, sig core.Signal) (*Stream, error)
}

// SystemPrompt frames every advisory request.
const SystemPrompt = "You are a senior financial risk analyst for an algorithmic trading desk."

// Prompt renders the analysis request for a signal. Only validated
// fields are interpolated; free-form metadata is checked by the
// validator before a signal may reach an Analyzer.
func Prompt(sig core.Signal) string {
	return fmt.Sprintf(`Analyze the following trading signal and provide a concise risk assessment.

Signal Details:
- Instrument: %s
- Side: %s
- Entry Price: %g
- Stop Loss: %g
- Take Profit: %g
- Source: %s
- Confidence: %.1f%%

Tasks:
1. Calculate the Reward-to-Risk Ratio.
2. Identify potential macroeconomic catalysts (generic, based on instrument type).
3. Verdict: Is this a "High Risk", "Medium Risk", or "Low Risk" trade setup?

Format the output as a concise markdown summary. Do not include financial advice warnings, this is an internal system tool.`,
		sig.Instrument, sig.Side, sig.Price, sig.StopLoss, sig.TakeProfit,
		sig.Source, sig.Confidence*100)
}

// UpstreamError maps a provider failure to the typed advisory errors.
// A consumer-initiated cancellation is a clean teardown, not a failure.
func UpstreamError(err error) error {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return core.WrapError(core.ErrUpstreamTimeout, err)
	default:
		return core.WrapError(core.ErrUpstreamUnavailable, err)
	}
}
