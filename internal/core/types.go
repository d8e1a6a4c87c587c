package core

import "time"

// Source identifies where a signal originated.
type Source string

const (
	SourceModel   Source = "MODEL"
	SourceChannel Source = "CHANNEL_PARSER"
	SourceManual  Source = "MANUAL"
)

// Side represents the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Status represents the lifecycle state of a signal.
type Status string

const (
	StatusPendingRisk      Status = "PENDING_RISK"
	StatusAwaitingApproval Status = "AWAITING_APPROVAL"
	StatusApproved         Status = "APPROVED"
	StatusExecuted         Status = "EXECUTED"
	StatusRejected         Status = "REJECTED"
	StatusFailed           Status = "FAILED"
)

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusExecuted || s == StatusRejected || s == StatusFailed
}

// Metadata carries untrusted free-form context attached to a signal.
type Metadata map[string]string

// Well-known metadata keys.
const (
	MetaRawText      = "raw_text"
	MetaChannel      = "channel"
	MetaModelVersion = "model_version"
	MetaBacktestRef  = "backtest_ref"
)

// Signal is a structured trade opportunity with price levels, a
// confidence score and a lifecycle status. The id is assigned once at
// creation and the status field is mutated only by the lifecycle engine.
type Signal struct {
	ID                  string    `json:"id"`
	Timestamp           time.Time `json:"timestamp"`
	Source              Source    `json:"source"`
	Instrument          string    `json:"instrument"`
	Side                Side      `json:"side"`
	Price               float64   `json:"price"`
	StopLoss            float64   `json:"stop_loss"`
	TakeProfit          float64   `json:"take_profit"`
	Confidence          float64   `json:"confidence"`
	ExpectedReturn      float64   `json:"expected_return"`
	ExpectedMaxDrawdown float64   `json:"expected_max_drawdown"`
	Metadata            Metadata  `json:"metadata"`
	Status              Status    `json:"status"`
	Analysis            string    `json:"analysis,omitempty"`
}

// ParseDraft is a parser's best-effort extraction from one raw message.
// Every field is optional; a draft is never persisted, it only feeds the
// scorer and validator before being promoted to a Signal.
type ParseDraft struct {
	Instrument string   `json:"instrument,omitempty"`
	Side       Side     `json:"side,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	StopLoss   *float64 `json:"stop_loss,omitempty"`
	TakeProfit *float64 `json:"take_profit,omitempty"`
	Confidence float64  `json:"confidence"`
	RawText    string   `json:"raw_text"`
}

// Promote converts a draft into an unsaved Signal with the given source.
// Unset numeric fields become zero; the raw text is retained in metadata.
func (d ParseDraft) Promote(source Source) Signal {
	sig := Signal{
		Source:     source,
		Instrument: d.Instrument,
		Side:       d.Side,
		Confidence: d.Confidence,
		Metadata:   Metadata{MetaRawText: d.RawText},
	}
	if d.Price != nil {
		sig.Price = *d.Price
	}
	if d.StopLoss != nil {
		sig.StopLoss = *d.StopLoss
	}
	if d.TakeProfit != nil {
		sig.TakeProfit = *d.TakeProfit
	}
	return sig
}
