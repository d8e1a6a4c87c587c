package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsMatchesByCode(t *testing.T) {
	wrapped := WrapError(ErrRateLimited, errors.New("quota spent"))

	if !errors.Is(wrapped, ErrRateLimited) {
		t.Error("wrapped error does not match its base by code")
	}
	if errors.Is(wrapped, ErrValidationFailed) {
		t.Error("wrapped error matches an unrelated code")
	}
}

func TestError_UnwrapReachesCause(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := WrapError(ErrUpstreamUnavailable, fmt.Errorf("calling provider: %w", cause))

	if !errors.Is(wrapped, cause) {
		t.Error("cause not reachable through Unwrap")
	}
}

func TestError_Message(t *testing.T) {
	plain := ErrSignalNotFound.Error()
	if plain != "[SIGNAL_NOT_FOUND] signal not found" {
		t.Errorf("Error() = %q", plain)
	}

	wrapped := WrapError(ErrSignalNotFound, errors.New("id abc")).Error()
	if wrapped != "[SIGNAL_NOT_FOUND] signal not found: id abc" {
		t.Errorf("Error() = %q", wrapped)
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	terminal := []Status{StatusExecuted, StatusRejected, StatusFailed}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = false", s)
		}
	}
	live := []Status{StatusPendingRisk, StatusAwaitingApproval, StatusApproved}
	for _, s := range live {
		if s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = true", s)
		}
	}
}

func TestParseDraft_Promote(t *testing.T) {
	price := 2450.0
	draft := ParseDraft{
		Instrument: "XAU/USD",
		Side:       SideBuy,
		Price:      &price,
		Confidence: 0.8,
		RawText:    "GOLD BUY @ 2450",
	}

	sig := draft.Promote(SourceChannel)
	if sig.Source != SourceChannel {
		t.Errorf("Source = %s", sig.Source)
	}
	if sig.Price != 2450 {
		t.Errorf("Price = %v", sig.Price)
	}
	if sig.StopLoss != 0 || sig.TakeProfit != 0 {
		t.Error("unset levels should promote to zero")
	}
	if sig.Metadata[MetaRawText] != "GOLD BUY @ 2450" {
		t.Errorf("raw text not retained: %q", sig.Metadata[MetaRawText])
	}
	if sig.ID != "" || sig.Status != "" {
		t.Error("promotion must not assign id or status")
	}
}
