package parser

import (
	"testing"

	"github.com/nexustrader/nexus/internal/core"
)

func fp(v float64) *float64 { return &v }

func TestScore_Weights(t *testing.T) {
	tests := []struct {
		name  string
		draft core.ParseDraft
		want  float64
	}{
		{"empty", core.ParseDraft{}, 0.00},
		{"instrument only", core.ParseDraft{Instrument: "XAU/USD"}, 0.40},
		{"side only", core.ParseDraft{Side: core.SideBuy}, 0.30},
		{"instrument and side", core.ParseDraft{Instrument: "XAU/USD", Side: core.SideBuy}, 0.70},
		{"price only", core.ParseDraft{Price: fp(2450)}, 0.10},
		{"levels only", core.ParseDraft{StopLoss: fp(2440), TakeProfit: fp(2470)}, 0.20},
		{"everything", core.ParseDraft{
			Instrument: "XAU/USD",
			Side:       core.SideSell,
			Price:      fp(2450),
			StopLoss:   fp(2460),
			TakeProfit: fp(2420),
		}, 1.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.draft); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_TwoDecimalRounding(t *testing.T) {
	// 0.4 + 0.3 + 0.1 accumulates float error; the score must still be
	// exactly 0.80.
	draft := core.ParseDraft{
		Instrument: "EUR/USD",
		Side:       core.SideBuy,
		Price:      fp(1.0950),
	}
	if got := Score(draft); got != 0.80 {
		t.Errorf("Score() = %v, want exactly 0.80", got)
	}
}
