package parser

import (
	"math"

	"github.com/nexustrader/nexus/internal/core"
)

// Completeness weights. They sum to 1.0, so the score is capped by
// construction.
const (
	weightInstrument = 0.4
	weightSide       = 0.3
	weightPrice      = 0.1
	weightStopLoss   = 0.1
	weightTakeProfit = 0.1
)

// Score maps field completeness of a draft to a confidence in [0,1],
// rounded to two decimals. Pure function.
func Score(d core.ParseDraft) float64 {
	score := 0.0
	if d.Instrument != "" {
		score += weightInstrument
	}
	if d.Side != "" {
		score += weightSide
	}
	if d.Price != nil {
		score += weightPrice
	}
	if d.StopLoss != nil {
		score += weightStopLoss
	}
	if d.TakeProfit != nil {
		score += weightTakeProfit
	}
	return math.Round(score*100) / 100
}
