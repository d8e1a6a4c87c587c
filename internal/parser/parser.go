// Package parser extracts trade signal drafts from free-form channel
// messages. Extraction is best effort: malformed input never errors, it
// just produces an emptier draft with a lower confidence score.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nexustrader/nexus/internal/core"
)

var (
	sideBuyRe  = regexp.MustCompile(`\bBUY\b|\bLONG\b`)
	sideSellRe = regexp.MustCompile(`\bSELL\b|\bSHORT\b`)

	// Fallback for instruments not in the alias table: a 3/3 currency
	// pair with or without the separator.
	pairRe = regexp.MustCompile(`\b[A-Z]{3}/?[A-Z]{3}\b`)

	stopLossRe   = regexp.MustCompile(`(?i)(?:SL|STOPLOSS|STOP LOSS|STOP)[\s:=@]*([\d.,]+)`)
	takeProfitRe = regexp.MustCompile(`(?i)(?:TP|TAKEPROFIT|TAKE PROFIT|TARGET)[\s:=@]*([\d.,]+)`)
	entryRe      = regexp.MustCompile(`(?i)(?:@|AT|ENTRY|PRICE|OPEN)[\s:=@]*([\d.,]+)`)

	numberRe = regexp.MustCompile(`[\d.,]+`)
)

// Parse extracts a draft from one raw message. It is pure and total:
// the same text always yields the same draft and no input panics or
// errors. The original text is retained verbatim on the draft.
func Parse(text string) core.ParseDraft {
	draft := core.ParseDraft{RawText: text}

	// Strip emphasis markers so "**SL** 2440" matches like "SL 2440".
	clean := strings.TrimSpace(strings.ReplaceAll(text, "*", ""))
	if clean == "" {
		return draft
	}
	upper := strings.ToUpper(clean)

	if sideBuyRe.MatchString(upper) {
		draft.Side = core.SideBuy
	} else if sideSellRe.MatchString(upper) {
		draft.Side = core.SideSell
	}

	draft.Instrument = detectInstrument(upper)

	draft.StopLoss = extractValue(stopLossRe, clean)
	draft.TakeProfit = extractValue(takeProfitRe, clean)
	draft.Price = extractValue(entryRe, clean)

	// No explicit entry anchor. If we at least know the direction, take
	// the first number that is not the stop or the target. This can
	// misfire on messages carrying unrelated numbers; that is an
	// accepted limitation of channel parsing.
	if draft.Price == nil && draft.Side != "" {
		draft.Price = inferEntryPrice(clean, draft.StopLoss, draft.TakeProfit)
	}

	draft.Confidence = Score(draft)
	return draft
}

func detectInstrument(upper string) string {
	for _, a := range instrumentAliases {
		if a.re.MatchString(upper) {
			return a.instrument
		}
	}
	for _, pair := range pairRe.FindAllString(upper, -1) {
		base, quote, ok := strings.Cut(pair, "/")
		if !ok {
			base, quote = pair[:3], pair[3:]
		}
		if currencyCodes[base] && currencyCodes[quote] {
			return base + "/" + quote
		}
	}
	return ""
}

// extractValue pulls the first number anchored by one of the pattern's
// keywords. Thousands separators are tolerated and stripped.
func extractValue(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}

func inferEntryPrice(text string, stopLoss, takeProfit *float64) *float64 {
	for _, tok := range numberRe.FindAllString(text, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", ""), 64)
		if err != nil {
			continue
		}
		if stopLoss != nil && v == *stopLoss {
			continue
		}
		if takeProfit != nil && v == *takeProfit {
			continue
		}
		return &v
	}
	return nil
}
