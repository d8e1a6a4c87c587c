package parser

import (
	"reflect"
	"testing"

	"github.com/nexustrader/nexus/internal/core"
)

func checkValue(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s = nil, want %v", name, want)
	}
	if *got != want {
		t.Errorf("%s = %v, want %v", name, *got, want)
	}
}

func TestParse_FullSignal(t *testing.T) {
	draft := Parse("GOLD BUY NOW @ 2450 SL 2440 TP 2470")

	if draft.Instrument != "XAU/USD" {
		t.Errorf("Instrument = %q, want XAU/USD", draft.Instrument)
	}
	if draft.Side != core.SideBuy {
		t.Errorf("Side = %q, want BUY", draft.Side)
	}
	checkValue(t, "Price", draft.Price, 2450)
	checkValue(t, "StopLoss", draft.StopLoss, 2440)
	checkValue(t, "TakeProfit", draft.TakeProfit, 2470)
	if draft.Confidence != 1.00 {
		t.Errorf("Confidence = %v, want 1.00", draft.Confidence)
	}
}

func TestParse_CurrencyPair(t *testing.T) {
	draft := Parse("SELL EURUSD NOW @ 1.0950 SL 1.0980 TP 1.0900")

	if draft.Instrument != "EUR/USD" {
		t.Errorf("Instrument = %q, want EUR/USD", draft.Instrument)
	}
	if draft.Side != core.SideSell {
		t.Errorf("Side = %q, want SELL", draft.Side)
	}
	checkValue(t, "Price", draft.Price, 1.0950)
	checkValue(t, "StopLoss", draft.StopLoss, 1.0980)
	checkValue(t, "TakeProfit", draft.TakeProfit, 1.0900)
	if draft.Confidence != 1.00 {
		t.Errorf("Confidence = %v, want 1.00", draft.Confidence)
	}
}

func TestParse_PairWithSeparator(t *testing.T) {
	draft := Parse("long USD/JPY entry 155.20")

	if draft.Instrument != "USD/JPY" {
		t.Errorf("Instrument = %q, want USD/JPY", draft.Instrument)
	}
	if draft.Side != core.SideBuy {
		t.Errorf("Side = %q, want BUY", draft.Side)
	}
	checkValue(t, "Price", draft.Price, 155.20)
}

func TestParse_NoSignalContent(t *testing.T) {
	draft := Parse("market looking choppy today")

	if draft.Instrument != "" {
		t.Errorf("Instrument = %q, want empty", draft.Instrument)
	}
	if draft.Side != "" {
		t.Errorf("Side = %q, want empty", draft.Side)
	}
	if draft.Price != nil || draft.StopLoss != nil || draft.TakeProfit != nil {
		t.Error("expected no price levels")
	}
	if draft.Confidence != 0.00 {
		t.Errorf("Confidence = %v, want 0.00", draft.Confidence)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		draft := Parse(text)
		if draft.Confidence != 0 {
			t.Errorf("Parse(%q).Confidence = %v, want 0", text, draft.Confidence)
		}
		if draft.RawText != text {
			t.Errorf("Parse(%q).RawText = %q, want original", text, draft.RawText)
		}
	}
}

func TestParse_Deterministic(t *testing.T) {
	text := "GOLD BUY @ 2450 SL 2440 TP 2470"
	first := Parse(text)
	second := Parse(text)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestParse_InferredEntryPrice(t *testing.T) {
	// No explicit entry anchor; the first number that is neither the
	// stop nor the target becomes the entry.
	draft := Parse("BUY GOLD 2450 SL 2440 TP 2470")

	checkValue(t, "Price", draft.Price, 2450)
	if draft.Confidence != 1.00 {
		t.Errorf("Confidence = %v, want 1.00", draft.Confidence)
	}
}

func TestParse_NoInferenceWithoutSide(t *testing.T) {
	draft := Parse("GOLD 2450 looking interesting")

	if draft.Price != nil {
		t.Errorf("Price = %v, want nil without a side", *draft.Price)
	}
}

func TestParse_ThousandsSeparators(t *testing.T) {
	draft := Parse("BUY BTC @ 64,500 SL 63,000 TP 66,250")

	if draft.Instrument != "BTC/USD" {
		t.Errorf("Instrument = %q, want BTC/USD", draft.Instrument)
	}
	checkValue(t, "Price", draft.Price, 64500)
	checkValue(t, "StopLoss", draft.StopLoss, 63000)
	checkValue(t, "TakeProfit", draft.TakeProfit, 66250)
}

func TestParse_EmphasisMarkers(t *testing.T) {
	draft := Parse("**GOLD** **SELL** @ 2450 **SL** 2460 **TP** 2420")

	if draft.Instrument != "XAU/USD" {
		t.Errorf("Instrument = %q, want XAU/USD", draft.Instrument)
	}
	if draft.Side != core.SideSell {
		t.Errorf("Side = %q, want SELL", draft.Side)
	}
	checkValue(t, "StopLoss", draft.StopLoss, 2460)
	checkValue(t, "TakeProfit", draft.TakeProfit, 2420)
}

func TestParse_AliasTableOrder(t *testing.T) {
	// Multiple aliases in one message resolve to the first table hit.
	draft := Parse("BUY ETH BITCOIN")
	if draft.Instrument != "BTC/USD" {
		t.Errorf("Instrument = %q, want BTC/USD", draft.Instrument)
	}
}

func TestParse_IndexInstruments(t *testing.T) {
	for text, want := range map[string]string{
		"SHORT NAS100 now": "NAS100",
		"USTEC sell setup": "NAS100",
		"US30 BUY":         "US30",
		"DJ30 looks heavy": "US30",
	} {
		if draft := Parse(text); draft.Instrument != want {
			t.Errorf("Parse(%q).Instrument = %q, want %q", text, draft.Instrument, want)
		}
	}
}

func TestParse_SixLetterWordIsNotAPair(t *testing.T) {
	draft := Parse("BUY MARKET momentum")
	if draft.Instrument != "" {
		t.Errorf("Instrument = %q, want empty", draft.Instrument)
	}
}

func TestParse_BuyWinsOverSellWords(t *testing.T) {
	// Messages carrying both directions resolve to BUY.
	draft := Parse("BUY GOLD, do not sell yet")
	if draft.Side != core.SideBuy {
		t.Errorf("Side = %q, want BUY", draft.Side)
	}
}
