package parser

import "regexp"

// instrumentAlias maps a channel shorthand to a normalized instrument.
// Order matters: the first whole-word hit wins.
type instrumentAlias struct {
	word       string
	instrument string
	re         *regexp.Regexp
}

func newAlias(word, instrument string) instrumentAlias {
	return instrumentAlias{
		word:       word,
		instrument: instrument,
		re:         regexp.MustCompile(`\b` + word + `\b`),
	}
}

// Static alias table for the symbols that show up in signal channels.
// Extend here, not in the parser logic.
// currencyCodes legitimizes the 3/3 pair fallback: both legs must be
// known codes, otherwise any six-letter word would parse as a pair.
var currencyCodes = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CHF": true, "AUD": true, "NZD": true, "CAD": true,
	"XAU": true, "XAG": true, "BTC": true, "ETH": true,
}

var instrumentAliases = []instrumentAlias{
	newAlias("GOLD", "XAU/USD"),
	newAlias("XAUUSD", "XAU/USD"),
	newAlias("XAU", "XAU/USD"),
	newAlias("BITCOIN", "BTC/USD"),
	newAlias("BTC", "BTC/USD"),
	newAlias("ETHEREUM", "ETH/USD"),
	newAlias("ETH", "ETH/USD"),
	newAlias("EURUSD", "EUR/USD"),
	newAlias("GBPUSD", "GBP/USD"),
	newAlias("US30", "US30"),
	newAlias("DJ30", "US30"),
	newAlias("NAS100", "NAS100"),
	newAlias("USTEC", "NAS100"),
	newAlias("GBPJPY", "GBP/JPY"),
	newAlias("GJ", "GBP/JPY"),
}
