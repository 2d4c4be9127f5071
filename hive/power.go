package hive

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer renders display strings with English thousands separators.
var printer = message.NewPrinter(language.English)

// VestsToPower converts a raw vests amount to display power units using the
// current exchange ratio.
func VestsToPower(vests, ratio float64) float64 {
	return vests * ratio
}

// VoteWeightToPower converts a witness's raw vote weight, which the chain
// encodes at VoteWeightScale granularity, to display power units.
func VoteWeightToPower(votes, ratio float64) float64 {
	return votes * ratio / VoteWeightScale
}

// FormatPower renders a power amount as e.g. "1,000.000 Hive Power".
func FormatPower(power float64) string {
	return printer.Sprintf("%.3f Hive Power", power)
}

// FormatBlock renders a block number with thousands separators.
func FormatBlock(block uint64) string {
	return printer.Sprintf("%d", block)
}
