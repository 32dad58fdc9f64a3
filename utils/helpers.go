package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultRange is used when a dashboard request names no range.
const DefaultRange = "7d"

// ResolveRangeDays maps a dashboard range to a number of trailing days.
// Unknown ranges fall back to the widest window.
func ResolveRangeDays(r string) int {
	switch r {
	case "24h":
		return 1
	case "7d":
		return 7
	case "30d":
		return 30
	default:
		return 90
	}
}

func IsValidRange(r string) bool {
	switch r {
	case "24h", "7d", "30d", "90d":
		return true
	default:
		return false
	}
}

var counterPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCount renders a count with en-US digit grouping, e.g. 12,345.
func FormatCount(n int64) string {
	return counterPrinter.Sprintf("%d", n)
}
