package exporter

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is printed for missing values.
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// FormatFloat formats a value for CSV output with exactly 2 decimal places.
// Missing values are empty cells.
func FormatFloat(f float64) string {
	if !finite(f) {
		return ""
	}
	return strconv.FormatFloat(round2(f), 'f', 2, 64)
}

// FormatInt formats an integer for CSV output
func FormatInt(i int) string {
	return strconv.Itoa(i)
}

// FormatCurrency formats an amount as "$ 1,234.56".
func FormatCurrency(f float64) string {
	if !finite(f) {
		return NotAvailable
	}
	return printer.Sprintf("$ %.2f", round2(f))
}

// FormatNumber formats a value with thousands separators and the given
// number of decimals.
func FormatNumber(f float64, decimals int) string {
	if !finite(f) {
		return NotAvailable
	}
	d := decimal.NewFromFloat(f).Round(int32(decimals)).InexactFloat64()
	return printer.Sprintf("%."+strconv.Itoa(decimals)+"f", d)
}

// FormatPercent formats a percentage with one decimal, e.g. "71.5%".
func FormatPercent(f float64) string {
	if !finite(f) {
		return NotAvailable
	}
	return FormatNumber(f, 1) + "%"
}

// round2 rounds half away from zero on the decimal value, so 2.675 becomes
// 2.68 rather than the binary 2.67.
func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
