package tabular

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reNumericResidue = regexp.MustCompile(`[^\d.]`)
	rePercentToken   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	reAmountToken    = regexp.MustCompile(`(\d+(?:,\d+)*(?:\.\d+)?)\s*\(`)
)

// ParseFloat strips a cell value down to its numeric residue (dropping
// currency symbols, thousands separators, stray text) and converts it.
// Unparsable or empty values yield 0.0, never an error: malformed source
// data is resolved by policy, not raised.
func ParseFloat(val string) float64 {
	if strings.TrimSpace(val) == "" {
		return 0.0
	}
	clean := reNumericResidue.ReplaceAllString(val, "")
	if clean == "" {
		return 0.0
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0.0
	}
	return f
}

// NormalizePhone cleans float artifacts from phone cells: a trailing
// ".0" is stripped and a textual "nan" becomes empty.
func NormalizePhone(val string) string {
	s := strings.TrimSpace(val)
	s = strings.TrimSuffix(s, ".0")
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

// parseTax interprets one tax cell against the resolved tax column.
// If the column header carries a "%" the cell is a percentage and the
// absolute amount is derived from the row's subtotal; otherwise the
// cell is an absolute amount and the percentage is back-computed.
// A zero subtotal back-computes to 0%, never a division fault.
// Returns the absolute amount and the formatted "amount (pct%)" string.
func parseTax(taxVal string, unitPrice, qty float64, headerName string) (float64, string) {
	taxStr := strings.TrimSpace(taxVal)
	if taxStr == "" {
		return 0.0, "0.00 (0%)"
	}

	var amount, perc float64
	if strings.Contains(headerName, "%") {
		if m := rePercentFirst.FindStringSubmatch(taxStr); m != nil {
			perc, _ = strconv.ParseFloat(m[1], 64)
		}
		amount = (qty * unitPrice) * (perc / 100)
	} else {
		amount = ParseFloat(taxVal)
		subtotal := qty * unitPrice
		if subtotal > 0 {
			perc = round2(amount / subtotal * 100)
		}
	}
	return amount, formatTax(amount, perc)
}

var rePercentFirst = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// percentFromTax re-extracts the percentage from a formatted tax string
// like "450.00 (18%)".
func percentFromTax(tax string) float64 {
	if m := rePercentToken.FindStringSubmatch(tax); m != nil {
		p, _ := strconv.ParseFloat(m[1], 64)
		return p
	}
	return 0.0
}

// amountFromTax re-extracts the absolute amount (the leading numeric
// token before the parenthesis) from a formatted tax string.
func amountFromTax(tax string) float64 {
	if m := reAmountToken.FindStringSubmatch(tax); m != nil {
		return ParseFloat(m[1])
	}
	return 0.0
}

// formatTax renders "1,234.00 (18%)". A whole percentage is rendered
// without a decimal part (18, not 18.0).
func formatTax(amount, perc float64) string {
	return formatAmount(amount) + " (" + strconv.FormatFloat(perc, 'f', -1, 64) + "%)"
}

// formatAmount renders an amount with two decimals and thousands
// separators, matching the source ledger format.
func formatAmount(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
