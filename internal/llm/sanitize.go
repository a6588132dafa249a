package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

var (
	reCurrencyResidue = regexp.MustCompile(`[^\d.\-]`)
	reISODate         = regexp.MustCompile(`^(\d{4})[/.](\d{2})[/.](\d{2})$`)
)

// SanitizeExtraction
// - Coerces money/quantity fields delivered as formatted strings
//   ("$5,095.24") back into clean numbers
// - Normalizes near-miss date separators to YYYY-MM-DD
// - Strips float artifacts from phone numbers ("9998887770.0") and
//   replaces a textual "nan" with null
// - Guarantees "products" is a list, never null
// Returns the cleaned document plus the names of adjusted fields.
func SanitizeExtraction(doc []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var adjusted []string
	note := func(field string) { adjusted = append(adjusted, field) }

	if details, ok := m["invoice_details"].(map[string]any); ok {
		coerceNumber(details, "total_quantity", note)
		coerceNumber(details, "total_tax_amount", note)
		coerceNumber(details, "total_amount", note)
		if d, ok := details["date"].(string); ok {
			if nd := normalizeDate(d); nd != d {
				details["date"] = nd
				note("invoice_details.date")
			}
		}
	}

	if cust, ok := m["customer"].(map[string]any); ok {
		coerceNumber(cust, "total_purchase_amount", note)
		if p, ok := cust["phone_number"].(string); ok {
			np := cleanPhone(p)
			if np == "" {
				cust["phone_number"] = nil
			} else {
				cust["phone_number"] = np
			}
			if np != p {
				note("customer.phone_number")
			}
		}
	}

	switch products := m["products"].(type) {
	case nil:
		m["products"] = []any{}
		note("products")
	case []any:
		for _, p := range products {
			if prod, ok := p.(map[string]any); ok {
				coerceNumber(prod, "quantity", note)
				coerceNumber(prod, "unit_price", note)
				coerceNumber(prod, "price_with_tax", note)
			}
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, adjusted, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(adjusted) > 0 {
		logger.Warn("llm.extract.sanitize_applied", "adjusted", adjusted)
	}
	return out, adjusted, nil
}

// coerceNumber turns a string-typed numeric value into a float64,
// stripping currency symbols and thousands separators first. Null and
// proper numbers pass through untouched; an unparsable string becomes
// null rather than a guess.
func coerceNumber(m map[string]any, key string, note func(string)) {
	v, ok := m[key]
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		return
	}
	residue := reCurrencyResidue.ReplaceAllString(strings.TrimSpace(s), "")
	if residue == "" {
		m[key] = nil
		note(key)
		return
	}
	f, err := strconv.ParseFloat(residue, 64)
	if err != nil {
		m[key] = nil
		note(key)
		return
	}
	m[key] = f
	note(key)
}

func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if sub := reISODate.FindStringSubmatch(s); sub != nil {
		return sub[1] + "-" + sub[2] + "-" + sub[3]
	}
	return s
}

func cleanPhone(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}
