package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeExtractionCoercesFormattedNumbers(t *testing.T) {
	doc := []byte(`{
		"invoice_details": {"serial_number": "INV-1", "total_quantity": 2, "total_tax_amount": "36.00", "total_amount": "$5,095.24", "date": "2024/01/05"},
		"customer": {"customer_name": "Acme", "phone_number": "9998887770.0", "total_purchase_amount": "5,095.24"},
		"products": [{"name": "Widget", "quantity": 2, "unit_price": "100", "tax": "36.00 (18%)", "price_with_tax": "₹236.00"}]
	}`)

	out, adjusted, err := SanitizeExtraction(doc, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, adjusted)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))

	details := m["invoice_details"].(map[string]any)
	assert.InDelta(t, 5095.24, details["total_amount"].(float64), 1e-9)
	assert.InDelta(t, 36.0, details["total_tax_amount"].(float64), 1e-9)
	assert.Equal(t, "2024-01-05", details["date"])

	cust := m["customer"].(map[string]any)
	assert.Equal(t, "9998887770", cust["phone_number"])
	assert.InDelta(t, 5095.24, cust["total_purchase_amount"].(float64), 1e-9)

	prod := m["products"].([]any)[0].(map[string]any)
	assert.InDelta(t, 100.0, prod["unit_price"].(float64), 1e-9)
	assert.InDelta(t, 236.0, prod["price_with_tax"].(float64), 1e-9)
}

func TestSanitizeExtractionNullsUnparsableAndNanPhone(t *testing.T) {
	doc := []byte(`{
		"invoice_details": {"serial_number": null, "total_quantity": null, "total_tax_amount": null, "total_amount": "not a number", "date": null},
		"customer": {"customer_name": "Acme", "phone_number": "nan", "total_purchase_amount": null},
		"products": null
	}`)

	out, _, err := SanitizeExtraction(doc, nil)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))

	details := m["invoice_details"].(map[string]any)
	assert.Nil(t, details["total_amount"])

	cust := m["customer"].(map[string]any)
	assert.Nil(t, cust["phone_number"])

	// products must come back as a list, never null
	assert.Equal(t, []any{}, m["products"])
}

func TestSanitizeExtractionLeavesCleanDocsAlone(t *testing.T) {
	doc := []byte(`{
		"invoice_details": {"serial_number": "INV-1", "total_quantity": 2, "total_tax_amount": 36, "total_amount": 236, "date": "2024-01-05"},
		"customer": {"customer_name": "Acme", "phone_number": "9998887770", "total_purchase_amount": 236},
		"products": [{"name": "Widget", "quantity": 2, "unit_price": 100, "tax": "36.00 (18%)", "price_with_tax": 236}]
	}`)

	_, adjusted, err := SanitizeExtraction(doc, nil)
	require.NoError(t, err)
	assert.Empty(t, adjusted)
}

func TestSanitizeExtractionRejectsNonJSON(t *testing.T) {
	_, _, err := SanitizeExtraction([]byte("not json"), nil)
	assert.Error(t, err)
}
