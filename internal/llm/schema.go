package llm

import "github.com/docuparse/invoice-extractor/constants"

// BuildInvoiceSchema returns the JSON-Schema (draft 2020-12 subset) for a
// single extracted invoice. We pass it to the provider as a structured
// output constraint and also use it locally to validate the response.
// Every field is nullable: a value the model cannot find must come back
// null, never fabricated.
func BuildInvoiceSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"invoice_details": invoiceDetailsSchema(),
			"customer":        customerSchema(),
			"products": map[string]any{
				"type":  "array",
				"items": productSchema(),
			},
		},
		"required": []string{"invoice_details", "customer", "products"},
	}
}

// BuildMultiInvoiceSchema wraps the single-invoice shape in a list, for
// documents carrying more than one invoice.
func BuildMultiInvoiceSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"invoices": map[string]any{
				"type":  "array",
				"items": BuildInvoiceSchema(),
			},
		},
		"required": []string{"invoices"},
	}
}

// BuildHeaderMappingSchema returns the schema for the one-shot header
// mapping call: each canonical field maps to the exact column header
// string found in the sheet, or null when no column matches.
func BuildHeaderMappingSchema() map[string]any {
	props := map[string]any{}
	for _, f := range constants.CanonicalFields {
		props[f] = nullableString()
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             constants.CanonicalFields,
	}
}

func invoiceDetailsSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"serial_number":    nullableString(),
			"total_quantity":   nullableNumber(),
			"total_tax_amount": nullableNumber(),
			"total_amount":     nullableNumber(),
			"date":             nullableString(),
		},
		"required": []string{"serial_number", "total_quantity", "total_tax_amount", "total_amount", "date"},
	}
}

func customerSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"customer_name":         nullableString(),
			"phone_number":          nullableString(),
			"total_purchase_amount": nullableNumber(),
		},
		"required": []string{"customer_name", "phone_number", "total_purchase_amount"},
	}
}

func productSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":           nullableString(),
			"quantity":       nullableNumber(),
			"unit_price":     nullableNumber(),
			"tax":            nullableString(),
			"price_with_tax": nullableNumber(),
		},
		"required": []string{"name", "quantity", "unit_price", "tax", "price_with_tax"},
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func nullableNumber() map[string]any {
	return map[string]any{"type": []string{"number", "null"}}
}
