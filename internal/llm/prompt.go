package llm

import "strings"

// BuildExtractionPrompt composes the invoice-extraction instruction.
// When the OCR pass produced text, it is embedded as enrichment so the
// model can cross-check its own reading of the document; otherwise a
// generic placeholder instruction stands in.
func BuildExtractionPrompt(ocrText string) string {
	parts := []string{
		"You are an AI invoice data extraction specialist. Analyze the provided document and extract ALL invoice, product, and customer information.",
		"Strictly follow the output schema provided.",
		"Rules:",
		"- Extract ALL data visible in the document.",
		"- If a field is not found, use null. Never invent values.",
		"- Numeric currency fields must be clean numbers: no currency symbols, no thousands separators.",
		"- Dates must be formatted as either YYYY-MM-DD or DD/MM/YYYY.",
		"- Express tax as a string combining amount and percentage when both are derivable, e.g. \"450.00 (18%)\"; otherwise just the bare value.",
	}

	ocr := strings.TrimSpace(ocrText)
	if ocr != "" {
		parts = append(parts,
			"",
			"The following text was extracted from the document by an OCR service. Use it to cross-check and fill fields you cannot read from the document itself:",
			ocr,
		)
	} else {
		parts = append(parts,
			"",
			"No pre-extracted text is available. Read all fields directly from the attached document.",
		)
	}
	return strings.Join(parts, "\n")
}

// BuildHeaderMappingPrompt asks for the column-header-to-field
// correspondence of one spreadsheet. The answer drives the native
// aggregation path; no further generative calls follow.
func BuildHeaderMappingPrompt(headers []string) string {
	var b strings.Builder
	b.WriteString("You are given the column headers of a sales spreadsheet. ")
	b.WriteString("Map each target field to the EXACT header string that holds it, or null when no header matches. ")
	b.WriteString("Return ONLY JSON matching the provided schema. Do not normalize, translate, or trim the header strings.\n\n")
	b.WriteString("Column headers:\n")
	for _, h := range headers {
		b.WriteString("- ")
		b.WriteString(h)
		b.WriteString("\n")
	}
	return b.String()
}
