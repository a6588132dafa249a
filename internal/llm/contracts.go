package llm

import (
	"context"
	"encoding/json"

	"github.com/docuparse/invoice-extractor/internal/entity"
)

// GenerateRequest describes one structured-generation call: a prompt,
// an optional document payload, and the JSON schema the output must
// conform to.
type GenerateRequest struct {
	Prompt       string
	DocumentPath string // optional; uploaded to the provider for the call
	Schema       map[string]any
}

// StructuredGenerator is the interface the pipeline depends on.
// Implementations must return JSON conforming exactly to the request
// schema, with unrecognized fields set to null rather than fabricated,
// and must delete any uploaded payload reference after the call
// completes, success or failure.
type StructuredGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (json.RawMessage, error)
}

// HeaderMapper resolves spreadsheet column headers to the canonical
// invoice fields. A restricted use of the structured generator: one
// call per spreadsheet, text-only.
type HeaderMapper interface {
	MapHeaders(ctx context.Context, headers []string) (entity.HeaderMapping, error)
}
