package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooksLikeQuotaError(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"googleapi: Error 429: Resource has been exhausted", true},
		{"RESOURCE_EXHAUSTED: Quota exceeded for quota metric", true},
		{"rate limit reached for gemini-2.5-pro", true},
		{"Too Many Requests", true},
		{"invalid argument: unknown field", false},
		{"context deadline exceeded", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LooksLikeQuotaError(tc.msg), "msg=%q", tc.msg)
	}
}

func TestQuotaErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("generate status 429: quota exceeded")
	err := NewQuotaError(cause)

	assert.Equal(t, QuotaMessage, err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestIsQuotaErrorThroughWrapping(t *testing.T) {
	err := fmt.Errorf("extract %s: %w", "invoice.pdf", NewQuotaError(errors.New("429")))
	assert.True(t, IsQuotaError(err))

	assert.False(t, IsQuotaError(errors.New("quota"))) // message alone is not enough
	assert.False(t, IsQuotaError(nil))
}

func TestAppErrorFormatting(t *testing.T) {
	bare := NewAppError("STAGE_FAILED", "could not persist upload", nil)
	assert.Equal(t, "STAGE_FAILED: could not persist upload", bare.Error())

	cause := errors.New("disk full")
	wrapped := NewAppError("STAGE_FAILED", "could not persist upload", cause)
	assert.Contains(t, wrapped.Error(), "disk full")
	assert.ErrorIs(t, wrapped, cause)
}
