package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	base := NotFound("Quiz not found")
	wrapped := fmt.Errorf("handler: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindValidation))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("boom")))
	assert.Equal(t, "unknown", Kind(0).String())
}

func TestGenerationKeepsCause(t *testing.T) {
	cause := errors.New("429 from backend")
	err := Generation("quota_exceeded", "AI service quota exceeded", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "quota_exceeded", err.Reason)
	assert.Contains(t, err.Error(), "generation_failure")
}
