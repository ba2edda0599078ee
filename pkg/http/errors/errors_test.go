package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanket913/VoiceMitra/internal/apperr"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondAppErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.NotAuthenticated(), http.StatusUnauthorized, ErrCodeAuthenticationRequired},
		{apperr.Validation("answers", "Expected 5 answers, got 4"), http.StatusBadRequest, ErrCodeValidationFailed},
		{apperr.NotFound("Quiz not found"), http.StatusNotFound, ErrCodeNotFound},
		{apperr.Generation("quota_exceeded", "API quota exceeded. Please try again later.", nil), http.StatusBadGateway, ErrCodeGenerationFailed},
		{apperr.Storage("Failed to save quiz", fmt.Errorf("dial tcp: refused")), http.StatusInternalServerError, ErrCodeStorageFailure},
		{fmt.Errorf("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondAppError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, tc.code, decode(t, rec).Error)
	}
}

func TestRespondAppErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondAppError(rec, apperr.Storage("Failed to save quiz", fmt.Errorf("pq: password authentication failed")))

	assert.NotContains(t, rec.Body.String(), "password authentication")
	assert.Equal(t, "Failed to save quiz", decode(t, rec).Message)
}

func TestRespondAppErrorCarriesFieldAndReason(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondAppError(rec, apperr.Validation("subject", "Subject is required"))
	assert.Equal(t, "subject", decode(t, rec).Field)

	rec = httptest.NewRecorder()
	RespondAppError(rec, apperr.Generation("safety_blocked", "blocked", nil))
	assert.Equal(t, "safety_blocked", decode(t, rec).Details["reason"])
}
