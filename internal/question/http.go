package question

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sanket913/VoiceMitra/internal/auth"
	httperrors "github.com/sanket913/VoiceMitra/pkg/http/errors"
)

type HTTPHandlers struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandlers(svc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, logger: logger.With().Str("component", "question_http").Logger()}
}

// Ask handles POST /v1/questions
func (h *HTTPHandlers) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	q, err := h.svc.Ask(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		httperrors.RespondAppError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusCreated, map[string]interface{}{"question": q})
}

// List handles GET /v1/questions
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	out, err := h.svc.List(r.Context(), auth.UserID(r.Context()), query.Get("subject"), page, limit)
	if err != nil {
		httperrors.RespondAppError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, out)
}

type deleteRequest struct {
	QuestionIDs []string `json:"questionIds"`
	DeleteAll   bool     `json:"deleteAll"`
}

// Delete handles DELETE /v1/questions
func (h *HTTPHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	n, err := h.svc.Delete(r.Context(), auth.UserID(r.Context()), req.QuestionIDs, req.DeleteAll)
	if err != nil {
		httperrors.RespondAppError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"deletedCount": n,
		"message":      fmt.Sprintf("Successfully deleted %d question(s)", n),
	})
}
