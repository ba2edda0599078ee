package quiz

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sanket913/VoiceMitra/internal/auth"
	"github.com/sanket913/VoiceMitra/internal/quiz/scoring"
	httperrors "github.com/sanket913/VoiceMitra/pkg/http/errors"
)

// HTTPHandlers exposes the quiz lifecycle over REST.
type HTTPHandlers struct {
	svc          *Service
	defaultCount int
	logger       zerolog.Logger
}

// NewHTTPHandlers creates quiz handlers. defaultCount applies when numQuestions is omitted.
func NewHTTPHandlers(svc *Service, defaultCount int, logger zerolog.Logger) *HTTPHandlers {
	if defaultCount <= 0 {
		defaultCount = 5
	}
	return &HTTPHandlers{
		svc:          svc,
		defaultCount: defaultCount,
		logger:       logger.With().Str("component", "quiz_http").Logger(),
	}
}

type generateRequest struct {
	Subject      string `json:"subject"`
	Difficulty   string `json:"difficulty"`
	Language     string `json:"language"`
	NumQuestions *int   `json:"numQuestions"`
}

// Generate handles POST /v1/quizzes/generate
func (h *HTTPHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	count := h.defaultCount
	if req.NumQuestions != nil {
		count = *req.NumQuestions
	}

	q, err := h.svc.CreateQuiz(r.Context(), auth.UserID(r.Context()), CreateRequest{
		Subject:      req.Subject,
		Difficulty:   req.Difficulty,
		Language:     req.Language,
		NumQuestions: count,
	})
	if err != nil {
		httperrors.RespondAppError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusCreated, map[string]interface{}{"quiz": q})
}

// List handles GET /v1/quizzes
func (h *HTTPHandlers) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := h.svc.ListQuizzes(r.Context(), auth.UserID(r.Context()), Filter{
		Subject:   query.Get("subject"),
		Completed: query.Get("completed"),
	}, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		httperrors.RespondAppError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, page)
}

// History handles GET /v1/quizzes/history
func (h *HTTPHandlers) History(w http.ResponseWriter, r *http.Request) {
	hist, err := h.svc.History(r.Context(), auth.UserID(r.Context()), r.URL.Query().Get("subject"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		httperrors.RespondAppError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, hist)
}

// Get handles GET /v1/quizzes/{id}
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.GetQuiz(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		httperrors.RespondAppError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{"quiz": q})
}

type submitRequest struct {
	QuizID string `json:"quizId"`
	// Answers may contain null for skipped questions.
	Answers []*int `json:"answers"`
}

// Submit handles POST /v1/quizzes/submit
func (h *HTTPHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Answers == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "Answers are required", "answers")
		return
	}
	answers := make([]int, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = scoring.Unanswered
		if a != nil {
			answers[i] = *a
		}
	}

	res, err := h.svc.SubmitAnswers(r.Context(), auth.UserID(r.Context()), req.QuizID, answers)
	if err != nil {
		httperrors.RespondAppError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, res)
}

type deleteRequest struct {
	QuizIDs   []string `json:"quizIds"`
	DeleteAll bool     `json:"deleteAll"`
}

// Delete handles DELETE /v1/quizzes
func (h *HTTPHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	n, err := h.svc.DeleteQuizzes(r.Context(), auth.UserID(r.Context()), req.QuizIDs, req.DeleteAll)
	if err != nil {
		httperrors.RespondAppError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"deletedCount": n,
		"message":      fmt.Sprintf("Successfully deleted %d quiz(zes)", n),
	})
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
