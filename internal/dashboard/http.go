package dashboard

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sanket913/VoiceMitra/internal/auth"
	httperrors "github.com/sanket913/VoiceMitra/pkg/http/errors"
)

// HTTPHandler exposes dashboard stats.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, logger: logger.With().Str("component", "dashboard_http").Logger()}
}

// HandleStats serves GET /v1/dashboard/stats?period=week|month|year
func (h *HTTPHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), auth.UserID(r.Context()), r.URL.Query().Get("period"))
	if err != nil {
		httperrors.RespondAppError(w, err)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, stats)
}
