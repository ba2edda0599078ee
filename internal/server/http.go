package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sanket913/VoiceMitra/internal/auth"
	"github.com/sanket913/VoiceMitra/internal/config"
	"github.com/sanket913/VoiceMitra/internal/dashboard"
	"github.com/sanket913/VoiceMitra/internal/language"
	"github.com/sanket913/VoiceMitra/internal/logging"
	"github.com/sanket913/VoiceMitra/internal/metrics"
	"github.com/sanket913/VoiceMitra/internal/question"
	"github.com/sanket913/VoiceMitra/internal/quiz"
	httperrors "github.com/sanket913/VoiceMitra/pkg/http/errors"
)

// PingFunc checks one upstream dependency.
type PingFunc func(ctx context.Context) error

// Handlers groups the feature handlers mounted on the API mux.
type Handlers struct {
	Auth      *auth.HTTPHandlers
	Tokens    auth.TokenValidator
	Quiz      *quiz.HTTPHandlers
	Question  *question.HTTPHandlers
	Dashboard *dashboard.HTTPHandler
	Ping      []PingFunc
}

// NewHTTPServer wires every route behind the shared middleware chain.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, h Handlers) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewHandler(cfg, logger, h),
	}
}

// NewHandler builds the root handler: CORS, request logging, token parsing, routes.
func NewHandler(cfg *config.App, logger zerolog.Logger, h Handlers) http.Handler {
	mux := http.NewServeMux()

	public := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, metrics.Instrument(pattern, fn))
	}
	protected := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, metrics.Instrument(pattern, auth.RequireAuth(fn)))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httperrors.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	public("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		for _, ping := range h.Ping {
			if err := ping(r.Context()); err != nil {
				logging.FromContext(r.Context()).Error().Err(err).Msg("dependency ping failed")
				httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeServiceUnavailable, "upstream error")
				return
			}
		}
		httperrors.RespondJSON(w, http.StatusOK, map[string]bool{"pong": true})
	})
	public("GET /v1/languages", language.HandleList)

	if h.Auth != nil {
		public("POST /v1/auth/register", h.Auth.Register)
		public("POST /v1/auth/login", h.Auth.Login)
		public("POST /v1/auth/refresh", h.Auth.RefreshToken)
		public("POST /v1/auth/forgot-password", h.Auth.ForgotPassword)
		public("POST /v1/auth/reset-password", h.Auth.ResetPassword)
		public("GET /v1/oauth/{provider}/start", h.Auth.OAuthStart)
		public("GET /v1/oauth/{provider}/callback", h.Auth.OAuthCallback)
		protected("GET /v1/users/me", h.Auth.GetMe)
	}

	if h.Quiz != nil {
		protected("POST /v1/quizzes/generate", h.Quiz.Generate)
		protected("POST /v1/quizzes/submit", h.Quiz.Submit)
		protected("GET /v1/quizzes/history", h.Quiz.History)
		protected("GET /v1/quizzes/{id}", h.Quiz.Get)
		protected("GET /v1/quizzes", h.Quiz.List)
		protected("DELETE /v1/quizzes", h.Quiz.Delete)
	}

	if h.Question != nil {
		protected("POST /v1/questions", h.Question.Ask)
		protected("GET /v1/questions", h.Question.List)
		protected("DELETE /v1/questions", h.Question.Delete)
	}

	if h.Dashboard != nil {
		protected("GET /v1/dashboard/stats", h.Dashboard.HandleStats)
	}

	var handler http.Handler = mux
	if h.Tokens != nil {
		handler = auth.AuthMiddleware(h.Tokens, logger)(handler)
	}
	handler = logging.Middleware(logger)(handler)
	handler = corsMiddleware(cfg.CORS)(handler)
	return handler
}
