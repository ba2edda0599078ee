package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sanket913/VoiceMitra/internal/auth"
	"github.com/sanket913/VoiceMitra/internal/auth/jwt"
	"github.com/sanket913/VoiceMitra/internal/config"
	"github.com/sanket913/VoiceMitra/internal/dashboard"
	"github.com/sanket913/VoiceMitra/internal/db/queries"
	"github.com/sanket913/VoiceMitra/internal/db/repository"
	"github.com/sanket913/VoiceMitra/internal/generator"
	"github.com/sanket913/VoiceMitra/internal/generator/gemini"
	"github.com/sanket913/VoiceMitra/internal/logging"
	"github.com/sanket913/VoiceMitra/internal/question"
	"github.com/sanket913/VoiceMitra/internal/quiz"
	"github.com/sanket913/VoiceMitra/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps logger, Postgres, Redis, services and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	loc, err := cfg.Location()
	if err != nil {
		pool.Close()
		return nil, err
	}

	q := queries.New(pool)
	userRepo := repository.NewUserRepository(q)
	quizRepo := repository.NewQuizRepository(q)
	questionRepo := repository.NewQuestionRepository(q)
	activityRepo := repository.NewActivityRepository(q)

	// Identity
	keys := auth.NewRedisKeyStore(redisClient)
	authOpts := auth.ServiceOptions{
		TokenConfig: jwt.TokenConfig{
			AccessSecret: []byte(cfg.Security.JWTSecret),
			AccessTTL:    cfg.Security.AccessTTL,
			RefreshTTL:   cfg.Security.RefreshTTL,
			Issuer:       cfg.Name,
		},
		Keys:          keys,
		ResetTokenTTL: cfg.Security.ResetTokenTTL,
	}
	mailer := auth.NewEmailService(auth.EmailConfig{
		SMTPHost:     cfg.SMTP.Host,
		SMTPPort:     cfg.SMTP.Port,
		SMTPUsername: cfg.SMTP.Username,
		SMTPPassword: cfg.SMTP.Password,
		FromEmail:    cfg.SMTP.FromEmail,
		PublicURL:    cfg.PublicURL,
	}, logger)
	if mailer.Configured() {
		authOpts.Mailer = mailer
	} else {
		logger.Warn().Msg("SMTP not configured; password reset disabled")
	}
	authSvc := auth.NewService(userRepo, authOpts, logger)

	oauthSvc := auth.NewOAuthService(auth.OAuthConfig{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.GoogleRedirectURL,
		StateTTL:     cfg.OAuth.StateTTL,
	}, keys, logger)
	if !oauthSvc.Configured() {
		logger.Warn().Msg("OAuth not configured (missing GOOGLE_OAUTH_CLIENT_ID or GOOGLE_OAUTH_CLIENT_SECRET)")
	}

	// Content generation
	var backend generator.Backend
	if cfg.AI.APIKey != "" {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			BaseURL: cfg.AI.BaseURL,
			Timeout: cfg.AI.HTTPTimeout,
		}, logger)
		if err != nil {
			pool.Close()
			_ = redisClient.Close()
			return nil, err
		}
		backend = client
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set; quiz generation and answers will fail")
	}
	gen := generator.NewService(backend, generator.Options{Timeout: cfg.AI.GenerationTimeout}, logger)

	// Core services
	stats := dashboard.NewService(activityRepo, dashboard.NewRedisCache(redisClient, cfg.Dashboard.CacheTTL), dashboard.ServiceOptions{
		Location:           loc,
		StreakLookbackDays: cfg.Dashboard.StreakLookbackDays,
		MonthlyGoal:        cfg.Dashboard.MonthlyGoal,
	}, logger)
	quizSvc := quiz.NewService(gen, quizRepo, stats, quiz.ServiceOptions{
		MaxQuestions:    cfg.Quiz.MaxQuestionCount,
		DefaultPageSize: cfg.Quiz.DefaultPageSize,
		HistoryPageSize: cfg.Quiz.HistoryPageSize,
	}, logger)
	questionSvc := question.NewService(gen, questionRepo, stats, logger)

	apiServer := server.NewHTTPServer(cfg, logger, server.Handlers{
		Auth:      auth.NewHTTPHandlers(authSvc, oauthSvc, logger),
		Tokens:    authSvc,
		Quiz:      quiz.NewHTTPHandlers(quizSvc, cfg.Quiz.DefaultQuestionCount, logger),
		Question:  question.NewHTTPHandlers(questionSvc, logger),
		Dashboard: dashboard.NewHTTPHandler(stats, logger),
		Ping: []server.PingFunc{
			pool.Ping,
			func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	})

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run serves HTTP until ctx is canceled, then drains connections and
// releases the pool and Redis client.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Info().Msg("shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
