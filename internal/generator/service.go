// Package generator turns subject/difficulty/language requests into
// validated multiple choice questions and tutor answers using a generative
// model backend.
package generator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sanket913/VoiceMitra/internal/apperr"
	"github.com/sanket913/VoiceMitra/internal/language"
	"github.com/sanket913/VoiceMitra/internal/logging"
	"github.com/sanket913/VoiceMitra/internal/metrics"
)

const defaultTimeout = 30 * time.Second

// Options tunes the generator service.
type Options struct {
	// Timeout bounds every backend call. Zero means 30s.
	Timeout time.Duration
}

// Service validates requests, builds prompts and checks model output.
// It never persists anything and never retries.
type Service struct {
	backend Backend
	timeout time.Duration
	logger  zerolog.Logger
}

// NewService builds a generator. backend may be nil, in which case every
// call fails with a not_configured generation failure.
func NewService(backend Backend, opts Options, logger zerolog.Logger) *Service {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		backend: backend,
		timeout: timeout,
		logger:  logging.Component(logger, "generator"),
	}
}

// GenerateQuiz returns exactly spec.Count items or a generation failure.
// Count is clamped to [MinQuestions, MaxQuestions].
func (s *Service) GenerateQuiz(ctx context.Context, spec QuizSpec) ([]Item, error) {
	spec.Subject = strings.TrimSpace(spec.Subject)
	if spec.Subject == "" {
		return nil, apperr.Validation("subject", "Subject is required")
	}
	difficulty, err := ParseDifficulty(spec.Difficulty)
	if err != nil {
		return nil, apperr.Validation("difficulty", "Difficulty must be beginner, intermediate or advanced")
	}
	spec.Difficulty = string(difficulty)
	if spec.Language == "" {
		spec.Language = language.Default
	}
	spec.Count = clampCount(spec.Count)

	text, err := s.call(ctx, "quiz", quizRequest(spec))
	if err != nil {
		return nil, err
	}

	items, err := parseItems(text, spec.Count)
	if err != nil {
		var pe *parseError
		reason := ReasonMalformedJSON
		if errors.As(err, &pe) {
			reason = pe.reason
		}
		metrics.GenerationFailures.WithLabelValues("quiz", reason).Inc()
		s.logger.Warn().
			Err(err).
			Str("reason", reason).
			Str("subject", spec.Subject).
			Int("count", spec.Count).
			Msg("rejected generated quiz")
		return nil, failure("quiz", reason, err)
	}

	s.logger.Debug().
		Str("subject", spec.Subject).
		Str("difficulty", spec.Difficulty).
		Str("language", spec.Language).
		Int("count", len(items)).
		Msg("quiz generated")
	return items, nil
}

// GenerateAnswer returns a tutor answer to question written in lang.
func (s *Service) GenerateAnswer(ctx context.Context, question, lang string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", apperr.Validation("question", "Question is required")
	}
	if !language.IsSupported(lang) {
		lang = language.Default
	}

	text, err := s.call(ctx, "answer", answerRequest(question, lang))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.GenerationFailures.WithLabelValues("answer", ReasonEmptyResponse).Inc()
		return "", failure("answer", ReasonEmptyResponse, errors.New("empty answer"))
	}
	return text, nil
}

// DetectLanguage asks the model for the language code of text and falls
// back to script detection whenever the model is unavailable or unsure.
func (s *Service) DetectLanguage(ctx context.Context, text string) string {
	fallback := language.Detect(text)
	if s.backend == nil {
		return fallback
	}
	out, err := s.call(ctx, "detect", detectRequest(text))
	if err != nil {
		return fallback
	}
	code := strings.ToLower(strings.Trim(strings.TrimSpace(out), `."'`))
	if !language.IsSupported(code) {
		return fallback
	}
	return code
}

func (s *Service) call(ctx context.Context, op string, req Request) (string, error) {
	if s.backend == nil {
		metrics.GenerationFailures.WithLabelValues(op, ReasonNotConfigured).Inc()
		return "", failure(op, ReasonNotConfigured, errors.New("no generation backend configured"))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.backend.Generate(ctx, req)
	metrics.GenerationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err == nil {
		return text, nil
	}

	reason := ReasonBackendUnavailable
	var be *BackendError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		reason = ReasonTimeout
	case errors.As(err, &be) && be.Reason != "":
		reason = be.Reason
	}
	metrics.GenerationFailures.WithLabelValues(op, reason).Inc()
	s.logger.Warn().Err(err).Str("op", op).Str("reason", reason).Msg("generation backend failed")
	return "", failure(op, reason, err)
}

func clampCount(n int) int {
	switch {
	case n < MinQuestions:
		return MinQuestions
	case n > MaxQuestions:
		return MaxQuestions
	default:
		return n
	}
}

func failure(op, reason string, err error) *apperr.Error {
	return apperr.Generation(reason, failureMessage(op, reason), err)
}

func failureMessage(op, reason string) string {
	switch reason {
	case ReasonNotConfigured:
		return "AI service is not properly configured. Please contact support."
	case ReasonQuotaExceeded:
		return "API quota exceeded. Please try again later."
	case ReasonSafetyBlocked:
		return "Content was blocked by safety filters. Please rephrase your request."
	case ReasonTimeout:
		return "The AI service took too long to respond. Please try again."
	case ReasonBackendUnavailable:
		return "AI service is temporarily unavailable. Please try again later."
	}
	if op == "quiz" {
		return "Failed to generate quiz. Please try again."
	}
	return "Failed to generate answer. Please try again."
}
