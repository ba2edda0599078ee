// Package question implements the Q&A feature: a student asks a question,
// the generator answers it in the student's language and the exchange is kept.
package question

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sanket913/VoiceMitra/internal/apperr"
	"github.com/sanket913/VoiceMitra/internal/db/queries"
	"github.com/sanket913/VoiceMitra/internal/db/repository"
	"github.com/sanket913/VoiceMitra/internal/generator"
	"github.com/sanket913/VoiceMitra/internal/language"
	"github.com/sanket913/VoiceMitra/internal/logging"
	"github.com/sanket913/VoiceMitra/internal/metrics"
)

const (
	minQuestionLength = 3
	defaultPageSize   = 20
	maxPageSize       = 100
)

// AnswerGenerator produces tutor answers and detects the language of free text.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question, lang string) (string, error)
	DetectLanguage(ctx context.Context, text string) string
}

// StatsInvalidator drops cached dashboard stats after a mutation.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, owner uuid.UUID)
}

type Service struct {
	gen    AnswerGenerator
	repo   *repository.QuestionRepository
	stats  StatsInvalidator
	logger zerolog.Logger
}

func NewService(gen AnswerGenerator, repo *repository.QuestionRepository, stats StatsInvalidator, logger zerolog.Logger) *Service {
	return &Service{
		gen:    gen,
		repo:   repo,
		stats:  stats,
		logger: logging.Component(logger, "question"),
	}
}

// Ask answers req.Question and stores the exchange. Nothing is stored when generation fails.
func (s *Service) Ask(ctx context.Context, owner uuid.UUID, req AskRequest) (Question, error) {
	if owner == uuid.Nil {
		return Question{}, apperr.NotAuthenticated()
	}
	text := strings.TrimSpace(req.Question)
	if text == "" {
		return Question{}, apperr.Validation("question", "Question is required")
	}
	if len([]rune(text)) < minQuestionLength {
		return Question{}, apperr.Validation("question", "Question is too short. Please ask a complete question.")
	}

	lang, ok := language.Normalize(req.Language)
	if !ok {
		lang = s.gen.DetectLanguage(ctx, text)
	}

	answer, err := s.gen.GenerateAnswer(ctx, text, lang)
	if err != nil {
		if apperr.KindOf(err) != 0 {
			return Question{}, err
		}
		return Question{}, apperr.Generation(generator.ReasonBackendUnavailable, "Failed to generate an answer. Please try again.", err)
	}

	var subject *string
	if req.Subject != nil {
		if trimmed := strings.TrimSpace(*req.Subject); trimmed != "" {
			subject = &trimmed
		}
	}
	row, err := s.repo.Insert(ctx, queries.CreateQuestionParams{
		UserID:       repository.PgUUID(owner),
		Question:     text,
		Answer:       answer,
		Language:     lang,
		Subject:      repository.PgText(subject),
		IsVoiceInput: req.IsVoiceInput,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", owner.String()).Msg("failed to store question")
		return Question{}, apperr.Storage("Failed to save question", err)
	}

	metrics.QuestionsAsked.WithLabelValues(lang, strconv.FormatBool(req.IsVoiceInput)).Inc()
	s.invalidate(ctx, owner)

	s.logger.Info().
		Str("user_id", owner.String()).
		Str("language", lang).
		Bool("voice", req.IsVoiceInput).
		Msg("question answered")
	return toQuestion(row), nil
}

// List returns the owner's questions newest first, optionally narrowed to one subject.
func (s *Service) List(ctx context.Context, owner uuid.UUID, subject string, page, limit int) (Page, error) {
	if owner == uuid.Nil {
		return Page{}, apperr.NotAuthenticated()
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	var filter *string
	if subject = strings.TrimSpace(subject); subject != "" && !strings.EqualFold(subject, "all") {
		filter = &subject
	}

	rows, total, err := s.repo.List(ctx, owner, filter, limit, (page-1)*limit)
	if err != nil {
		return Page{}, apperr.Storage("Failed to fetch questions", err)
	}
	out := Page{
		Questions: make([]Question, 0, len(rows)),
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}
	for _, row := range rows {
		out.Questions = append(out.Questions, toQuestion(row))
	}
	return out, nil
}

// Delete removes the listed questions, or every question when all is set.
func (s *Service) Delete(ctx context.Context, owner uuid.UUID, rawIDs []string, all bool) (int64, error) {
	if owner == uuid.Nil {
		return 0, apperr.NotAuthenticated()
	}
	var (
		n   int64
		err error
	)
	switch {
	case all:
		n, err = s.repo.DeleteAll(ctx, owner)
	case len(rawIDs) > 0:
		ids := make([]uuid.UUID, 0, len(rawIDs))
		for _, raw := range rawIDs {
			if id, perr := uuid.Parse(raw); perr == nil {
				ids = append(ids, id)
			}
		}
		n, err = s.repo.Delete(ctx, owner, ids)
	default:
		return 0, apperr.Validation("questionIds", "Provide questionIds or set deleteAll")
	}
	if err != nil {
		return 0, apperr.Storage("Failed to delete questions", err)
	}
	if n > 0 {
		s.invalidate(ctx, owner)
	}
	return n, nil
}

func (s *Service) invalidate(ctx context.Context, owner uuid.UUID) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, owner)
	}
}

func toQuestion(row queries.Question) Question {
	q := Question{
		ID:           repository.UUID(row.QuestionID),
		Question:     row.Question,
		Answer:       row.Answer,
		Language:     row.Language,
		IsVoiceInput: row.IsVoiceInput,
		CreatedAt:    row.CreatedAt.Time,
	}
	if row.Subject.Valid {
		subject := row.Subject.String
		q.Subject = &subject
	}
	return q
}
