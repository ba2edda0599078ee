package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	textlang "golang.org/x/text/language"

	"github.com/sanket913/VoiceMitra/internal/apperr"
	"github.com/sanket913/VoiceMitra/internal/db/queries"
	"github.com/sanket913/VoiceMitra/internal/db/repository"
	"github.com/sanket913/VoiceMitra/internal/generator"
	"github.com/sanket913/VoiceMitra/internal/language"
	"github.com/sanket913/VoiceMitra/internal/logging"
	"github.com/sanket913/VoiceMitra/internal/metrics"
	"github.com/sanket913/VoiceMitra/internal/quiz/scoring"
)

const maxPageSize = 100

// QuizGenerator produces validated question items.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, spec generator.QuizSpec) ([]generator.Item, error)
}

// StatsInvalidator drops cached dashboard stats after a mutation.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, owner uuid.UUID)
}

// ServiceOptions tunes paging defaults.
type ServiceOptions struct {
	MaxQuestions    int
	DefaultPageSize int
	HistoryPageSize int
	Now             func() time.Time
}

// Service implements the quiz lifecycle: generate, fetch, submit, list and delete.
type Service struct {
	gen       QuizGenerator
	repo      *repository.QuizRepository
	stats     StatsInvalidator
	scorer    *scoring.Engine
	opts      ServiceOptions
	titleCase cases.Caser
	logger    zerolog.Logger
}

func NewService(gen QuizGenerator, repo *repository.QuizRepository, stats StatsInvalidator, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.MaxQuestions <= 0 || opts.MaxQuestions > generator.MaxQuestions {
		opts.MaxQuestions = generator.MaxQuestions
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 10
	}
	if opts.HistoryPageSize <= 0 {
		opts.HistoryPageSize = 50
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		gen:       gen,
		repo:      repo,
		stats:     stats,
		scorer:    scoring.NewEngine(scoring.DefaultScoringConfig()),
		opts:      opts,
		titleCase: cases.Title(textlang.English),
		logger:    logging.Component(logger, "quiz"),
	}
}

// CreateQuiz generates and stores a new quiz. The returned quiz carries answer keys.
func (s *Service) CreateQuiz(ctx context.Context, owner uuid.UUID, req CreateRequest) (Quiz, error) {
	if owner == uuid.Nil {
		return Quiz{}, apperr.NotAuthenticated()
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return Quiz{}, apperr.Validation("subject", "Subject is required")
	}
	if strings.TrimSpace(req.Difficulty) == "" {
		return Quiz{}, apperr.Validation("difficulty", "Difficulty is required")
	}
	difficulty, err := generator.ParseDifficulty(req.Difficulty)
	if err != nil {
		return Quiz{}, apperr.Validation("difficulty", "Difficulty must be beginner, intermediate or advanced")
	}
	if req.NumQuestions < generator.MinQuestions || req.NumQuestions > s.opts.MaxQuestions {
		return Quiz{}, apperr.Validation("numQuestions", fmt.Sprintf("Number of questions must be between %d and %d", generator.MinQuestions, s.opts.MaxQuestions))
	}
	lang := language.Default
	if strings.TrimSpace(req.Language) != "" {
		code, ok := language.Normalize(req.Language)
		if !ok {
			return Quiz{}, apperr.Validation("language", "Unsupported language")
		}
		lang = code
	}

	items, err := s.gen.GenerateQuiz(ctx, generator.QuizSpec{
		Subject:    subject,
		Difficulty: string(difficulty),
		Language:   lang,
		Count:      req.NumQuestions,
	})
	if err != nil {
		if apperr.KindOf(err) != 0 {
			return Quiz{}, err
		}
		return Quiz{}, apperr.Generation(generator.ReasonBackendUnavailable, "Failed to generate quiz. Please try again.", err)
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return Quiz{}, apperr.Storage("Failed to save quiz", err)
	}
	row, err := s.repo.Create(ctx, queries.CreateQuizParams{
		UserID:     repository.PgUUID(owner),
		Title:      s.title(subject, difficulty),
		Subject:    subject,
		Difficulty: string(difficulty),
		Language:   lang,
		Questions:  payload,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", owner.String()).Msg("failed to store quiz")
		return Quiz{}, apperr.Storage("Failed to save quiz", err)
	}

	metrics.QuizzesCreated.WithLabelValues(string(difficulty), lang).Inc()
	s.invalidate(ctx, owner)

	q, err := toQuiz(row)
	if err != nil {
		return Quiz{}, apperr.Storage("Failed to load quiz", err)
	}
	s.logger.Info().
		Str("user_id", owner.String()).
		Str("quiz_id", q.ID.String()).
		Str("subject", subject).
		Int("questions", len(q.Questions)).
		Msg("quiz created")
	return q, nil
}

func (s *Service) title(subject string, difficulty generator.Difficulty) string {
	return fmt.Sprintf("%s - %s Quiz", subject, s.titleCase.String(string(difficulty)))
}

// GetQuiz returns a quiz owned by owner. Missing, foreign and malformed ids all yield NotFound.
func (s *Service) GetQuiz(ctx context.Context, owner uuid.UUID, rawID string) (Quiz, error) {
	if owner == uuid.Nil {
		return Quiz{}, apperr.NotAuthenticated()
	}
	row, err := s.load(ctx, owner, rawID)
	if err != nil {
		return Quiz{}, err
	}
	q, err := toQuiz(row)
	if err != nil {
		return Quiz{}, apperr.Storage("Failed to load quiz", err)
	}
	return q, nil
}

func (s *Service) load(ctx context.Context, owner uuid.UUID, rawID string) (queries.Quiz, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return queries.Quiz{}, apperr.NotFound("Quiz not found")
	}
	row, err := s.repo.GetForUser(ctx, id, owner)
	if errors.Is(err, repository.ErrNotFound) {
		return queries.Quiz{}, apperr.NotFound("Quiz not found")
	}
	if err != nil {
		return queries.Quiz{}, apperr.Storage("Failed to load quiz", err)
	}
	return row, nil
}

// SubmitAnswers grades answers and stores them with the score and completion time.
// Re-submission overwrites the previous attempt.
func (s *Service) SubmitAnswers(ctx context.Context, owner uuid.UUID, rawID string, answers []int) (Result, error) {
	if owner == uuid.Nil {
		return Result{}, apperr.NotAuthenticated()
	}
	row, err := s.load(ctx, owner, rawID)
	if err != nil {
		return Result{}, err
	}
	var items []QuestionItem
	if err := json.Unmarshal(row.Questions, &items); err != nil {
		return Result{}, apperr.Storage("Failed to load quiz", err)
	}

	key := make([]int, len(items))
	for i, it := range items {
		key[i] = it.CorrectAnswer
	}
	outcome, err := s.scorer.Grade(answers, key)
	if err != nil {
		var mismatch *scoring.MismatchError
		if errors.As(err, &mismatch) {
			return Result{}, apperr.Validation("answers", fmt.Sprintf("Expected %d answers, got %d", mismatch.Want, mismatch.Got))
		}
		return Result{}, apperr.Validation("answers", "Each answer must be an option index between 0 and 3, or -1 when unanswered")
	}

	stored := make([]int32, len(answers))
	for i, a := range answers {
		stored[i] = int32(a)
	}
	completedAt := s.opts.Now().UTC()
	id := repository.UUID(row.QuizID)
	if _, err := s.repo.SaveSubmission(ctx, id, owner, stored, int32(outcome.Score), completedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, apperr.NotFound("Quiz not found")
		}
		s.logger.Error().Err(err).Str("quiz_id", id.String()).Msg("failed to store submission")
		return Result{}, apperr.Storage("Failed to submit quiz", err)
	}

	metrics.QuizSubmissions.Inc()
	metrics.QuizScores.Observe(float64(outcome.Score))
	s.invalidate(ctx, owner)

	results := make([]ItemResult, len(items))
	for i, it := range items {
		results[i] = ItemResult{
			Question:      it.Question,
			Options:       it.Options,
			CorrectAnswer: it.CorrectAnswer,
			UserAnswer:    answers[i],
			IsCorrect:     outcome.Marks[i],
			Explanation:   it.Explanation,
		}
	}
	return Result{
		QuizID:         id,
		Score:          outcome.Score,
		CorrectAnswers: outcome.Correct,
		TotalQuestions: outcome.Total,
		CompletedAt:    completedAt,
		Results:        results,
	}, nil
}

// ListQuizzes returns quiz summaries newest first.
func (s *Service) ListQuizzes(ctx context.Context, owner uuid.UUID, filter Filter, page, limit int) (Page, error) {
	if owner == uuid.Nil {
		return Page{}, apperr.NotAuthenticated()
	}
	page, limit = s.paging(page, limit, s.opts.DefaultPageSize)

	var f repository.QuizFilter
	if subject := strings.TrimSpace(filter.Subject); subject != "" {
		f.Subject = &subject
	}
	switch strings.ToLower(strings.TrimSpace(filter.Completed)) {
	case "true":
		f.Completed = ptr(true)
	case "false":
		f.Completed = ptr(false)
	}

	rows, total, err := s.repo.List(ctx, owner, f, limit, (page-1)*limit)
	if err != nil {
		return Page{}, apperr.Storage("Failed to fetch quizzes", err)
	}
	out := Page{Quizzes: make([]Summary, 0, len(rows)), Pagination: NewPagination(page, limit, total)}
	for _, row := range rows {
		q, err := toQuiz(row)
		if err != nil {
			return Page{}, apperr.Storage("Failed to fetch quizzes", err)
		}
		out.Quizzes = append(out.Quizzes, q.summary())
	}
	return out, nil
}

// History returns full quiz records, including answers and explanations, newest first.
// Subject "all" or empty disables the subject filter.
func (s *Service) History(ctx context.Context, owner uuid.UUID, subject string, page, limit int) (History, error) {
	if owner == uuid.Nil {
		return History{}, apperr.NotAuthenticated()
	}
	page, limit = s.paging(page, limit, s.opts.HistoryPageSize)

	var f repository.QuizFilter
	if subject = strings.TrimSpace(subject); subject != "" && !strings.EqualFold(subject, "all") {
		f.Subject = &subject
	}
	rows, total, err := s.repo.List(ctx, owner, f, limit, (page-1)*limit)
	if err != nil {
		return History{}, apperr.Storage("Failed to fetch quiz history", err)
	}
	subjects, err := s.repo.Subjects(ctx, owner)
	if err != nil {
		return History{}, apperr.Storage("Failed to fetch quiz history", err)
	}
	if subjects == nil {
		subjects = []string{}
	}

	out := History{Quizzes: make([]Quiz, 0, len(rows)), Subjects: subjects, Pagination: NewPagination(page, limit, total)}
	for _, row := range rows {
		q, err := toQuiz(row)
		if err != nil {
			return History{}, apperr.Storage("Failed to fetch quiz history", err)
		}
		out.Quizzes = append(out.Quizzes, q)
	}
	return out, nil
}

// DeleteQuizzes removes the listed quizzes, or all of them when all is set.
func (s *Service) DeleteQuizzes(ctx context.Context, owner uuid.UUID, rawIDs []string, all bool) (int64, error) {
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
			// Unparseable ids cannot match a stored quiz.
			if id, perr := uuid.Parse(raw); perr == nil {
				ids = append(ids, id)
			}
		}
		n, err = s.repo.Delete(ctx, owner, ids)
	default:
		return 0, apperr.Validation("quizIds", "Provide quizIds or set deleteAll")
	}
	if err != nil {
		return 0, apperr.Storage("Failed to delete quizzes", err)
	}
	if n > 0 {
		s.invalidate(ctx, owner)
	}
	return n, nil
}

func (s *Service) paging(page, limit, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func (s *Service) invalidate(ctx context.Context, owner uuid.UUID) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, owner)
	}
}

func toQuiz(row queries.Quiz) (Quiz, error) {
	var items []QuestionItem
	if err := json.Unmarshal(row.Questions, &items); err != nil {
		return Quiz{}, fmt.Errorf("decode questions for quiz %s: %w", repository.UUID(row.QuizID), err)
	}
	q := Quiz{
		ID:         repository.UUID(row.QuizID),
		UserID:     repository.UUID(row.UserID),
		Title:      row.Title,
		Subject:    row.Subject,
		Difficulty: row.Difficulty,
		Language:   row.Language,
		Questions:  items,
		CreatedAt:  row.CreatedAt.Time,
	}
	if len(row.UserAnswers) > 0 {
		q.UserAnswers = make([]int, len(row.UserAnswers))
		for i, a := range row.UserAnswers {
			q.UserAnswers[i] = int(a)
		}
	}
	if row.Score.Valid {
		q.Score = ptr(int(row.Score.Int32))
	}
	if row.CompletedAt.Valid {
		q.CompletedAt = ptr(row.CompletedAt.Time)
	}
	return q, nil
}

func (q Quiz) summary() Summary {
	return Summary{
		ID:            q.ID,
		Title:         q.Title,
		Subject:       q.Subject,
		Difficulty:    q.Difficulty,
		Language:      q.Language,
		QuestionCount: len(q.Questions),
		Completed:     q.Completed(),
		Score:         q.Score,
		CompletedAt:   q.CompletedAt,
		CreatedAt:     q.CreatedAt,
	}
}

func ptr[T any](v T) *T { return &v }
