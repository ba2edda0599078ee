package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sanket913/VoiceMitra/internal/db/queries"
)

type activityStore interface {
	CountQuestions(ctx context.Context, arg queries.CountQuestionsParams) (int64, error)
	CountQuizzes(ctx context.Context, arg queries.CountQuizzesParams) (int64, error)
	CountCompletedQuizzesSince(ctx context.Context, arg queries.CountCompletedQuizzesSinceParams) (int64, error)
	QuizScoreSummary(ctx context.Context, userID pgtype.UUID) (queries.QuizScoreSummaryRow, error)
	ListQuestionTimesSince(ctx context.Context, arg queries.ListActivitySinceParams) ([]pgtype.Timestamptz, error)
	ListCompletionTimesSince(ctx context.Context, arg queries.ListActivitySinceParams) ([]pgtype.Timestamptz, error)
	QuestionSubjectCounts(ctx context.Context, userID pgtype.UUID) ([]queries.SubjectCountRow, error)
	QuestionLanguageCounts(ctx context.Context, userID pgtype.UUID) ([]queries.LanguageCountRow, error)
	ListQuestions(ctx context.Context, arg queries.ListQuestionsParams) ([]queries.Question, error)
	ListRecentCompletedQuizzes(ctx context.Context, arg queries.ListRecentParams) ([]queries.Quiz, error)
}

// ActivityRepository reads both the question and quiz tables for dashboards.
type ActivityRepository struct {
	store activityStore
}

func NewActivityRepository(store activityStore) *ActivityRepository {
	return &ActivityRepository{store: store}
}

// Totals holds all-time counters for one user.
type Totals struct {
	Questions        int64
	Quizzes          int64
	CompletedQuizzes int64
	ScoredQuizzes    int64
	ScoreSum         int64
}

// Totals returns all-time counts and the score sum used for averaging.
func (r *ActivityRepository) Totals(ctx context.Context, userID uuid.UUID) (Totals, error) {
	owner := PgUUID(userID)
	var t Totals
	var err error
	if t.Questions, err = r.store.CountQuestions(ctx, queries.CountQuestionsParams{UserID: owner}); err != nil {
		return Totals{}, err
	}
	if t.Quizzes, err = r.store.CountQuizzes(ctx, queries.CountQuizzesParams{UserID: owner}); err != nil {
		return Totals{}, err
	}
	if t.CompletedQuizzes, err = r.store.CountCompletedQuizzesSince(ctx, queries.CountCompletedQuizzesSinceParams{UserID: owner}); err != nil {
		return Totals{}, err
	}
	summary, err := r.store.QuizScoreSummary(ctx, owner)
	if err != nil {
		return Totals{}, err
	}
	t.ScoredQuizzes = summary.Scored
	t.ScoreSum = summary.ScoreSum
	return t, nil
}

// PeriodCounts returns questions asked and quizzes completed since the given instant.
func (r *ActivityRepository) PeriodCounts(ctx context.Context, userID uuid.UUID, since time.Time) (questions, quizzes int64, err error) {
	owner := PgUUID(userID)
	questions, err = r.store.CountQuestions(ctx, queries.CountQuestionsParams{UserID: owner, Since: pgTime(since)})
	if err != nil {
		return 0, 0, err
	}
	quizzes, err = r.store.CountCompletedQuizzesSince(ctx, queries.CountCompletedQuizzesSinceParams{UserID: owner, Since: pgTime(since)})
	if err != nil {
		return 0, 0, err
	}
	return questions, quizzes, nil
}

// ActivityTimes returns question creation and quiz completion instants since the given instant.
func (r *ActivityRepository) ActivityTimes(ctx context.Context, userID uuid.UUID, since time.Time) (questions, completions []time.Time, err error) {
	arg := queries.ListActivitySinceParams{UserID: PgUUID(userID), Since: pgTime(since)}
	qt, err := r.store.ListQuestionTimesSince(ctx, arg)
	if err != nil {
		return nil, nil, err
	}
	ct, err := r.store.ListCompletionTimesSince(ctx, arg)
	if err != nil {
		return nil, nil, err
	}
	return times(qt), times(ct), nil
}

func times(in []pgtype.Timestamptz) []time.Time {
	out := make([]time.Time, 0, len(in))
	for _, t := range in {
		if t.Valid {
			out = append(out, t.Time)
		}
	}
	return out
}

// SubjectCounts groups questions by their raw subject; NULL and empty stay distinct here.
func (r *ActivityRepository) SubjectCounts(ctx context.Context, userID uuid.UUID) ([]queries.SubjectCountRow, error) {
	return r.store.QuestionSubjectCounts(ctx, PgUUID(userID))
}

// LanguageCounts groups questions by language.
func (r *ActivityRepository) LanguageCounts(ctx context.Context, userID uuid.UUID) ([]queries.LanguageCountRow, error) {
	return r.store.QuestionLanguageCounts(ctx, PgUUID(userID))
}

// RecentQuestions returns the newest questions.
func (r *ActivityRepository) RecentQuestions(ctx context.Context, userID uuid.UUID, limit int) ([]queries.Question, error) {
	return r.store.ListQuestions(ctx, queries.ListQuestionsParams{UserID: PgUUID(userID), Limit: int32(limit)})
}

// RecentCompletedQuizzes returns the most recently completed quizzes.
func (r *ActivityRepository) RecentCompletedQuizzes(ctx context.Context, userID uuid.UUID, limit int) ([]queries.Quiz, error) {
	return r.store.ListRecentCompletedQuizzes(ctx, queries.ListRecentParams{UserID: PgUUID(userID), Limit: int32(limit)})
}
