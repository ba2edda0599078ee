package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sanket913/VoiceMitra/internal/db/queries"
)

type quizStore interface {
	CreateQuiz(ctx context.Context, arg queries.CreateQuizParams) (queries.Quiz, error)
	GetQuizForUser(ctx context.Context, arg queries.GetQuizForUserParams) (queries.Quiz, error)
	SubmitQuizAnswers(ctx context.Context, arg queries.SubmitQuizAnswersParams) (queries.Quiz, error)
	ListQuizzes(ctx context.Context, arg queries.ListQuizzesParams) ([]queries.Quiz, error)
	CountQuizzes(ctx context.Context, arg queries.CountQuizzesParams) (int64, error)
	ListQuizSubjects(ctx context.Context, userID pgtype.UUID) ([]string, error)
	DeleteQuizzesByIDs(ctx context.Context, arg queries.DeleteQuizzesByIDsParams) (int64, error)
	DeleteAllQuizzes(ctx context.Context, userID pgtype.UUID) (int64, error)
}

// QuizFilter narrows quiz listings. Nil fields are not applied.
type QuizFilter struct {
	Subject   *string
	Completed *bool
}

// QuizRepository persists quizzes. Every read and write is scoped by owner.
type QuizRepository struct {
	store quizStore
}

func NewQuizRepository(store quizStore) *QuizRepository {
	return &QuizRepository{store: store}
}

// Create inserts a freshly generated quiz.
func (r *QuizRepository) Create(ctx context.Context, params queries.CreateQuizParams) (queries.Quiz, error) {
	return r.store.CreateQuiz(ctx, params)
}

// GetForUser returns ErrNotFound both for missing quizzes and for quizzes owned by someone else.
func (r *QuizRepository) GetForUser(ctx context.Context, quizID, userID uuid.UUID) (queries.Quiz, error) {
	z, err := r.store.GetQuizForUser(ctx, queries.GetQuizForUserParams{
		QuizID: PgUUID(quizID),
		UserID: PgUUID(userID),
	})
	return z, notFound(err)
}

// SaveSubmission overwrites answers, score and completion time in one statement.
func (r *QuizRepository) SaveSubmission(ctx context.Context, quizID, userID uuid.UUID, answers []int32, score int32, completedAt time.Time) (queries.Quiz, error) {
	z, err := r.store.SubmitQuizAnswers(ctx, queries.SubmitQuizAnswersParams{
		QuizID:      PgUUID(quizID),
		UserID:      PgUUID(userID),
		UserAnswers: answers,
		Score:       score,
		CompletedAt: pgTime(completedAt),
	})
	return z, notFound(err)
}

// List returns one page of quizzes newest first, plus the total matching count.
func (r *QuizRepository) List(ctx context.Context, userID uuid.UUID, filter QuizFilter, limit, offset int) ([]queries.Quiz, int64, error) {
	owner := PgUUID(userID)
	subject := PgText(filter.Subject)
	completed := pgBool(filter.Completed)

	items, err := r.store.ListQuizzes(ctx, queries.ListQuizzesParams{
		UserID:    owner,
		Subject:   subject,
		Completed: completed,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := r.store.CountQuizzes(ctx, queries.CountQuizzesParams{
		UserID:    owner,
		Subject:   subject,
		Completed: completed,
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Subjects lists the distinct subjects the user has quizzes for.
func (r *QuizRepository) Subjects(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return r.store.ListQuizSubjects(ctx, PgUUID(userID))
}

// Delete removes the given quizzes when they belong to userID.
func (r *QuizRepository) Delete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.store.DeleteQuizzesByIDs(ctx, queries.DeleteQuizzesByIDsParams{
		UserID:  PgUUID(userID),
		QuizIDs: pgUUIDs(ids),
	})
}

// DeleteAll removes every quiz owned by userID.
func (r *QuizRepository) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.store.DeleteAllQuizzes(ctx, PgUUID(userID))
}
