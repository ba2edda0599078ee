package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sanket913/VoiceMitra/internal/db/queries"
)

type questionStore interface {
	CreateQuestion(ctx context.Context, arg queries.CreateQuestionParams) (queries.Question, error)
	ListQuestions(ctx context.Context, arg queries.ListQuestionsParams) ([]queries.Question, error)
	CountQuestions(ctx context.Context, arg queries.CountQuestionsParams) (int64, error)
	DeleteQuestionsByIDs(ctx context.Context, arg queries.DeleteQuestionsByIDsParams) (int64, error)
	DeleteAllQuestions(ctx context.Context, userID pgtype.UUID) (int64, error)
}

// QuestionRepository persists answered Q&A questions.
type QuestionRepository struct {
	store questionStore
}

func NewQuestionRepository(store questionStore) *QuestionRepository {
	return &QuestionRepository{store: store}
}

// Insert stores an answered question.
func (r *QuestionRepository) Insert(ctx context.Context, params queries.CreateQuestionParams) (queries.Question, error) {
	return r.store.CreateQuestion(ctx, params)
}

// List returns one page of questions newest first, plus the total matching count.
func (r *QuestionRepository) List(ctx context.Context, userID uuid.UUID, subject *string, limit, offset int) ([]queries.Question, int64, error) {
	owner := PgUUID(userID)
	items, err := r.store.ListQuestions(ctx, queries.ListQuestionsParams{
		UserID:  owner,
		Subject: PgText(subject),
		Limit:   int32(limit),
		Offset:  int32(offset),
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := r.store.CountQuestions(ctx, queries.CountQuestionsParams{
		UserID:  owner,
		Subject: PgText(subject),
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Delete removes the given questions when they belong to userID.
func (r *QuestionRepository) Delete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.store.DeleteQuestionsByIDs(ctx, queries.DeleteQuestionsByIDsParams{
		UserID:      PgUUID(userID),
		QuestionIDs: pgUUIDs(ids),
	})
}

// DeleteAll removes every question owned by userID.
func (r *QuestionRepository) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.store.DeleteAllQuestions(ctx, PgUUID(userID))
}
