package queries

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const questionColumns = `question_id, user_id, question, answer, language, subject, is_voice_input, created_at`

func scanQuestion(row interface{ Scan(...any) error }) (Question, error) {
	var qn Question
	err := row.Scan(
		&qn.QuestionID,
		&qn.UserID,
		&qn.Question,
		&qn.Answer,
		&qn.Language,
		&qn.Subject,
		&qn.IsVoiceInput,
		&qn.CreatedAt,
	)
	return qn, err
}

func collectQuestions(rows pgx.Rows) ([]Question, error) {
	defer rows.Close()
	var items []Question
	for rows.Next() {
		qn, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, qn)
	}
	return items, rows.Err()
}

const createQuestion = `
INSERT INTO questions (user_id, question, answer, language, subject, is_voice_input)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + questionColumns

type CreateQuestionParams struct {
	UserID       pgtype.UUID
	Question     string
	Answer       string
	Language     string
	Subject      pgtype.Text
	IsVoiceInput bool
}

func (q *Queries) CreateQuestion(ctx context.Context, arg CreateQuestionParams) (Question, error) {
	row := q.db.QueryRow(ctx, createQuestion,
		arg.UserID,
		arg.Question,
		arg.Answer,
		arg.Language,
		arg.Subject,
		arg.IsVoiceInput,
	)
	return scanQuestion(row)
}

const listQuestions = `
SELECT ` + questionColumns + `
FROM questions
WHERE user_id = $1
  AND ($2::text IS NULL OR subject = $2)
ORDER BY created_at DESC, question_id DESC
LIMIT $3 OFFSET $4`

type ListQuestionsParams struct {
	UserID  pgtype.UUID
	Subject pgtype.Text
	Limit   int32
	Offset  int32
}

func (q *Queries) ListQuestions(ctx context.Context, arg ListQuestionsParams) ([]Question, error) {
	rows, err := q.db.Query(ctx, listQuestions, arg.UserID, arg.Subject, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

const countQuestions = `
SELECT count(*)
FROM questions
WHERE user_id = $1
  AND ($2::text IS NULL OR subject = $2)
  AND ($3::timestamptz IS NULL OR created_at >= $3)`

type CountQuestionsParams struct {
	UserID  pgtype.UUID
	Subject pgtype.Text
	Since   pgtype.Timestamptz
}

func (q *Queries) CountQuestions(ctx context.Context, arg CountQuestionsParams) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countQuestions, arg.UserID, arg.Subject, arg.Since).Scan(&n)
	return n, err
}

const deleteQuestionsByIDs = `DELETE FROM questions WHERE user_id = $1 AND question_id = ANY($2::uuid[])`

type DeleteQuestionsByIDsParams struct {
	UserID      pgtype.UUID
	QuestionIDs []pgtype.UUID
}

func (q *Queries) DeleteQuestionsByIDs(ctx context.Context, arg DeleteQuestionsByIDsParams) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteQuestionsByIDs, arg.UserID, arg.QuestionIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteAllQuestions = `DELETE FROM questions WHERE user_id = $1`

func (q *Queries) DeleteAllQuestions(ctx context.Context, userID pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteAllQuestions, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
