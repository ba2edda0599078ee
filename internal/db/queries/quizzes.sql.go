package queries

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const quizColumns = `quiz_id, user_id, title, subject, difficulty, language, questions,
	user_answers, score, completed_at, created_at, updated_at`

func scanQuiz(row interface{ Scan(...any) error }) (Quiz, error) {
	var z Quiz
	err := row.Scan(
		&z.QuizID,
		&z.UserID,
		&z.Title,
		&z.Subject,
		&z.Difficulty,
		&z.Language,
		&z.Questions,
		&z.UserAnswers,
		&z.Score,
		&z.CompletedAt,
		&z.CreatedAt,
		&z.UpdatedAt,
	)
	return z, err
}

func collectQuizzes(rows pgx.Rows) ([]Quiz, error) {
	defer rows.Close()
	var items []Quiz
	for rows.Next() {
		z, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, z)
	}
	return items, rows.Err()
}

const createQuiz = `
INSERT INTO quizzes (user_id, title, subject, difficulty, language, questions)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + quizColumns

type CreateQuizParams struct {
	UserID     pgtype.UUID
	Title      string
	Subject    string
	Difficulty string
	Language   string
	Questions  []byte
}

func (q *Queries) CreateQuiz(ctx context.Context, arg CreateQuizParams) (Quiz, error) {
	row := q.db.QueryRow(ctx, createQuiz,
		arg.UserID,
		arg.Title,
		arg.Subject,
		arg.Difficulty,
		arg.Language,
		arg.Questions,
	)
	return scanQuiz(row)
}

const getQuizForUser = `SELECT ` + quizColumns + ` FROM quizzes WHERE quiz_id = $1 AND user_id = $2`

type GetQuizForUserParams struct {
	QuizID pgtype.UUID
	UserID pgtype.UUID
}

func (q *Queries) GetQuizForUser(ctx context.Context, arg GetQuizForUserParams) (Quiz, error) {
	return scanQuiz(q.db.QueryRow(ctx, getQuizForUser, arg.QuizID, arg.UserID))
}

// Answers, score and completion time are written together so the
// score/completed_at pairing can never be observed half applied.
const submitQuizAnswers = `
UPDATE quizzes
SET user_answers = $3, score = $4, completed_at = $5, updated_at = $5
WHERE quiz_id = $1 AND user_id = $2
RETURNING ` + quizColumns

type SubmitQuizAnswersParams struct {
	QuizID      pgtype.UUID
	UserID      pgtype.UUID
	UserAnswers []int32
	Score       int32
	CompletedAt pgtype.Timestamptz
}

func (q *Queries) SubmitQuizAnswers(ctx context.Context, arg SubmitQuizAnswersParams) (Quiz, error) {
	row := q.db.QueryRow(ctx, submitQuizAnswers,
		arg.QuizID,
		arg.UserID,
		arg.UserAnswers,
		arg.Score,
		arg.CompletedAt,
	)
	return scanQuiz(row)
}

const listQuizzes = `
SELECT ` + quizColumns + `
FROM quizzes
WHERE user_id = $1
  AND ($2::text IS NULL OR subject = $2)
  AND ($3::boolean IS NULL OR (completed_at IS NOT NULL) = $3)
ORDER BY created_at DESC, quiz_id DESC
LIMIT $4 OFFSET $5`

type ListQuizzesParams struct {
	UserID    pgtype.UUID
	Subject   pgtype.Text
	Completed pgtype.Bool
	Limit     int32
	Offset    int32
}

func (q *Queries) ListQuizzes(ctx context.Context, arg ListQuizzesParams) ([]Quiz, error) {
	rows, err := q.db.Query(ctx, listQuizzes, arg.UserID, arg.Subject, arg.Completed, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collectQuizzes(rows)
}

const countQuizzes = `
SELECT count(*)
FROM quizzes
WHERE user_id = $1
  AND ($2::text IS NULL OR subject = $2)
  AND ($3::boolean IS NULL OR (completed_at IS NOT NULL) = $3)`

type CountQuizzesParams struct {
	UserID    pgtype.UUID
	Subject   pgtype.Text
	Completed pgtype.Bool
}

func (q *Queries) CountQuizzes(ctx context.Context, arg CountQuizzesParams) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countQuizzes, arg.UserID, arg.Subject, arg.Completed).Scan(&n)
	return n, err
}

const listQuizSubjects = `SELECT DISTINCT subject FROM quizzes WHERE user_id = $1 ORDER BY subject`

func (q *Queries) ListQuizSubjects(ctx context.Context, userID pgtype.UUID) ([]string, error) {
	rows, err := q.db.Query(ctx, listQuizSubjects, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

const deleteQuizzesByIDs = `DELETE FROM quizzes WHERE user_id = $1 AND quiz_id = ANY($2::uuid[])`

type DeleteQuizzesByIDsParams struct {
	UserID  pgtype.UUID
	QuizIDs []pgtype.UUID
}

func (q *Queries) DeleteQuizzesByIDs(ctx context.Context, arg DeleteQuizzesByIDsParams) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteQuizzesByIDs, arg.UserID, arg.QuizIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteAllQuizzes = `DELETE FROM quizzes WHERE user_id = $1`

func (q *Queries) DeleteAllQuizzes(ctx context.Context, userID pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteAllQuizzes, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
