package queries

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const countCompletedQuizzesSince = `
SELECT count(*)
FROM quizzes
WHERE user_id = $1
  AND completed_at IS NOT NULL
  AND ($2::timestamptz IS NULL OR completed_at >= $2)`

type CountCompletedQuizzesSinceParams struct {
	UserID pgtype.UUID
	Since  pgtype.Timestamptz
}

func (q *Queries) CountCompletedQuizzesSince(ctx context.Context, arg CountCompletedQuizzesSinceParams) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countCompletedQuizzesSince, arg.UserID, arg.Since).Scan(&n)
	return n, err
}

const quizScoreSummary = `
SELECT count(score), COALESCE(sum(score), 0)::bigint
FROM quizzes
WHERE user_id = $1 AND score IS NOT NULL`

type QuizScoreSummaryRow struct {
	Scored   int64
	ScoreSum int64
}

func (q *Queries) QuizScoreSummary(ctx context.Context, userID pgtype.UUID) (QuizScoreSummaryRow, error) {
	var r QuizScoreSummaryRow
	err := q.db.QueryRow(ctx, quizScoreSummary, userID).Scan(&r.Scored, &r.ScoreSum)
	return r, err
}

const listQuestionTimesSince = `
SELECT created_at FROM questions
WHERE user_id = $1 AND created_at >= $2
ORDER BY created_at DESC`

type ListActivitySinceParams struct {
	UserID pgtype.UUID
	Since  pgtype.Timestamptz
}

func (q *Queries) ListQuestionTimesSince(ctx context.Context, arg ListActivitySinceParams) ([]pgtype.Timestamptz, error) {
	rows, err := q.db.Query(ctx, listQuestionTimesSince, arg.UserID, arg.Since)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[pgtype.Timestamptz])
}

const listCompletionTimesSince = `
SELECT completed_at FROM quizzes
WHERE user_id = $1 AND completed_at IS NOT NULL AND completed_at >= $2
ORDER BY completed_at DESC`

func (q *Queries) ListCompletionTimesSince(ctx context.Context, arg ListActivitySinceParams) ([]pgtype.Timestamptz, error) {
	rows, err := q.db.Query(ctx, listCompletionTimesSince, arg.UserID, arg.Since)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[pgtype.Timestamptz])
}

const questionSubjectCounts = `
SELECT subject, count(*) FROM questions
WHERE user_id = $1
GROUP BY subject`

type SubjectCountRow struct {
	Subject pgtype.Text
	Count   int64
}

func (q *Queries) QuestionSubjectCounts(ctx context.Context, userID pgtype.UUID) ([]SubjectCountRow, error) {
	rows, err := q.db.Query(ctx, questionSubjectCounts, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SubjectCountRow
	for rows.Next() {
		var r SubjectCountRow
		if err := rows.Scan(&r.Subject, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const questionLanguageCounts = `
SELECT language, count(*) FROM questions
WHERE user_id = $1
GROUP BY language`

type LanguageCountRow struct {
	Language string
	Count    int64
}

func (q *Queries) QuestionLanguageCounts(ctx context.Context, userID pgtype.UUID) ([]LanguageCountRow, error) {
	rows, err := q.db.Query(ctx, questionLanguageCounts, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LanguageCountRow
	for rows.Next() {
		var r LanguageCountRow
		if err := rows.Scan(&r.Language, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const listRecentCompletedQuizzes = `
SELECT ` + quizColumns + `
FROM quizzes
WHERE user_id = $1 AND completed_at IS NOT NULL
ORDER BY completed_at DESC
LIMIT $2`

type ListRecentParams struct {
	UserID pgtype.UUID
	Limit  int32
}

func (q *Queries) ListRecentCompletedQuizzes(ctx context.Context, arg ListRecentParams) ([]Quiz, error) {
	rows, err := q.db.Query(ctx, listRecentCompletedQuizzes, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	return collectQuizzes(rows)
}
