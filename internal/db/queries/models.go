package queries

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	UserID       pgtype.UUID
	Email        pgtype.Text
	PasswordHash pgtype.Text
	DisplayName  string
	AuthProvider string
	CreatedAt    pgtype.Timestamptz
	LastLoginAt  pgtype.Timestamptz
}

type Question struct {
	QuestionID   pgtype.UUID
	UserID       pgtype.UUID
	Question     string
	Answer       string
	Language     string
	Subject      pgtype.Text
	IsVoiceInput bool
	CreatedAt    pgtype.Timestamptz
}

type Quiz struct {
	QuizID     pgtype.UUID
	UserID     pgtype.UUID
	Title      string
	Subject    string
	Difficulty string
	Language   string
	// Questions is the JSONB array of question items.
	Questions   []byte
	UserAnswers []int32
	Score       pgtype.Int4
	CompletedAt pgtype.Timestamptz
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}
