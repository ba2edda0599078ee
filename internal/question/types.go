package question

import (
	"time"

	"github.com/google/uuid"
)

// Question is an answered Q&A exchange.
type Question struct {
	ID           uuid.UUID `json:"id"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	Language     string    `json:"language"`
	Subject      *string   `json:"subject"`
	IsVoiceInput bool      `json:"isVoiceInput"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AskRequest is a new question. Language is detected when empty.
type AskRequest struct {
	Question     string  `json:"question"`
	Language     string  `json:"language"`
	Subject      *string `json:"subject"`
	IsVoiceInput bool    `json:"isVoiceInput"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Page is one page of questions, newest first.
type Page struct {
	Questions  []Question `json:"questions"`
	Pagination Pagination `json:"pagination"`
}
