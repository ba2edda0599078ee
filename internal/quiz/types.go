package quiz

import (
	"time"

	"github.com/google/uuid"

	"github.com/sanket913/VoiceMitra/internal/generator"
)

// QuestionItem is one multiple choice question embedded in a quiz.
type QuestionItem = generator.Item

// Quiz is the full record including answer keys and explanations.
type Quiz struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"userId"`
	Title       string         `json:"title"`
	Subject     string         `json:"subject"`
	Difficulty  string         `json:"difficulty"`
	Language    string         `json:"language"`
	Questions   []QuestionItem `json:"questions"`
	UserAnswers []int          `json:"userAnswers,omitempty"`
	Score       *int           `json:"score"`
	CompletedAt *time.Time     `json:"completedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Completed reports whether answers have been submitted.
func (q Quiz) Completed() bool { return q.CompletedAt != nil }

// Summary is the list view of a quiz: questions are reduced to their count.
type Summary struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Subject       string     `json:"subject"`
	Difficulty    string     `json:"difficulty"`
	Language      string     `json:"language"`
	QuestionCount int        `json:"questionCount"`
	Completed     bool       `json:"completed"`
	Score         *int       `json:"score"`
	CompletedAt   *time.Time `json:"completedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// CreateRequest asks for a freshly generated quiz.
type CreateRequest struct {
	Subject      string
	Difficulty   string
	Language     string
	NumQuestions int
}

// Filter narrows ListQuizzes. Completed accepts "true" or "false"; anything else is ignored.
type Filter struct {
	Subject   string
	Completed string
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination computes the page count for total items.
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Page is a page of quiz summaries.
type Page struct {
	Quizzes    []Summary  `json:"quizzes"`
	Pagination Pagination `json:"pagination"`
}

// History is a page of full quiz records plus the subjects the user has quizzed on.
type History struct {
	Quizzes    []Quiz     `json:"quizzes"`
	Subjects   []string   `json:"subjects"`
	Pagination Pagination `json:"pagination"`
}

// ItemResult is the per-question breakdown returned after submission.
type ItemResult struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	UserAnswer    int      `json:"userAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
	Explanation   string   `json:"explanation"`
}

// Result is the graded view of a submission.
type Result struct {
	QuizID         uuid.UUID    `json:"quizId"`
	Score          int          `json:"score"`
	CorrectAnswers int          `json:"correctAnswers"`
	TotalQuestions int          `json:"totalQuestions"`
	CompletedAt    time.Time    `json:"completedAt"`
	Results        []ItemResult `json:"results"`
}
