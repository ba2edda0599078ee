package dashboard

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Supported periods.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

var periods = []string{PeriodWeek, PeriodMonth, PeriodYear}

// ParsePeriod falls back to week for anything unrecognised.
func ParsePeriod(raw string) string {
	p := strings.ToLower(strings.TrimSpace(raw))
	for _, known := range periods {
		if p == known {
			return p
		}
	}
	return PeriodWeek
}

// periodStart returns the beginning of the rolling window ending at now.
func periodStart(now time.Time, period string) time.Time {
	switch period {
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -7)
	}
}

// GeneralSubject labels questions asked without a subject.
const GeneralSubject = "General"

type Counters struct {
	TotalQuestions   int64   `json:"totalQuestions"`
	TotalQuizzes     int64   `json:"totalQuizzes"`
	CompletedQuizzes int64   `json:"completedQuizzes"`
	AverageScore     int     `json:"averageScore"`
	StudyTimeHours   float64 `json:"studyTimeHours"`
	CurrentStreak    int     `json:"currentStreak"`
	MonthlyGoal      int     `json:"monthlyGoal"`
	StreakProgress   float64 `json:"streakProgress"`
	Period           string  `json:"period"`
	PeriodQuestions  int64   `json:"periodQuestions"`
	PeriodQuizzes    int64   `json:"periodQuizzes"`
}

type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int64  `json:"count"`
}

type LanguageCount struct {
	Language string `json:"language"`
	Count    int64  `json:"count"`
}

type RecentQuestion struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Subject   string    `json:"subject"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"createdAt"`
}

type RecentQuiz struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Subject     string    `json:"subject"`
	Language    string    `json:"language"`
	Score       *int      `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

type RecentActivity struct {
	Questions []RecentQuestion `json:"questions"`
	Quizzes   []RecentQuiz     `json:"quizzes"`
}

type Charts struct {
	Subjects       []SubjectCount  `json:"subjects"`
	Languages      []LanguageCount `json:"languages"`
	WeeklyActivity []DayActivity   `json:"weeklyActivity"`
}

// Stats is the dashboard payload for one owner and period.
type Stats struct {
	Stats          Counters       `json:"stats"`
	RecentActivity RecentActivity `json:"recentActivity"`
	Charts         Charts         `json:"charts"`
	GeneratedAt    time.Time      `json:"generatedAt"`
}
