// Package dbtest provides an in-memory stand-in for the query layer so that
// repositories and services can be exercised without Postgres.
package dbtest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sanket913/VoiceMitra/internal/db/queries"
)

// ErrDuplicateEmail mirrors the unique constraint on users.email.
var ErrDuplicateEmail = errors.New("duplicate key value violates unique constraint \"users_email_key\"")

// MemStore implements every method of queries.Queries in memory.
type MemStore struct {
	mu        sync.Mutex
	users     map[[16]byte]queries.User
	questions map[[16]byte]queries.Question
	quizzes   map[[16]byte]queries.Quiz

	// Now is used for created_at defaults. Tests may replace it.
	Now  func() time.Time
	last time.Time
	// Fail, when set, is returned by every call.
	Fail error
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:     map[[16]byte]queries.User{},
		questions: map[[16]byte]queries.Question{},
		quizzes:   map[[16]byte]queries.Quiz{},
		Now:       time.Now,
	}
}

// now returns strictly increasing times so insertion order is preserved
// when sorting by created_at.
func (m *MemStore) now() time.Time {
	t := m.Now()
	if !t.After(m.last) {
		t = m.last.Add(time.Microsecond)
	}
	m.last = t
	return t
}

func newID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func ts(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// PutQuestion stores a question as is, for seeding fixtures with fixed timestamps.
func (m *MemStore) PutQuestion(q queries.Question) queries.Question {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !q.QuestionID.Valid {
		q.QuestionID = newID()
	}
	m.questions[q.QuestionID.Bytes] = q
	return q
}

// PutQuiz stores a quiz as is, for seeding fixtures with fixed timestamps.
func (m *MemStore) PutQuiz(z queries.Quiz) queries.Quiz {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !z.QuizID.Valid {
		z.QuizID = newID()
	}
	m.quizzes[z.QuizID.Bytes] = z
	return z
}

// QuizCount returns the number of stored quizzes.
func (m *MemStore) QuizCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.quizzes)
}

// Users

func (m *MemStore) CreateUser(_ context.Context, arg queries.CreateUserParams) (queries.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return queries.User{}, m.Fail
	}
	if arg.Email.Valid {
		for _, u := range m.users {
			if u.Email.Valid && strings.EqualFold(u.Email.String, arg.Email.String) {
				return queries.User{}, ErrDuplicateEmail
			}
		}
	}
	u := queries.User{
		UserID:       newID(),
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		DisplayName:  arg.DisplayName,
		AuthProvider: arg.AuthProvider,
		CreatedAt:    ts(m.now()),
	}
	m.users[u.UserID.Bytes] = u
	return u, nil
}

func (m *MemStore) GetUserByEmail(_ context.Context, email pgtype.Text) (queries.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return queries.User{}, m.Fail
	}
	for _, u := range m.users {
		if u.Email.Valid && strings.EqualFold(u.Email.String, email.String) {
			return u, nil
		}
	}
	return queries.User{}, pgx.ErrNoRows
}

func (m *MemStore) GetUserByID(_ context.Context, userID pgtype.UUID) (queries.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return queries.User{}, m.Fail
	}
	if u, ok := m.users[userID.Bytes]; ok {
		return u, nil
	}
	return queries.User{}, pgx.ErrNoRows
}

func (m *MemStore) UpdateUserLogin(_ context.Context, userID pgtype.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if u, ok := m.users[userID.Bytes]; ok {
		u.LastLoginAt = ts(m.now())
		m.users[userID.Bytes] = u
	}
	return nil
}

func (m *MemStore) UpdateUserPassword(_ context.Context, arg queries.UpdateUserPasswordParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if u, ok := m.users[arg.UserID.Bytes]; ok {
		u.PasswordHash = arg.PasswordHash
		m.users[arg.UserID.Bytes] = u
	}
	return nil
}

// Quizzes

func (m *MemStore) CreateQuiz(_ context.Context, arg queries.CreateQuizParams) (queries.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return queries.Quiz{}, m.Fail
	}
	now := ts(m.now())
	z := queries.Quiz{
		QuizID:     newID(),
		UserID:     arg.UserID,
		Title:      arg.Title,
		Subject:    arg.Subject,
		Difficulty: arg.Difficulty,
		Language:   arg.Language,
		Questions:  append([]byte(nil), arg.Questions...),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.quizzes[z.QuizID.Bytes] = z
	return z, nil
}

func (m *MemStore) GetQuizForUser(_ context.Context, arg queries.GetQuizForUserParams) (queries.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return queries.Quiz{}, m.Fail
	}
	z, ok := m.quizzes[arg.QuizID.Bytes]
	if !ok || z.UserID.Bytes != arg.UserID.Bytes {
		return queries.Quiz{}, pgx.ErrNoRows
	}
	return z, nil
}

func (m *MemStore) SubmitQuizAnswers(_ context.Context, arg queries.SubmitQuizAnswersParams) (queries.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return queries.Quiz{}, m.Fail
	}
	z, ok := m.quizzes[arg.QuizID.Bytes]
	if !ok || z.UserID.Bytes != arg.UserID.Bytes {
		return queries.Quiz{}, pgx.ErrNoRows
	}
	z.UserAnswers = append([]int32(nil), arg.UserAnswers...)
	z.Score = pgtype.Int4{Int32: arg.Score, Valid: true}
	z.CompletedAt = arg.CompletedAt
	z.UpdatedAt = arg.CompletedAt
	m.quizzes[z.QuizID.Bytes] = z
	return z, nil
}

func quizMatches(z queries.Quiz, user pgtype.UUID, subject pgtype.Text, completed pgtype.Bool) bool {
	if z.UserID.Bytes != user.Bytes {
		return false
	}
	if subject.Valid && z.Subject != subject.String {
		return false
	}
	if completed.Valid && z.CompletedAt.Valid != completed.Bool {
		return false
	}
	return true
}

func (m *MemStore) ListQuizzes(_ context.Context, arg queries.ListQuizzesParams) ([]queries.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	var out []queries.Quiz
	for _, z := range m.quizzes {
		if quizMatches(z, arg.UserID, arg.Subject, arg.Completed) {
			out = append(out, z)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Time.After(out[j].CreatedAt.Time)
	})
	return page(out, arg.Limit, arg.Offset), nil
}

func (m *MemStore) CountQuizzes(_ context.Context, arg queries.CountQuizzesParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}
	var n int64
	for _, z := range m.quizzes {
		if quizMatches(z, arg.UserID, arg.Subject, arg.Completed) {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) ListQuizSubjects(_ context.Context, userID pgtype.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	seen := map[string]bool{}
	var out []string
	for _, z := range m.quizzes {
		if z.UserID.Bytes == userID.Bytes && !seen[z.Subject] {
			seen[z.Subject] = true
			out = append(out, z.Subject)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemStore) DeleteQuizzesByIDs(_ context.Context, arg queries.DeleteQuizzesByIDsParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}
	var n int64
	for _, id := range arg.QuizIDs {
		if z, ok := m.quizzes[id.Bytes]; ok && z.UserID.Bytes == arg.UserID.Bytes {
			delete(m.quizzes, id.Bytes)
			n++
		}
	}
	return n, nil
}

func (m *MemStore) DeleteAllQuizzes(_ context.Context, userID pgtype.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}
	var n int64
	for id, z := range m.quizzes {
		if z.UserID.Bytes == userID.Bytes {
			delete(m.quizzes, id)
			n++
		}
	}
	return n, nil
}

// Questions

func (m *MemStore) CreateQuestion(_ context.Context, arg queries.CreateQuestionParams) (queries.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return queries.Question{}, m.Fail
	}
	qn := queries.Question{
		QuestionID:   newID(),
		UserID:       arg.UserID,
		Question:     arg.Question,
		Answer:       arg.Answer,
		Language:     arg.Language,
		Subject:      arg.Subject,
		IsVoiceInput: arg.IsVoiceInput,
		CreatedAt:    ts(m.now()),
	}
	m.questions[qn.QuestionID.Bytes] = qn
	return qn, nil
}

func questionMatches(qn queries.Question, user pgtype.UUID, subject pgtype.Text, since pgtype.Timestamptz) bool {
	if qn.UserID.Bytes != user.Bytes {
		return false
	}
	if subject.Valid && (!qn.Subject.Valid || qn.Subject.String != subject.String) {
		return false
	}
	if since.Valid && qn.CreatedAt.Time.Before(since.Time) {
		return false
	}
	return true
}

func (m *MemStore) ListQuestions(_ context.Context, arg queries.ListQuestionsParams) ([]queries.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	var out []queries.Question
	for _, qn := range m.questions {
		if questionMatches(qn, arg.UserID, arg.Subject, pgtype.Timestamptz{}) {
			out = append(out, qn)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Time.After(out[j].CreatedAt.Time)
	})
	return page(out, arg.Limit, arg.Offset), nil
}

func (m *MemStore) CountQuestions(_ context.Context, arg queries.CountQuestionsParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}
	var n int64
	for _, qn := range m.questions {
		if questionMatches(qn, arg.UserID, arg.Subject, arg.Since) {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) DeleteQuestionsByIDs(_ context.Context, arg queries.DeleteQuestionsByIDsParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}
	var n int64
	for _, id := range arg.QuestionIDs {
		if qn, ok := m.questions[id.Bytes]; ok && qn.UserID.Bytes == arg.UserID.Bytes {
			delete(m.questions, id.Bytes)
			n++
		}
	}
	return n, nil
}

func (m *MemStore) DeleteAllQuestions(_ context.Context, userID pgtype.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}
	var n int64
	for id, qn := range m.questions {
		if qn.UserID.Bytes == userID.Bytes {
			delete(m.questions, id)
			n++
		}
	}
	return n, nil
}

// Activity

func (m *MemStore) CountCompletedQuizzesSince(_ context.Context, arg queries.CountCompletedQuizzesSinceParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return 0, m.Fail
	}
	var n int64
	for _, z := range m.quizzes {
		if z.UserID.Bytes != arg.UserID.Bytes || !z.CompletedAt.Valid {
			continue
		}
		if arg.Since.Valid && z.CompletedAt.Time.Before(arg.Since.Time) {
			continue
		}
		n++
	}
	return n, nil
}

func (m *MemStore) QuizScoreSummary(_ context.Context, userID pgtype.UUID) (queries.QuizScoreSummaryRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return queries.QuizScoreSummaryRow{}, m.Fail
	}
	var r queries.QuizScoreSummaryRow
	for _, z := range m.quizzes {
		if z.UserID.Bytes == userID.Bytes && z.Score.Valid {
			r.Scored++
			r.ScoreSum += int64(z.Score.Int32)
		}
	}
	return r, nil
}

func (m *MemStore) ListQuestionTimesSince(_ context.Context, arg queries.ListActivitySinceParams) ([]pgtype.Timestamptz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	var out []pgtype.Timestamptz
	for _, qn := range m.questions {
		if qn.UserID.Bytes == arg.UserID.Bytes && !qn.CreatedAt.Time.Before(arg.Since.Time) {
			out = append(out, qn.CreatedAt)
		}
	}
	return out, nil
}

func (m *MemStore) ListCompletionTimesSince(_ context.Context, arg queries.ListActivitySinceParams) ([]pgtype.Timestamptz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	var out []pgtype.Timestamptz
	for _, z := range m.quizzes {
		if z.UserID.Bytes == arg.UserID.Bytes && z.CompletedAt.Valid && !z.CompletedAt.Time.Before(arg.Since.Time) {
			out = append(out, z.CompletedAt)
		}
	}
	return out, nil
}

func (m *MemStore) QuestionSubjectCounts(_ context.Context, userID pgtype.UUID) ([]queries.SubjectCountRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	type key struct {
		valid bool
		s     string
	}
	counts := map[key]int64{}
	for _, qn := range m.questions {
		if qn.UserID.Bytes == userID.Bytes {
			counts[key{qn.Subject.Valid, qn.Subject.String}]++
		}
	}
	out := make([]queries.SubjectCountRow, 0, len(counts))
	for k, n := range counts {
		out = append(out, queries.SubjectCountRow{Subject: pgtype.Text{String: k.s, Valid: k.valid}, Count: n})
	}
	return out, nil
}

func (m *MemStore) QuestionLanguageCounts(_ context.Context, userID pgtype.UUID) ([]queries.LanguageCountRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	counts := map[string]int64{}
	for _, qn := range m.questions {
		if qn.UserID.Bytes == userID.Bytes {
			counts[qn.Language]++
		}
	}
	out := make([]queries.LanguageCountRow, 0, len(counts))
	for lang, n := range counts {
		out = append(out, queries.LanguageCountRow{Language: lang, Count: n})
	}
	return out, nil
}

func (m *MemStore) ListRecentCompletedQuizzes(_ context.Context, arg queries.ListRecentParams) ([]queries.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	var out []queries.Quiz
	for _, z := range m.quizzes {
		if z.UserID.Bytes == arg.UserID.Bytes && z.CompletedAt.Valid {
			out = append(out, z)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.Time.After(out[j].CompletedAt.Time)
	})
	return page(out, arg.Limit, 0), nil
}

func page[T any](items []T, limit, offset int32) []T {
	if offset < 0 {
		offset = 0
	}
	if int(offset) >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit >= 0 && int(limit) < len(items) {
		items = items[:limit]
	}
	return items
}
