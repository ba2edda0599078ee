package question

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanket913/VoiceMitra/internal/apperr"
	"github.com/sanket913/VoiceMitra/internal/db/dbtest"
	"github.com/sanket913/VoiceMitra/internal/db/queries"
	"github.com/sanket913/VoiceMitra/internal/db/repository"
	"github.com/sanket913/VoiceMitra/internal/generator"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateAnswer(ctx context.Context, question, lang string) (string, error) {
	args := m.Called(ctx, question, lang)
	return args.String(0), args.Error(1)
}

func (m *mockGenerator) DetectLanguage(ctx context.Context, text string) string {
	return m.Called(ctx, text).String(0)
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context, uuid.UUID) { c.calls++ }

func newTestService(gen AnswerGenerator) (*Service, *dbtest.MemStore, *countingInvalidator) {
	store := dbtest.NewMemStore()
	stats := &countingInvalidator{}
	return NewService(gen, repository.NewQuestionRepository(store), stats, zerolog.Nop()), store, stats
}

func TestAskStoresAnswer(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateAnswer", mock.Anything, "What is photosynthesis?", "en").Return("Plants turn light into sugar.", nil).Once()
	svc, _, stats := newTestService(gen)
	owner := uuid.New()
	subject := " Biology "

	q, err := svc.Ask(context.Background(), owner, AskRequest{Question: "  What is photosynthesis? ", Language: "EN", Subject: &subject, IsVoiceInput: true})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, q.ID)
	assert.Equal(t, "What is photosynthesis?", q.Question)
	assert.Equal(t, "Plants turn light into sugar.", q.Answer)
	assert.Equal(t, "en", q.Language)
	require.NotNil(t, q.Subject)
	assert.Equal(t, "Biology", *q.Subject)
	assert.True(t, q.IsVoiceInput)
	assert.Equal(t, 1, stats.calls)
	gen.AssertExpectations(t)

	page, err := svc.List(context.Background(), owner, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Questions, 1)
	assert.Equal(t, q.ID, page.Questions[0].ID)
}

func TestAskDetectsLanguageWhenMissing(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("DetectLanguage", mock.Anything, "प्रकाश संश्लेषण क्या है?").Return("hi").Once()
	gen.On("GenerateAnswer", mock.Anything, "प्रकाश संश्लेषण क्या है?", "hi").Return("उत्तर", nil).Once()
	svc, _, _ := newTestService(gen)

	q, err := svc.Ask(context.Background(), uuid.New(), AskRequest{Question: "प्रकाश संश्लेषण क्या है?"})
	require.NoError(t, err)
	assert.Equal(t, "hi", q.Language)
	assert.Nil(t, q.Subject)
	gen.AssertExpectations(t)
}

func TestAskValidation(t *testing.T) {
	gen := &mockGenerator{}
	svc, _, _ := newTestService(gen)

	_, err := svc.Ask(context.Background(), uuid.New(), AskRequest{Question: "   "})
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, "Question is required", appErr.Message)

	_, err = svc.Ask(context.Background(), uuid.New(), AskRequest{Question: "hi"})
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "Question is too short")

	_, err = svc.Ask(context.Background(), uuid.Nil, AskRequest{Question: "Why is the sky blue?"})
	assert.True(t, apperr.Is(err, apperr.KindNotAuthenticated))

	gen.AssertNotCalled(t, "GenerateAnswer", mock.Anything, mock.Anything, mock.Anything)
}

func TestAskGenerationFailureStoresNothing(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateAnswer", mock.Anything, mock.Anything, "en").
		Return("", apperr.Generation(generator.ReasonTimeout, "timed out", context.DeadlineExceeded)).Once()
	gen.On("GenerateAnswer", mock.Anything, mock.Anything, "ta").
		Return("", errors.New("dial tcp: refused")).Once()
	svc, _, stats := newTestService(gen)
	owner := uuid.New()

	_, err := svc.Ask(context.Background(), owner, AskRequest{Question: "Why is the sky blue?", Language: "en"})
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, generator.ReasonTimeout, appErr.Reason)

	_, err = svc.Ask(context.Background(), owner, AskRequest{Question: "Why is the sky blue?", Language: "ta"})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, generator.ReasonBackendUnavailable, appErr.Reason)

	page, err := svc.List(context.Background(), owner, "", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Questions)
	assert.Zero(t, stats.calls)
}

func TestAskStorageFailure(t *testing.T) {
	gen := &mockGenerator{}
	gen.On("GenerateAnswer", mock.Anything, mock.Anything, mock.Anything).Return("answer", nil)
	svc, store, _ := newTestService(gen)
	store.Fail = errors.New("db down")

	_, err := svc.Ask(context.Background(), uuid.New(), AskRequest{Question: "Why is the sky blue?", Language: "en"})
	assert.True(t, apperr.Is(err, apperr.KindStorage))
}

func seed(store *dbtest.MemStore, owner uuid.UUID, subject string, at time.Time) queries.Question {
	q := queries.Question{
		UserID:    repository.PgUUID(owner),
		Question:  "Q",
		Answer:    "A",
		Language:  "en",
		CreatedAt: pgtype.Timestamptz{Time: at, Valid: true},
	}
	if subject != "" {
		q.Subject = pgtype.Text{String: subject, Valid: true}
	}
	return store.PutQuestion(q)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	svc, store, _ := newTestService(&mockGenerator{})
	owner := uuid.New()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		subject := "Math"
		if i%2 == 1 {
			subject = "Science"
		}
		ids = append(ids, repository.UUID(seed(store, owner, subject, base.Add(time.Duration(i)*time.Hour)).QuestionID))
	}
	seed(store, uuid.New(), "Math", base)

	page, err := svc.List(context.Background(), owner, "", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 2, Limit: 2, Total: 5, Pages: 3}, page.Pagination)
	require.Len(t, page.Questions, 2)
	assert.Equal(t, ids[2], page.Questions[0].ID)
	assert.Equal(t, ids[1], page.Questions[1].ID)

	page, err = svc.List(context.Background(), owner, "Math", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, defaultPageSize, page.Pagination.Limit)

	page, err = svc.List(context.Background(), owner, "all", 1, 1000)
	require.NoError(t, err)
	assert.Len(t, page.Questions, 5)
	assert.Equal(t, maxPageSize, page.Pagination.Limit)
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	svc, store, stats := newTestService(&mockGenerator{})
	owner := uuid.New()
	now := time.Now()
	mine := seed(store, owner, "", now)
	seed(store, owner, "", now)
	theirs := seed(store, uuid.New(), "", now)

	n, err := svc.Delete(context.Background(), owner, []string{
		repository.UUID(mine.QuestionID).String(),
		repository.UUID(theirs.QuestionID).String(),
		"bogus",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, stats.calls)

	n, err = svc.Delete(context.Background(), owner, nil, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.Delete(context.Background(), owner, nil, true)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, stats.calls)

	_, err = svc.Delete(context.Background(), owner, nil, false)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
