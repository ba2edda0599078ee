package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanket913/VoiceMitra/internal/apperr"
)

type stubBackend struct {
	generate func(ctx context.Context, req Request) (string, error)
	requests []Request
}

func (s *stubBackend) Generate(ctx context.Context, req Request) (string, error) {
	s.requests = append(s.requests, req)
	return s.generate(ctx, req)
}

func fixed(text string) *stubBackend {
	return &stubBackend{generate: func(context.Context, Request) (string, error) { return text, nil }}
}

func itemsJSON(n int) string {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{
			Question:      fmt.Sprintf("What is %d + %d?", i, i),
			Options:       []string{"0", "2", "4", fmt.Sprint(2 * i)},
			CorrectAnswer: 3,
			Explanation:   fmt.Sprintf("%d + %d = %d", i, i, 2*i),
		}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func newTestService(b Backend) *Service {
	return NewService(b, Options{Timeout: time.Second}, zerolog.Nop())
}

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr), "expected *apperr.Error, got %v", err)
	require.Equal(t, apperr.KindGeneration, appErr.Kind)
	return appErr.Reason
}

func TestGenerateQuizAcceptsFencedResponse(t *testing.T) {
	backend := fixed("Here is your quiz:\n```json\n" + itemsJSON(5) + "\n```\nGood luck!")
	svc := newTestService(backend)

	items, err := svc.GenerateQuiz(context.Background(), QuizSpec{Subject: "Mathematics", Difficulty: "Beginner", Language: "en", Count: 5})
	require.NoError(t, err)
	assert.Len(t, items, 5)
	for _, it := range items {
		assert.Len(t, it.Options, 4)
		assert.GreaterOrEqual(t, it.CorrectAnswer, 0)
		assert.LessOrEqual(t, it.CorrectAnswer, 3)
		assert.NotEmpty(t, it.Explanation)
	}

	require.Len(t, backend.requests, 1)
	prompt := backend.requests[0].Prompt
	assert.Contains(t, prompt, "Subject: Mathematics")
	assert.Contains(t, prompt, "Difficulty: beginner")
	assert.Contains(t, prompt, "Create exactly 5 multiple choice questions")
	assert.Equal(t, 0.8, backend.requests[0].Temperature)
	assert.Equal(t, 4096, backend.requests[0].MaxOutputTokens)
}

func TestGenerateQuizUsesLanguageName(t *testing.T) {
	backend := fixed(itemsJSON(1))
	svc := newTestService(backend)

	_, err := svc.GenerateQuiz(context.Background(), QuizSpec{Subject: "Science", Difficulty: "advanced", Language: "ta", Count: 1})
	require.NoError(t, err)
	assert.Contains(t, backend.requests[0].Prompt, "Language: Tamil")
}

func TestGenerateQuizIgnoresBracketsInsideStrings(t *testing.T) {
	text := `Here is your quiz: [{"question":"Which is an array literal: [1, 2]?","options":["[1, 2]","{1, 2}","(1, 2)","<1, 2>"],"correctAnswer":0,"explanation":"Square brackets ] delimit arrays"}]`
	svc := newTestService(fixed(text))

	items, err := svc.GenerateQuiz(context.Background(), QuizSpec{Subject: "Programming", Difficulty: "beginner", Count: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "[1, 2]", items[0].Options[0])
}

func TestGenerateQuizParsesOnlyFirstArraySpan(t *testing.T) {
	text := `Pick one of [A-D] for each question. [{"question":"Q","options":["a","b","c","d"],"correctAnswer":1,"explanation":"E"}]`
	svc := newTestService(fixed(text))

	_, err := svc.GenerateQuiz(context.Background(), QuizSpec{Subject: "Math", Difficulty: "beginner", Count: 1})
	assert.Equal(t, ReasonMalformedJSON, reasonOf(t, err))
}

func TestGenerateQuizAcceptsIntegralFloatAnswer(t *testing.T) {
	text := `[{"question":"Q","options":["a","b","c","d"],"correctAnswer":2.0,"explanation":"E"}]`
	svc := newTestService(fixed(text))

	items, err := svc.GenerateQuiz(context.Background(), QuizSpec{Subject: "Math", Difficulty: "beginner", Count: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, items[0].CorrectAnswer)
}

func TestGenerateQuizClampsCount(t *testing.T) {
	backend := fixed(itemsJSON(20))
	svc := newTestService(backend)

	items, err := svc.GenerateQuiz(context.Background(), QuizSpec{Subject: "History", Difficulty: "intermediate", Count: 50})
	require.NoError(t, err)
	assert.Len(t, items, 20)
	assert.Contains(t, backend.requests[0].Prompt, "Number of questions: 20")

	backend = fixed(itemsJSON(1))
	svc = newTestService(backend)
	items, err = svc.GenerateQuiz(context.Background(), QuizSpec{Subject: "History", Difficulty: "intermediate", Count: 0})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestGenerateQuizRejectsInvalidInput(t *testing.T) {
	svc := newTestService(fixed(itemsJSON(5)))

	_, err := svc.GenerateQuiz(context.Background(), QuizSpec{Subject: " ", Difficulty: "beginner", Count: 5})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.GenerateQuiz(context.Background(), QuizSpec{Subject: "Math", Difficulty: "expert", Count: 5})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGenerateQuizSchemaViolations(t *testing.T) {
	valid := `{"question":"Q","options":["a","b","c","d"],"correctAnswer":1,"explanation":"E"}`
	cases := map[string]string{
		"count mismatch":        "[" + valid + "," + valid + "]",
		"three options":         `[{"question":"Q","options":["a","b","c"],"correctAnswer":1,"explanation":"E"}]`,
		"empty option":          `[{"question":"Q","options":["a","","c","d"],"correctAnswer":1,"explanation":"E"}]`,
		"answer out of range":   `[{"question":"Q","options":["a","b","c","d"],"correctAnswer":4,"explanation":"E"}]`,
		"negative answer":       `[{"question":"Q","options":["a","b","c","d"],"correctAnswer":-1,"explanation":"E"}]`,
		"fractional answer":     `[{"question":"Q","options":["a","b","c","d"],"correctAnswer":1.5,"explanation":"E"}]`,
		"string answer":         `[{"question":"Q","options":["a","b","c","d"],"correctAnswer":"1","explanation":"E"}]`,
		"null answer":           `[{"question":"Q","options":["a","b","c","d"],"correctAnswer":null,"explanation":"E"}]`,
		"missing explanation":   `[{"question":"Q","options":["a","b","c","d"],"correctAnswer":1}]`,
		"blank question":        `[{"question":"  ","options":["a","b","c","d"],"correctAnswer":1,"explanation":"E"}]`,
		"element not an object": `["just a string"]`,
		"empty array":           `[]`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(fixed(text))
			_, err := svc.GenerateQuiz(context.Background(), QuizSpec{Subject: "Math", Difficulty: "beginner", Count: 1})
			assert.Equal(t, ReasonSchemaViolation, reasonOf(t, err))
		})
	}
}

func TestGenerateQuizMalformedAndEmpty(t *testing.T) {
	svc := newTestService(fixed("Sorry, I cannot help with that."))
	_, err := svc.GenerateQuiz(context.Background(), QuizSpec{Subject: "Math", Difficulty: "beginner", Count: 1})
	assert.Equal(t, ReasonMalformedJSON, reasonOf(t, err))

	svc = newTestService(fixed(`[{"question": "unterminated`))
	_, err = svc.GenerateQuiz(context.Background(), QuizSpec{Subject: "Math", Difficulty: "beginner", Count: 1})
	assert.Equal(t, ReasonMalformedJSON, reasonOf(t, err))

	svc = newTestService(fixed("   \n```\n```"))
	_, err = svc.GenerateQuiz(context.Background(), QuizSpec{Subject: "Math", Difficulty: "beginner", Count: 1})
	assert.Equal(t, ReasonEmptyResponse, reasonOf(t, err))
}

func TestGenerateQuizBackendFailures(t *testing.T) {
	quota := &stubBackend{generate: func(context.Context, Request) (string, error) {
		return "", &BackendError{Reason: ReasonQuotaExceeded, Status: 429, Err: errors.New("RESOURCE_EXHAUSTED")}
	}}
	_, err := newTestService(quota).GenerateQuiz(context.Background(), QuizSpec{Subject: "Math", Difficulty: "beginner", Count: 1})
	assert.Equal(t, ReasonQuotaExceeded, reasonOf(t, err))

	plain := &stubBackend{generate: func(context.Context, Request) (string, error) {
		return "", errors.New("connection refused")
	}}
	_, err = newTestService(plain).GenerateQuiz(context.Background(), QuizSpec{Subject: "Math", Difficulty: "beginner", Count: 1})
	assert.Equal(t, ReasonBackendUnavailable, reasonOf(t, err))

	_, err = NewService(nil, Options{}, zerolog.Nop()).GenerateQuiz(context.Background(), QuizSpec{Subject: "Math", Difficulty: "beginner", Count: 1})
	assert.Equal(t, ReasonNotConfigured, reasonOf(t, err))
}

func TestGenerateQuizTimeout(t *testing.T) {
	slow := &stubBackend{generate: func(ctx context.Context, _ Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	svc := NewService(slow, Options{Timeout: 20 * time.Millisecond}, zerolog.Nop())

	_, err := svc.GenerateQuiz(context.Background(), QuizSpec{Subject: "Math", Difficulty: "beginner", Count: 1})
	assert.Equal(t, ReasonTimeout, reasonOf(t, err))
}

func TestGenerateAnswer(t *testing.T) {
	backend := fixed("  Photosynthesis converts light into chemical energy.  ")
	svc := newTestService(backend)

	answer, err := svc.GenerateAnswer(context.Background(), "What is photosynthesis?", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis converts light into chemical energy.", answer)
	assert.Contains(t, backend.requests[0].Prompt, "native script of Hindi")
	assert.Equal(t, 2048, backend.requests[0].MaxOutputTokens)

	_, err = newTestService(fixed("   ")).GenerateAnswer(context.Background(), "What is photosynthesis?", "en")
	assert.Equal(t, ReasonEmptyResponse, reasonOf(t, err))
}

func TestGenerateAnswerEnglishHasNoScriptInstruction(t *testing.T) {
	backend := fixed("ok")
	_, err := newTestService(backend).GenerateAnswer(context.Background(), "Why is the sky blue?", "en")
	require.NoError(t, err)
	assert.False(t, strings.Contains(backend.requests[0].Prompt, "native script"))
}

func TestDetectLanguage(t *testing.T) {
	svc := newTestService(fixed(" mr\n"))
	assert.Equal(t, "mr", svc.DetectLanguage(context.Background(), "प्रकाशसंश्लेषण म्हणजे काय?"))

	svc = newTestService(fixed("French"))
	assert.Equal(t, "hi", svc.DetectLanguage(context.Background(), "प्रकाश संश्लेषण क्या है?"))

	svc = NewService(nil, Options{}, zerolog.Nop())
	assert.Equal(t, "ta", svc.DetectLanguage(context.Background(), "ஒளிச்சேர்க்கை"))
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty(" ADVANCED ")
	require.NoError(t, err)
	assert.Equal(t, Advanced, d)

	_, err = ParseDifficulty("hard")
	assert.Error(t, err)
}
