package generator

import (
	"context"
	"fmt"
	"strings"
)

// Failure reasons attached to generation errors.
const (
	ReasonEmptyResponse      = "empty_response"
	ReasonMalformedJSON      = "malformed_json"
	ReasonSchemaViolation    = "schema_violation"
	ReasonQuotaExceeded      = "quota_exceeded"
	ReasonSafetyBlocked      = "safety_blocked"
	ReasonNotConfigured      = "not_configured"
	ReasonBackendUnavailable = "backend_unavailable"
	ReasonTimeout            = "timeout"
)

// Quiz size bounds.
const (
	MinQuestions     = 1
	MaxQuestions     = 20
	DefaultQuestions = 5
)

// Difficulty is one of beginner, intermediate or advanced.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// ParseDifficulty accepts any casing and returns the canonical value.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(raw))); d {
	case Beginner, Intermediate, Advanced:
		return d, nil
	default:
		return "", fmt.Errorf("difficulty must be one of beginner, intermediate, advanced")
	}
}

// Item is one generated multiple choice question.
type Item struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// QuizSpec describes the quiz to generate.
type QuizSpec struct {
	Subject    string
	Difficulty string
	Language   string
	Count      int
}

// Request is a single prompt sent to a Backend.
type Request struct {
	Prompt          string
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
}

// Backend sends one prompt to a generative model and returns its raw text.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// BackendError lets a Backend classify its own failures.
type BackendError struct {
	Reason string
	Status int
	Err    error
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend %s (status %d): %v", e.Reason, e.Status, e.Err)
	}
	return fmt.Sprintf("backend %s: %v", e.Reason, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

type parseError struct {
	reason string
	msg    string
}

func (e *parseError) Error() string { return e.reason + ": " + e.msg }
