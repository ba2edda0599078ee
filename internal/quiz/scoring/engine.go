package scoring

import "fmt"

// Unanswered marks a question the student skipped.
const Unanswered = -1

// OptionCount is the number of choices every question carries.
const OptionCount = 4

// ScoringConfig holds configurable scoring constants.
type ScoringConfig struct {
	MaxScore int // default: 100
}

// DefaultScoringConfig returns production defaults.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{MaxScore: 100}
}

// Engine grades answer sheets against answer keys.
type Engine struct {
	config ScoringConfig
}

// NewEngine creates a scoring engine with the provided config.
func NewEngine(config ScoringConfig) *Engine {
	if config.MaxScore <= 0 {
		config.MaxScore = 100
	}
	return &Engine{config: config}
}

// MismatchError reports an answer sheet whose length differs from the key.
type MismatchError struct {
	Want, Got int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected %d answers, got %d", e.Want, e.Got)
}

// RangeError reports an answer that is neither an option index nor Unanswered.
type RangeError struct {
	Index, Value int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("answer %d has invalid value %d", e.Index, e.Value)
}

// Outcome is the graded result of one answer sheet.
type Outcome struct {
	Correct int
	Total   int
	Score   int
	Marks   []bool
}

// Grade compares answers with key position by position.
func (e *Engine) Grade(answers, key []int) (Outcome, error) {
	if len(answers) != len(key) {
		return Outcome{}, &MismatchError{Want: len(key), Got: len(answers)}
	}
	for i, a := range answers {
		if a != Unanswered && (a < 0 || a >= OptionCount) {
			return Outcome{}, &RangeError{Index: i, Value: a}
		}
	}

	out := Outcome{Total: len(key), Marks: make([]bool, len(key))}
	for i, a := range answers {
		if a != Unanswered && a == key[i] {
			out.Marks[i] = true
			out.Correct++
		}
	}
	out.Score = e.Percentage(out.Correct, out.Total)
	return out, nil
}

// Percentage returns MaxScore*correct/total rounded half up. Zero total yields zero.
func (e *Engine) Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	n := e.config.MaxScore * correct
	return (2*n + total) / (2 * total)
}
