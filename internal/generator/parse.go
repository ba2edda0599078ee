package generator

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// stripFences removes markdown code fences the model sometimes adds.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// extractArray returns the first balanced array-shaped span in text.
// Brackets inside string literals are ignored. Later spans are never
// considered, even when the first one is not valid JSON.
func extractArray(text string) (string, bool) {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return "", false
	}
	end := matchBracket(text, start)
	if end < 0 {
		return "", false
	}
	return text[start : end+1], true
}

func matchBracket(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

type rawItem struct {
	Question      json.RawMessage `json:"question"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   json.RawMessage `json:"explanation"`
}

// parseItems decodes and validates a model response. It succeeds only when
// every element is well formed and exactly want elements are present.
func parseItems(text string, want int) ([]Item, error) {
	cleaned := stripFences(text)
	if cleaned == "" {
		return nil, &parseError{reason: ReasonEmptyResponse, msg: "response is empty"}
	}

	span, ok := extractArray(cleaned)
	if !ok {
		return nil, &parseError{reason: ReasonMalformedJSON, msg: "no JSON array found in response"}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(span), &elems); err != nil {
		return nil, &parseError{reason: ReasonMalformedJSON, msg: err.Error()}
	}
	if len(elems) != want {
		return nil, &parseError{reason: ReasonSchemaViolation, msg: fmt.Sprintf("expected %d questions, got %d", want, len(elems))}
	}

	items := make([]Item, 0, len(elems))
	for i, elem := range elems {
		item, err := validateItem(elem)
		if err != nil {
			return nil, &parseError{reason: ReasonSchemaViolation, msg: fmt.Sprintf("question %d: %v", i, err)}
		}
		items = append(items, item)
	}
	return items, nil
}

func validateItem(elem json.RawMessage) (Item, error) {
	var raw rawItem
	if err := json.Unmarshal(elem, &raw); err != nil {
		return Item{}, fmt.Errorf("not an object")
	}

	question, err := nonEmptyString(raw.Question)
	if err != nil {
		return Item{}, fmt.Errorf("question %w", err)
	}
	explanation, err := nonEmptyString(raw.Explanation)
	if err != nil {
		return Item{}, fmt.Errorf("explanation %w", err)
	}

	var options []json.RawMessage
	if err := json.Unmarshal(raw.Options, &options); err != nil || len(options) != 4 {
		return Item{}, fmt.Errorf("options must be an array of exactly 4 strings")
	}
	opts := make([]string, 0, 4)
	for j, o := range options {
		s, err := nonEmptyString(o)
		if err != nil {
			return Item{}, fmt.Errorf("option %d %w", j, err)
		}
		opts = append(opts, s)
	}

	idx, ok := answerIndex(raw.CorrectAnswer)
	if !ok {
		return Item{}, fmt.Errorf("correctAnswer must be an integer between 0 and 3")
	}

	return Item{
		Question:      question,
		Options:       opts,
		CorrectAnswer: idx,
		Explanation:   explanation,
	}, nil
}

// answerIndex accepts any JSON number with an integral value in [0,3], so
// 1 and 1.0 are equal. Strings, booleans and fractions are rejected.
func answerIndex(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) || f < 0 || f > 3 {
		return 0, false
	}
	return int(f), true
}

func nonEmptyString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("is missing")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("must not be empty")
	}
	return s, nil
}
