// Package gemini implements generator.Backend with the Gemini API SDK.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/sanket913/VoiceMitra/internal/generator"
)

const defaultModel = "gemini-1.5-flash"

// Config holds connection details for the Gemini API. BaseURL is only
// overridden in tests.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client implements generator.Backend.
type Client struct {
	models *genai.Models
	model  string
	logger zerolog.Logger
}

var _ generator.Backend = (*Client)(nil)

// NewClient builds an SDK client. An empty API key yields a Client whose
// calls fail with ReasonNotConfigured.
func NewClient(ctx context.Context, cfg Config, logger zerolog.Logger) (*Client, error) {
	model := strings.TrimPrefix(cfg.Model, "models/")
	if model == "" {
		model = defaultModel
	}
	c := &Client{
		model:  model,
		logger: logger.With().Str("component", "gemini").Str("model", model).Logger(),
	}
	if cfg.APIKey == "" {
		return c, nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL, APIVersion: "v1beta"},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	c.models = sdk.Models
	return c, nil
}

// Generate sends one prompt and returns the concatenated candidate text.
func (c *Client) Generate(ctx context.Context, req generator.Request) (string, error) {
	if c.models == nil {
		return "", &generator.BackendError{Reason: generator.ReasonNotConfigured, Err: errors.New("GEMINI_API_KEY is not configured")}
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		TopK:            genai.Ptr(float32(req.TopK)),
		TopP:            genai.Ptr(float32(req.TopP)),
		MaxOutputTokens: int32(req.MaxOutputTokens),
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", classify(err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" &&
		resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return "", &generator.BackendError{Reason: generator.ReasonSafetyBlocked, Err: fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)}
	}
	if len(resp.Candidates) == 0 {
		return "", &generator.BackendError{Reason: generator.ReasonEmptyResponse, Err: errors.New("no candidates returned")}
	}

	cand := resp.Candidates[0]
	var sb strings.Builder
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p != nil {
				sb.WriteString(p.Text)
			}
		}
	}
	text := sb.String()

	if strings.TrimSpace(text) == "" {
		if cand.FinishReason == genai.FinishReasonSafety {
			return "", &generator.BackendError{Reason: generator.ReasonSafetyBlocked, Err: errors.New("candidate blocked by safety filters")}
		}
		return "", &generator.BackendError{Reason: generator.ReasonEmptyResponse, Err: fmt.Errorf("empty candidate (finish reason %q)", cand.FinishReason)}
	}

	c.logger.Debug().
		Str("finish_reason", string(cand.FinishReason)).
		Int("chars", len(text)).
		Msg("gemini response received")
	return text, nil
}

// classify maps SDK errors onto generator reasons.
func classify(err error) error {
	apiErr, ok := asAPIError(err)
	if !ok {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return &generator.BackendError{Reason: generator.ReasonMalformedJSON, Err: err}
		}
		return &generator.BackendError{Reason: generator.ReasonBackendUnavailable, Err: err}
	}

	reason := generator.ReasonBackendUnavailable
	switch {
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
		reason = generator.ReasonQuotaExceeded
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden || hasDetailReason(apiErr, "API_KEY_INVALID"):
		reason = generator.ReasonNotConfigured
	case strings.Contains(apiErr.Message, "SAFETY"):
		reason = generator.ReasonSafetyBlocked
	}
	return &generator.BackendError{Reason: reason, Status: apiErr.Code, Err: err}
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return genai.APIError{}, false
}

func hasDetailReason(apiErr genai.APIError, reason string) bool {
	if strings.Contains(apiErr.Message, reason) {
		return true
	}
	for _, d := range apiErr.Details {
		if r, _ := d["reason"].(string); r == reason {
			return true
		}
	}
	return false
}
