package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/SyedFrazAli/linkedin-automation-engine/pkg/errors"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/prompt"
)

// OpenAIGenerator implements TextGenerator against an OpenAI-compatible
// chat completions endpoint.
type OpenAIGenerator struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewOpenAIGenerator creates an OpenAI-compatible text generator
func NewOpenAIGenerator(baseURL, apiKey, model string, timeout time.Duration) *OpenAIGenerator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIGenerator{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

// Model returns the configured model id
func (o *OpenAIGenerator) Model() string { return o.model }

// PromptFormat names the message shape this generator consumes
func (o *OpenAIGenerator) PromptFormat() string { return "openai" }

// Complete sends the role-tagged messages for completion
func (o *OpenAIGenerator) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	if o.apiKey == "" {
		return "", apperrors.New(apperrors.ErrCodeAuthFailed, "no API key configured")
	}

	payload := map[string]any{
		"model":       o.model,
		"messages":    messages,
		"temperature": 0.7,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "marshal completion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "build completion request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeTransport, "completion request failed").WithRetryable(true)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return "", apperrors.New(apperrors.ErrCodeAuthFailed, "completion API key rejected")
	case http.StatusTooManyRequests:
		return "", apperrors.New(apperrors.ErrCodeRateLimited, "completion endpoint throttling").WithRetryable(true)
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", apperrors.New(apperrors.ErrCodeTransport, "unexpected completion status").
			WithContext("status", resp.StatusCode).
			WithContext("body", strings.TrimSpace(string(respBody))).
			WithRetryable(true)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeTransport, "decode completion response")
	}
	if len(out.Choices) == 0 {
		return "", apperrors.New(apperrors.ErrCodeTransport, "completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// Name identifies the capability for health aggregation
func (o *OpenAIGenerator) Name() string { return "text_generator" }

// Health reports degraded when no credential is configured
func (o *OpenAIGenerator) Health(ctx context.Context) error {
	if o.apiKey == "" {
		return apperrors.New(apperrors.ErrCodeAuthFailed, "no API key configured")
	}
	return nil
}
