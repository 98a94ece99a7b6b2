package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/SyedFrazAli/linkedin-automation-engine/pkg/errors"
)

// LinkedInClient posts UGC shares on behalf of the configured author
type LinkedInClient struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	authorURN   string
}

// NewLinkedInClient creates a LinkedIn publish client
func NewLinkedInClient(baseURL, accessToken, authorURN string, timeout time.Duration) *LinkedInClient {
	if baseURL == "" {
		baseURL = "https://api.linkedin.com/v2"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &LinkedInClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		authorURN:   authorURN,
	}
}

// Configured reports whether publish credentials are present
func (c *LinkedInClient) Configured() bool {
	return c.accessToken != "" && c.authorURN != ""
}

// Post creates a public UGC post and returns its id. Authentication
// failures and permission failures surface as distinct error kinds.
func (c *LinkedInClient) Post(ctx context.Context, text string) (string, error) {
	payload := map[string]any{
		"author":         c.authorURN,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary": map[string]any{
					"text": text,
				},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "marshal post payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ugcPosts", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "build post request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeTransport, "post request failed").WithRetryable(true)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
	case http.StatusUnauthorized:
		return "", apperrors.New(apperrors.ErrCodeAuthFailed, "access token invalid or expired")
	case http.StatusForbidden:
		return "", apperrors.New(apperrors.ErrCodeForbidden, "token lacks posting permission")
	case http.StatusTooManyRequests:
		return "", apperrors.New(apperrors.ErrCodeRateLimited, "publish endpoint throttling").WithRetryable(true)
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", apperrors.New(apperrors.ErrCodeTransport, "unexpected publish status").
			WithContext("status", resp.StatusCode).
			WithContext("body", strings.TrimSpace(string(respBody))).
			WithRetryable(true)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		// The post may have landed; surface a transport error so the
		// caller queues rather than drops.
		return "", apperrors.Wrap(err, apperrors.ErrCodeTransport, "decode publish response")
	}
	return out.ID, nil
}

// Name identifies the capability for health aggregation
func (c *LinkedInClient) Name() string { return "publisher" }

// Health reports degraded when credentials are absent
func (c *LinkedInClient) Health(ctx context.Context) error {
	if !c.Configured() {
		return apperrors.New(apperrors.ErrCodeAuthFailed, "publishing credentials are not configured")
	}
	return nil
}
