package image

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/SyedFrazAli/linkedin-automation-engine/pkg/errors"
)

const defaultSearchTimeout = 10 * time.Second

// PexelsSearcher queries the Pexels photo search API
type PexelsSearcher struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewPexelsSearcher creates a Pexels-backed image searcher
func NewPexelsSearcher(baseURL, apiKey string, timeout time.Duration) *PexelsSearcher {
	if baseURL == "" {
		baseURL = "https://api.pexels.com/v1"
	}
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	return &PexelsSearcher{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// ID identifies the provider in suggestion provenance
func (p *PexelsSearcher) ID() string { return "pexels" }

// Search returns the top photo for the query, or nil when none match
func (p *PexelsSearcher) Search(ctx context.Context, query string) (*Result, error) {
	if p.apiKey == "" {
		return nil, apperrors.New(apperrors.ErrCodeAuthFailed, "no pexels API key configured")
	}

	endpoint := p.baseURL + "/search?per_page=1&query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build image search request")
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTransport, "image search failed").WithRetryable(true)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, apperrors.New(apperrors.ErrCodeAuthFailed, "pexels API key rejected")
	case http.StatusTooManyRequests:
		return nil, apperrors.New(apperrors.ErrCodeRateLimited, "pexels throttling").WithRetryable(true)
	default:
		return nil, apperrors.New(apperrors.ErrCodeTransport, "unexpected image search status").
			WithContext("status", resp.StatusCode).
			WithRetryable(true)
	}

	var body struct {
		Photos []struct {
			Photographer string `json:"photographer"`
			Src          struct {
				Large string `json:"large"`
			} `json:"src"`
		} `json:"photos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTransport, "decode image search response")
	}
	if len(body.Photos) == 0 {
		return nil, nil
	}

	return &Result{
		URL:         body.Photos[0].Src.Large,
		Attribution: "Photo by " + body.Photos[0].Photographer + " on Pexels",
	}, nil
}
