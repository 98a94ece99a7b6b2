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

// UnsplashSearcher queries the Unsplash photo search API
type UnsplashSearcher struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
}

// NewUnsplashSearcher creates an Unsplash-backed image searcher
func NewUnsplashSearcher(baseURL, accessKey string, timeout time.Duration) *UnsplashSearcher {
	if baseURL == "" {
		baseURL = "https://api.unsplash.com"
	}
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	return &UnsplashSearcher{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		accessKey:  accessKey,
	}
}

// ID identifies the provider in suggestion provenance
func (u *UnsplashSearcher) ID() string { return "unsplash" }

// Search returns the top photo for the query, or nil when none match
func (u *UnsplashSearcher) Search(ctx context.Context, query string) (*Result, error) {
	if u.accessKey == "" {
		return nil, apperrors.New(apperrors.ErrCodeAuthFailed, "no unsplash access key configured")
	}

	endpoint := u.baseURL + "/search/photos?per_page=1&query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build image search request")
	}
	req.Header.Set("Authorization", "Client-ID "+u.accessKey)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTransport, "image search failed").WithRetryable(true)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, apperrors.New(apperrors.ErrCodeAuthFailed, "unsplash access key rejected")
	case http.StatusForbidden:
		return nil, apperrors.New(apperrors.ErrCodeRateLimited, "unsplash quota exhausted").WithRetryable(true)
	default:
		return nil, apperrors.New(apperrors.ErrCodeTransport, "unexpected image search status").
			WithContext("status", resp.StatusCode).
			WithRetryable(true)
	}

	var body struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
			} `json:"urls"`
			User struct {
				Name string `json:"name"`
			} `json:"user"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTransport, "decode image search response")
	}
	if len(body.Results) == 0 {
		return nil, nil
	}

	return &Result{
		URL:         body.Results[0].URLs.Regular,
		Attribution: "Photo by " + body.Results[0].User.Name + " on Unsplash",
	}, nil
}
