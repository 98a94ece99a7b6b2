package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/SyedFrazAli/linkedin-automation-engine/pkg/errors"
)

const defaultLookupTimeout = 5 * time.Second

// WikipediaLookup implements ContextLookup against the Wikipedia REST
// summary endpoint. A missing page is a nil result, not an error.
type WikipediaLookup struct {
	httpClient *http.Client
	baseURL    string
}

// NewWikipediaLookup creates a Wikipedia-backed context lookup
func NewWikipediaLookup(baseURL string, timeout time.Duration) *WikipediaLookup {
	if baseURL == "" {
		baseURL = "https://en.wikipedia.org/api/rest_v1"
	}
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &WikipediaLookup{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Lookup fetches a page summary for the keyword
func (w *WikipediaLookup) Lookup(ctx context.Context, keyword string) (*LookupResult, error) {
	endpoint := w.baseURL + "/page/summary/" + url.PathEscape(keyword)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build lookup request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTransport, "context lookup failed").
			WithContext("keyword", keyword).
			WithRetryable(true)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.ErrCodeTransport, "unexpected lookup status").
			WithContext("status", resp.StatusCode).
			WithRetryable(true)
	}

	var body struct {
		Extract     string `json:"extract"`
		ContentURLs struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTransport, "decode lookup response")
	}
	if strings.TrimSpace(body.Extract) == "" {
		return nil, nil
	}

	return &LookupResult{
		Content: body.Extract,
		URL:     body.ContentURLs.Desktop.Page,
	}, nil
}

// Name identifies the capability for health aggregation
func (w *WikipediaLookup) Name() string { return "context_lookup" }

// Health probes a well-known page summary
func (w *WikipediaLookup) Health(ctx context.Context) error {
	_, err := w.Lookup(ctx, "Wikipedia")
	return err
}
