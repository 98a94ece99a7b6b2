// Package github wraps the GitHub REST API for recent repository activity.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/SyedFrazAli/linkedin-automation-engine/pkg/errors"
)

const defaultTimeout = 10 * time.Second

// Commit is a recent commit on the watched repository
type Commit struct {
	SHA     string
	Message string
	Author  string
	Date    time.Time
	URL     string
}

// Issue is a recently opened issue
type Issue struct {
	Number    int
	Title     string
	Labels    []string
	Author    string
	CreatedAt time.Time
	URL       string
}

// Event is a miscellaneous repository event not covered by the commit or
// issue streams
type Event struct {
	ID          string
	Type        string
	Description string
	CreatedAt   time.Time
}

// ReadmeInfo describes the repository README revision
type ReadmeInfo struct {
	Repo      string
	UpdatedAt time.Time
	URL       string
}

// Client talks to the GitHub REST API for a single repository
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	owner      string
	repo       string
}

// NewClient creates a GitHub client for owner/repo. Token may be empty for
// public repositories, at the cost of a lower rate limit.
func NewClient(baseURL, token, owner, repo string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		owner:      owner,
		repo:       repo,
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "build github request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeTransport, "github request failed").
			WithContext("path", path).
			WithRetryable(true)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.New(apperrors.ErrCodeAuthFailed, "github token rejected")
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return apperrors.New(apperrors.ErrCodeRateLimited, "github rate limit exhausted").WithRetryable(true)
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.New(apperrors.ErrCodeForbidden, "github access forbidden").WithContext("path", path)
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.New(apperrors.ErrCodeNotFound, "github resource not found").WithContext("path", path)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.New(apperrors.ErrCodeTransport, "unexpected github status").
			WithContext("status", resp.StatusCode).
			WithContext("body", strings.TrimSpace(string(body))).
			WithRetryable(true)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeTransport, "decode github response")
	}
	return nil
}

// RecentCommits fetches up to limit commits on the default branch
func (c *Client) RecentCommits(ctx context.Context, limit int) ([]Commit, error) {
	var raw []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Name string    `json:"name"`
				Date time.Time `json:"date"`
			} `json:"author"`
		} `json:"commit"`
		HTMLURL string `json:"html_url"`
	}

	path := fmt.Sprintf("/repos/%s/%s/commits?per_page=%d", c.owner, c.repo, limit)
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, err
	}

	commits := make([]Commit, 0, len(raw))
	for _, r := range raw {
		commits = append(commits, Commit{
			SHA:     r.SHA,
			Message: r.Commit.Message,
			Author:  r.Commit.Author.Name,
			Date:    r.Commit.Author.Date,
			URL:     r.HTMLURL,
		})
	}
	return commits, nil
}

// RecentIssues fetches up to limit recently created issues, excluding
// pull requests.
func (c *Client) RecentIssues(ctx context.Context, limit int) ([]Issue, error) {
	var raw []struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
		User struct {
			Login string `json:"login"`
		} `json:"user"`
		CreatedAt   time.Time `json:"created_at"`
		HTMLURL     string    `json:"html_url"`
		PullRequest *struct{} `json:"pull_request,omitempty"`
	}

	path := fmt.Sprintf("/repos/%s/%s/issues?state=open&sort=created&direction=desc&per_page=%d", c.owner, c.repo, limit)
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, err
	}

	issues := make([]Issue, 0, len(raw))
	for _, r := range raw {
		if r.PullRequest != nil {
			continue
		}
		labels := make([]string, 0, len(r.Labels))
		for _, l := range r.Labels {
			labels = append(labels, l.Name)
		}
		issues = append(issues, Issue{
			Number:    r.Number,
			Title:     r.Title,
			Labels:    labels,
			Author:    r.User.Login,
			CreatedAt: r.CreatedAt,
			URL:       r.HTMLURL,
		})
	}
	return issues, nil
}

// Kinds already surfaced by the commit and issue streams; skipped here to
// avoid double-signaling.
var redundantEventTypes = map[string]bool{
	"PushEvent":                     true,
	"IssuesEvent":                   true,
	"IssueCommentEvent":             true,
	"PullRequestEvent":              true,
	"PullRequestReviewEvent":        true,
	"PullRequestReviewCommentEvent": true,
}

// eventDescriptions gives each surfaced event type a free-text line the
// classifier can work with.
var eventDescriptions = map[string]string{
	"ReleaseEvent": "new release published",
	"CreateEvent":  "new branch or tag created",
	"ForkEvent":    "repository forked",
	"WatchEvent":   "repository starred",
	"PublicEvent":  "repository made public",
	"MemberEvent":  "collaborator added",
}

// RecentEvents fetches up to limit repository events, excluding types the
// commit and issue streams already cover
func (c *Client) RecentEvents(ctx context.Context, limit int) ([]Event, error) {
	var raw []struct {
		ID        string    `json:"id"`
		Type      string    `json:"type"`
		CreatedAt time.Time `json:"created_at"`
	}

	path := fmt.Sprintf("/repos/%s/%s/events?per_page=%d", c.owner, c.repo, limit)
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(raw))
	for _, r := range raw {
		if redundantEventTypes[r.Type] {
			continue
		}
		desc, ok := eventDescriptions[r.Type]
		if !ok {
			desc = "repository activity: " + r.Type
		}
		events = append(events, Event{
			ID:          r.ID,
			Type:        r.Type,
			Description: desc,
			CreatedAt:   r.CreatedAt,
		})
	}
	return events, nil
}

// Readme fetches README revision metadata via the latest commit touching it
func (c *Client) Readme(ctx context.Context) (*ReadmeInfo, error) {
	var raw []struct {
		Commit struct {
			Author struct {
				Date time.Time `json:"date"`
			} `json:"author"`
		} `json:"commit"`
		HTMLURL string `json:"html_url"`
	}

	path := fmt.Sprintf("/repos/%s/%s/commits?path=README.md&per_page=1", c.owner, c.repo)
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "no README history")
	}

	return &ReadmeInfo{
		Repo:      c.repo,
		UpdatedAt: raw[0].Commit.Author.Date,
		URL:       raw[0].HTMLURL,
	}, nil
}

// Name identifies the capability for health aggregation
func (c *Client) Name() string { return "github" }

// Health probes the rate-limit endpoint as a cheap liveness check
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Resources map[string]any `json:"resources"`
	}
	return c.get(ctx, "/rate_limit", &out)
}
