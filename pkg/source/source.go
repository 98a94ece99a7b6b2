// Package source detects candidate signals from repository activity.
package source

import (
	"context"
	"time"

	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/github"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/ledger"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/logging"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/signal"
)

// SignalSource produces candidate signals, excluding ids already present
// in the ledger.
type SignalSource interface {
	DetectSignals(ctx context.Context) ([]signal.Signal, error)
}

// ActivityClient is the upstream activity capability consumed by the
// GitHub source. Each fetch covers a small recent window.
type ActivityClient interface {
	RecentCommits(ctx context.Context, limit int) ([]github.Commit, error)
	RecentIssues(ctx context.Context, limit int) ([]github.Issue, error)
	RecentEvents(ctx context.Context, limit int) ([]github.Event, error)
	Readme(ctx context.Context) (*github.ReadmeInfo, error)
}

// GitHubSource detects signals from recent GitHub activity. Sub-fetch
// failures degrade to partial results rather than aborting detection.
type GitHubSource struct {
	client      ActivityClient
	ledger      *ledger.Ledger
	logger      *logging.Logger
	commitLimit int
	issueLimit  int
}

// NewGitHubSource creates a GitHub-backed signal source
func NewGitHubSource(client ActivityClient, led *ledger.Ledger, logger *logging.Logger, commitLimit, issueLimit int) *GitHubSource {
	if commitLimit <= 0 {
		commitLimit = 5
	}
	if issueLimit <= 0 {
		issueLimit = 5
	}
	return &GitHubSource{
		client:      client,
		ledger:      led,
		logger:      logger,
		commitLimit: commitLimit,
		issueLimit:  issueLimit,
	}
}

// DetectSignals queries each activity stream and returns fresh signals
// with per-kind prior confidence, filtering already-processed ids.
func (s *GitHubSource) DetectSignals(ctx context.Context) ([]signal.Signal, error) {
	now := time.Now()
	var candidates []signal.Signal

	commits, err := s.client.RecentCommits(ctx, s.commitLimit)
	if err != nil {
		s.logger.Warn(logging.CategorySignal, "commits_unavailable", "commit stream fetch failed", map[string]any{"error": err.Error()})
	}
	for _, c := range commits {
		candidates = append(candidates, signal.Signal{
			ID:   signal.CommitID(c.SHA),
			Kind: signal.KindCommit,
			Payload: signal.CommitPayload{
				SHA:     c.SHA,
				Message: c.Message,
				Author:  c.Author,
				Date:    c.Date,
				URL:     c.URL,
			},
			Confidence: signal.PriorFor(signal.KindCommit),
			DetectedAt: now,
		})
	}

	issues, err := s.client.RecentIssues(ctx, s.issueLimit)
	if err != nil {
		s.logger.Warn(logging.CategorySignal, "issues_unavailable", "issue stream fetch failed", map[string]any{"error": err.Error()})
	}
	for _, is := range issues {
		candidates = append(candidates, signal.Signal{
			ID:   signal.IssueID(is.Number),
			Kind: signal.KindIssue,
			Payload: signal.IssuePayload{
				Number:    is.Number,
				Title:     is.Title,
				Labels:    is.Labels,
				Author:    is.Author,
				CreatedAt: is.CreatedAt,
				URL:       is.URL,
			},
			Confidence: signal.PriorFor(signal.KindIssue),
			DetectedAt: now,
		})
	}

	events, err := s.client.RecentEvents(ctx, s.issueLimit)
	if err != nil {
		s.logger.Warn(logging.CategorySignal, "events_unavailable", "event stream fetch failed", map[string]any{"error": err.Error()})
	}
	for _, ev := range events {
		candidates = append(candidates, signal.Signal{
			ID:   signal.RepoEventID(ev.ID),
			Kind: signal.KindRepoEvent,
			Payload: signal.RepoEventPayload{
				EventID:     ev.ID,
				Type:        ev.Type,
				Description: ev.Description,
				CreatedAt:   ev.CreatedAt,
			},
			Confidence: signal.PriorFor(signal.KindRepoEvent),
			DetectedAt: now,
		})
	}

	// README stream is optional; many repos never touch it
	readme, err := s.client.Readme(ctx)
	if err != nil {
		s.logger.Debug(logging.CategorySignal, "readme_unavailable", "readme stream fetch failed", map[string]any{"error": err.Error()})
	} else if readme != nil {
		candidates = append(candidates, signal.Signal{
			ID:   signal.ReadmeID(readme.Repo, readme.UpdatedAt),
			Kind: signal.KindReadmeUpdate,
			Payload: signal.ReadmeUpdatePayload{
				Repo:      readme.Repo,
				Summary:   "README updated for " + readme.Repo,
				UpdatedAt: readme.UpdatedAt,
				URL:       readme.URL,
			},
			Confidence: signal.PriorFor(signal.KindReadmeUpdate),
			DetectedAt: now,
		})
	}

	// Dedup is a source-side filter: processed ids never leave detection
	fresh := make([]signal.Signal, 0, len(candidates))
	for _, sig := range candidates {
		if s.ledger.HasProcessed(sig.ID) {
			continue
		}
		fresh = append(fresh, sig)
	}

	s.logger.Info(logging.CategorySignal, "signals_detected", "detection pass complete", map[string]any{
		"candidates": len(candidates),
		"fresh":      len(fresh),
	})
	return fresh, nil
}
