// Package publish delivers generated content to the publishing target or
// parks it in the manual-review queue. Content is never dropped silently.
package publish

import (
	"context"
	"time"

	apperrors "github.com/SyedFrazAli/linkedin-automation-engine/pkg/errors"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/generate"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/logging"
)

// Client is the publish capability
type Client interface {
	Post(ctx context.Context, text string) (string, error)
	Configured() bool
}

// ResultStatus is the outcome of a publish attempt
type ResultStatus string

const (
	ResultQueued    ResultStatus = "queued"
	ResultPublished ResultStatus = "published"
	ResultError     ResultStatus = "error"
)

// Result describes what happened to a piece of content
type Result struct {
	Status  ResultStatus `json:"status"`
	QueueID string       `json:"queue_id,omitempty"`
	PostID  string       `json:"post_id,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Publisher applies the auto-publish policy
type Publisher struct {
	client      Client
	queue       *Queue
	autoPublish bool
	maxChars    int
	timeout     time.Duration
	logger      *logging.Logger
}

// NewPublisher creates a publisher over the given queue
func NewPublisher(client Client, queue *Queue, autoPublish bool, maxChars int, timeout time.Duration, logger *logging.Logger) *Publisher {
	if maxChars <= 0 {
		maxChars = generate.PostMaxChars
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Publisher{
		client:      client,
		queue:       queue,
		autoPublish: autoPublish,
		maxChars:    maxChars,
		timeout:     timeout,
		logger:      logger,
	}
}

// Publish delivers content directly when auto-publish is enabled and
// credentials are present; every other path degrades to enqueueing.
func (p *Publisher) Publish(ctx context.Context, content generate.Content) Result {
	if content.Text == "" {
		return Result{Status: ResultError, Error: "empty content"}
	}

	if !p.autoPublish || p.client == nil || !p.client.Configured() {
		item := p.queue.Enqueue(content)
		p.logger.Info(logging.CategoryPublish, "queued", "content queued for manual review", map[string]any{
			"queue_id": item.ID,
		})
		return Result{Status: ResultQueued, QueueID: item.ID}
	}

	if len(content.Text) > p.maxChars {
		p.logger.Warn(logging.CategoryPublish, "too_long", "content exceeds destination limit, queueing", map[string]any{
			"length": len(content.Text),
			"limit":  p.maxChars,
		})
		item := p.queue.Enqueue(content)
		return Result{Status: ResultQueued, QueueID: item.ID}
	}

	postID, err := p.attempt(ctx, content.Text)
	if err != nil {
		// Auth, permission and transport failures all fall back to the
		// queue; the distinction survives in the result error.
		p.logger.Error(logging.CategoryPublish, "publish_failed", "delivery failed, queueing content", map[string]any{
			"code":  string(apperrors.GetCode(err)),
			"error": err.Error(),
		})
		item := p.queue.Enqueue(content)
		return Result{Status: ResultQueued, QueueID: item.ID, Error: err.Error()}
	}

	p.logger.Info(logging.CategoryPublish, "published", "content published", map[string]any{"post_id": postID})
	return Result{Status: ResultPublished, PostID: postID}
}

// PublishFromQueue is the only path that transitions a pending item to
// published. The item is claimed before delivery so concurrent approvals
// of the same id deliver at most once; any failure before or during
// delivery releases the claim back to pending.
func (p *Publisher) PublishFromQueue(ctx context.Context, id string) (Item, error) {
	item, err := p.queue.claimPending(id)
	if err != nil {
		return Item{}, err
	}

	if p.client == nil || !p.client.Configured() {
		p.queue.release(id)
		return Item{}, apperrors.New(apperrors.ErrCodeAuthFailed, "publishing credentials are not configured")
	}
	if len(item.Content.Text) > p.maxChars {
		p.queue.release(id)
		return Item{}, apperrors.New(apperrors.ErrCodeValidation, "queued content exceeds destination limit").
			WithContext("length", len(item.Content.Text))
	}

	postID, err := p.attempt(ctx, item.Content.Text)
	if err != nil {
		p.queue.release(id)
		return Item{}, err
	}

	return p.queue.markPublished(id, postID)
}

func (p *Publisher) attempt(ctx context.Context, text string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.client.Post(callCtx, text)
}
