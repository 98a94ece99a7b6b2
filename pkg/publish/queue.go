package publish

import (
	"sort"
	"sync"
	"time"

	apperrors "github.com/SyedFrazAli/linkedin-automation-engine/pkg/errors"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/generate"
	"github.com/google/uuid"
)

// Status is a queue item lifecycle state
type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusRejected  Status = "rejected"

	// statusInFlight marks an item claimed for delivery. It is never
	// terminal: delivery either publishes the item or releases it back
	// to pending.
	statusInFlight Status = "publishing"
)

// Item is a unit of generated content awaiting manual publish approval.
// published and rejected are terminal states.
type Item struct {
	ID          string           `json:"id"`
	Content     generate.Content `json:"content"`
	Status      Status           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	PublishedAt *time.Time       `json:"published_at,omitempty"`
	PostID      string           `json:"post_id,omitempty"`
}

// Queue is the in-process manual-review queue
type Queue struct {
	mu    sync.Mutex
	items map[string]*Item
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{items: make(map[string]*Item)}
}

// Enqueue appends a new pending item with a freshly generated unique id
func (q *Queue) Enqueue(content generate.Content) Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	item := &Item{
		ID:        uuid.NewString(),
		Content:   content,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	q.items[item.ID] = item
	return *item
}

// Get returns a copy of the item, or a NOT_FOUND error
func (q *Queue) Get(id string) (Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.items[id]
	if !ok {
		return Item{}, apperrors.New(apperrors.ErrCodeNotFound, "queue item not found").WithContext("id", id)
	}
	return *item, nil
}

// List is a read-only projection of the queue. An empty filter returns
// everything; otherwise only items in the given state. Items are ordered
// by creation time.
func (q *Queue) List(filter Status) []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Item, 0, len(q.items))
	for _, item := range q.items {
		if filter != "" && item.Status != filter {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// markPublished transitions a pending or claimed item to published.
// Re-invoking on an already-published item is an error: approval is
// intentionally not idempotent.
func (q *Queue) markPublished(id, postID string) (Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.items[id]
	if !ok {
		return Item{}, apperrors.New(apperrors.ErrCodeNotFound, "queue item not found").WithContext("id", id)
	}
	if item.Status != StatusPending && item.Status != statusInFlight {
		return Item{}, apperrors.New(apperrors.ErrCodeNotFound, "queue item is not pending").
			WithContext("id", id).
			WithContext("status", string(item.Status))
	}

	now := time.Now()
	item.Status = StatusPublished
	item.PublishedAt = &now
	item.PostID = postID
	return *item, nil
}

// Reject transitions a pending item to the terminal rejected state
func (q *Queue) Reject(id string) (Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.items[id]
	if !ok {
		return Item{}, apperrors.New(apperrors.ErrCodeNotFound, "queue item not found").WithContext("id", id)
	}
	if item.Status != StatusPending {
		return Item{}, apperrors.New(apperrors.ErrCodeNotFound, "queue item is not pending").
			WithContext("id", id).
			WithContext("status", string(item.Status))
	}

	item.Status = StatusRejected
	return *item, nil
}

// Depth returns the number of pending items
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, item := range q.items {
		if item.Status == StatusPending {
			n++
		}
	}
	return n
}

// claimPending atomically moves a pending item in flight so exactly one
// caller owns the delivery attempt. Any other state is NOT_FOUND to the
// caller, matching the re-approval contract.
func (q *Queue) claimPending(id string) (Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.items[id]
	if !ok {
		return Item{}, apperrors.New(apperrors.ErrCodeNotFound, "queue item not found").WithContext("id", id)
	}
	if item.Status != StatusPending {
		return Item{}, apperrors.New(apperrors.ErrCodeNotFound, "queue item is not pending").
			WithContext("id", id).
			WithContext("status", string(item.Status))
	}
	item.Status = statusInFlight
	return *item, nil
}

// release returns a claimed item to pending after a failed delivery
func (q *Queue) release(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if item, ok := q.items[id]; ok && item.Status == statusInFlight {
		item.Status = StatusPending
	}
}
