package signal

import (
	"fmt"
	"strings"
	"time"
)

// Kind tags the origin of a detected signal
type Kind string

const (
	KindCommit       Kind = "commit"
	KindReadmeUpdate Kind = "readme_update"
	KindIssue        Kind = "issue"
	KindRepoEvent    Kind = "repo_event"
)

// Category is the classification assigned to a signal
type Category string

const (
	CategoryCode    Category = "code"
	CategoryDocs    Category = "docs"
	CategoryConfig  Category = "config"
	CategoryUnknown Category = "unknown"
)

// Payload carries the kind-specific fields of a signal. PrimaryText returns
// the free-text field used for classification and keyword extraction.
type Payload interface {
	PrimaryText() string
}

// CommitPayload holds commit metadata
type CommitPayload struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	URL     string    `json:"url"`
}

func (p CommitPayload) PrimaryText() string { return p.Message }

// ReadmeUpdatePayload holds README change metadata
type ReadmeUpdatePayload struct {
	Repo      string    `json:"repo"`
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
	URL       string    `json:"url"`
}

func (p ReadmeUpdatePayload) PrimaryText() string { return p.Summary }

// IssuePayload holds issue metadata
type IssuePayload struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Labels    []string  `json:"labels"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url"`
}

func (p IssuePayload) PrimaryText() string { return p.Title }

// RepoEventPayload holds miscellaneous repository event metadata
type RepoEventPayload struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p RepoEventPayload) PrimaryText() string { return p.Description }

// Signal is a candidate unit of activity. ID is the dedup key: the same
// underlying event always yields the same ID.
type Signal struct {
	ID         string
	Kind       Kind
	Payload    Payload
	Confidence float64
	DetectedAt time.Time
}

// Classified is a signal with an assigned category and adjusted confidence.
// Confidence is always within [0.3, 1.0] once classified.
type Classified struct {
	Signal
	Category Category
	Method   string
}

// SourceData carries provenance forwarded into the normalized record
type SourceData struct {
	Author string `json:"author,omitempty"`
	Date   string `json:"date,omitempty"`
	URL    string `json:"url,omitempty"`
}

// SourceData extracts provenance fields from the payload, if present.
func (s Signal) SourceData() *SourceData {
	switch p := s.Payload.(type) {
	case CommitPayload:
		return &SourceData{Author: p.Author, Date: p.Date.Format(time.RFC3339), URL: p.URL}
	case IssuePayload:
		return &SourceData{Author: p.Author, Date: p.CreatedAt.Format(time.RFC3339), URL: p.URL}
	case ReadmeUpdatePayload:
		return &SourceData{Date: p.UpdatedAt.Format(time.RFC3339), URL: p.URL}
	default:
		return nil
	}
}

// CommitID builds the stable dedup id for a commit
func CommitID(sha string) string { return fmt.Sprintf("commit:%s", sha) }

// IssueID builds the stable dedup id for an issue
func IssueID(number int) string { return fmt.Sprintf("issue:%d", number) }

// ReadmeID builds the stable dedup id for a README revision
func ReadmeID(repo string, updatedAt time.Time) string {
	return fmt.Sprintf("readme:%s:%s", repo, updatedAt.UTC().Format(time.RFC3339))
}

// RepoEventID builds the stable dedup id for a repository event
func RepoEventID(eventID string) string { return fmt.Sprintf("event:%s", eventID) }

// ParseCategory maps a stored string back onto a Category tag
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(s)) {
	case CategoryCode, CategoryDocs, CategoryConfig:
		return Category(strings.ToLower(s))
	default:
		return CategoryUnknown
	}
}
