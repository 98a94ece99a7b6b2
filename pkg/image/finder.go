// Package image attaches an optional visual suggestion to a post. It is
// a side channel: absence of an image is a valid terminal state and the
// finder never fails the pipeline.
package image

import (
	"context"
	"fmt"

	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/logging"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/signal"
)

// SuggestionType tags how the suggestion was produced
type SuggestionType string

const (
	TypeStockImage SuggestionType = "stock_image"
	TypeAIPrompt   SuggestionType = "ai_prompt"
	TypeNone       SuggestionType = "none"
)

// Result is a single image-search hit
type Result struct {
	URL         string
	Attribution string
}

// Searcher is one ranked external image-search capability. A nil result
// with nil error means no match.
type Searcher interface {
	ID() string
	Search(ctx context.Context, query string) (*Result, error)
}

// Suggestion is the finder's output
type Suggestion struct {
	Type        SuggestionType `json:"type"`
	URL         string         `json:"url,omitempty"`
	Attribution string         `json:"attribution,omitempty"`
	Prompt      string         `json:"prompt,omitempty"`
	Provider    string         `json:"provider,omitempty"`
}

// Finder tries ranked searchers in order, first success wins
type Finder struct {
	searchers []Searcher
	logger    *logging.Logger
}

// NewFinder creates a finder over the given provider priority order
func NewFinder(searchers []Searcher, logger *logging.Logger) *Finder {
	return &Finder{searchers: searchers, logger: logger}
}

// Find returns a stock image when any searcher hits, otherwise a textual
// prompt for a human to feed into a generative-image tool.
func (f *Finder) Find(ctx context.Context, topic string, category signal.Category) Suggestion {
	for _, s := range f.searchers {
		result, err := s.Search(ctx, topic)
		if err != nil {
			f.logger.Warn(logging.CategoryImage, "search_failed", "image search failed", map[string]any{
				"provider": s.ID(),
				"error":    err.Error(),
			})
			continue
		}
		if result == nil {
			continue
		}
		return Suggestion{
			Type:        TypeStockImage,
			URL:         result.URL,
			Attribution: result.Attribution,
			Provider:    s.ID(),
		}
	}

	if topic == "" {
		return Suggestion{Type: TypeNone}
	}
	return Suggestion{
		Type:   TypeAIPrompt,
		Prompt: aiPromptFor(topic, category),
	}
}

// aiPromptFor builds the generative-image prompt used when no stock
// provider returns a result.
func aiPromptFor(topic string, category signal.Category) string {
	scene := "a modern software development workspace"
	switch category {
	case signal.CategoryDocs:
		scene = "clean technical documentation on a screen"
	case signal.CategoryConfig:
		scene = "an infrastructure dashboard with pipelines"
	}
	return fmt.Sprintf("Professional illustration of %s, themed around %s, muted colors, no text overlays", scene, topic)
}
