// Package enrich attaches external context to classified signals and
// normalizes them into the canonical record handed to prompt construction.
package enrich

import (
	"context"
	"strings"

	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/logging"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/signal"
	"golang.org/x/time/rate"
)

const maxKeywords = 3

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "into": {},
	"this": {}, "that": {}, "have": {}, "has": {}, "was": {}, "were": {},
	"when": {}, "where": {}, "what": {}, "will": {}, "would": {}, "should": {},
	"update": {}, "updated": {}, "added": {}, "removed": {}, "some": {},
}

// LookupResult is a single external context hit
type LookupResult struct {
	Content string
	URL     string
}

// ContextLookup is the external context-lookup capability. A nil result
// with nil error means the keyword produced no context.
type ContextLookup interface {
	Lookup(ctx context.Context, keyword string) (*LookupResult, error)
}

// Enriched is a classified signal with external context attached
type Enriched struct {
	signal.Classified
	Topic    string
	Context  string
	Sources  []string
	SignalID string
}

// Enricher performs external lookups with cooperative pacing between
// calls. Every degraded path still yields a structurally valid record.
type Enricher struct {
	lookup  ContextLookup
	limiter *rate.Limiter
	logger  *logging.Logger
}

// NewEnricher creates an enricher. pacing is the minimum spacing between
// external lookups; zero disables pacing.
func NewEnricher(lookup ContextLookup, pacing rate.Limit, logger *logging.Logger) *Enricher {
	var limiter *rate.Limiter
	if pacing > 0 {
		limiter = rate.NewLimiter(pacing, 1)
	}
	return &Enricher{lookup: lookup, limiter: limiter, logger: logger}
}

// EnrichSignal extracts keywords from the signal's primary text, queries
// the lookup capability once per keyword short-circuiting on first
// success, and degrades to synthetic context when nothing is found.
func (e *Enricher) EnrichSignal(ctx context.Context, cs signal.Classified) Enriched {
	text := cs.Payload.PrimaryText()
	keywords := ExtractKeywords(text, maxKeywords)

	if len(keywords) == 0 {
		e.logger.Debug(logging.CategoryEnrich, "no_keywords", "no keywords extractable", map[string]any{"signal_id": cs.ID})
		return Enriched{
			Classified: cs,
			Topic:      text,
			Context:    "No additional information available.",
			Sources:    []string{},
			SignalID:   cs.ID,
		}
	}

	topic := strings.Join(keywords, " ")
	allFailed := true

	for _, kw := range keywords {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				break
			}
		}

		result, err := e.lookup.Lookup(ctx, kw)
		if err != nil {
			e.logger.Warn(logging.CategoryEnrich, "lookup_failed", "context lookup failed", map[string]any{
				"signal_id": cs.ID,
				"keyword":   kw,
				"error":     err.Error(),
			})
			continue
		}
		allFailed = false
		if result == nil {
			continue
		}

		// First success wins; bound the external call count
		sources := []string{"lookup:" + kw}
		if result.URL != "" {
			sources = append(sources, result.URL)
		}
		return Enriched{
			Classified: cs,
			Topic:      topic,
			Context:    result.Content,
			Sources:    sources,
			SignalID:   cs.ID,
		}
	}

	// No keyword yielded context; synthesize from the keywords alone
	enriched := Enriched{
		Classified: cs,
		Topic:      topic,
		Context:    "Recent activity related to " + topic + ".",
		Sources:    []string{},
		SignalID:   cs.ID,
	}
	if allFailed {
		// Outright lookup failure reduces downstream confidence
		enriched.Confidence = signal.Clamp(cs.Confidence-signal.EnrichmentFailurePenalty, signal.ConfidenceFloor, signal.ConfidenceCeiling)
	}
	return enriched
}

// ExtractKeywords pulls up to max salient keywords from text: lowercase,
// strip non-alphanumerics, drop stop words and words of three characters
// or fewer, dedup in first-seen order.
func ExtractKeywords(text string, max int) []string {
	var keywords []string
	seen := make(map[string]struct{})

	for _, word := range strings.Fields(strings.ToLower(text)) {
		cleaned := stripNonAlnum(word)
		if len(cleaned) <= 3 {
			continue
		}
		if _, stop := stopWords[cleaned]; stop {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		keywords = append(keywords, cleaned)
		if len(keywords) == max {
			break
		}
	}
	return keywords
}

func stripNonAlnum(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
