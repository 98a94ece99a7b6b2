package enrich

import (
	"math"
	"strings"
	"time"

	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/logging"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/signal"
)

// Field caps for the canonical record
const (
	TopicCap   = 100
	ContextCap = 500

	truncationMarker = "..."
)

// Normalized is the canonical, validated record passed to prompt
// construction. All seven non-optional fields are always present.
type Normalized struct {
	Topic      string             `json:"topic"`
	Context    string             `json:"context"`
	Category   signal.Category    `json:"category"`
	SignalType signal.Kind        `json:"signal_type"`
	Confidence float64            `json:"confidence"`
	Sources    []string           `json:"sources"`
	SignalID   string             `json:"signal_id"`
	Timestamp  time.Time          `json:"timestamp"`
	SourceData *signal.SourceData `json:"source_data,omitempty"`
}

// Normalizer canonicalizes enriched records
type Normalizer struct {
	logger *logging.Logger
}

// NewNormalizer creates a normalizer
func NewNormalizer(logger *logging.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize sanitizes and bounds every free-text field. An internal
// failure degrades to a well-formed placeholder record so the pipeline
// always has something to carry forward for audit.
func (n *Normalizer) Normalize(e Enriched) (record Normalized) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error(logging.CategoryEnrich, "normalize_failed", "normalization panicked, emitting placeholder", map[string]any{
				"signal_id": e.SignalID,
				"panic":     r,
			})
			record = placeholderRecord(e.SignalID)
		}
	}()

	sources := e.Sources
	if sources == nil {
		sources = []string{}
	}

	return Normalized{
		Topic:      Sanitize(e.Topic, TopicCap),
		Context:    Sanitize(e.Context, ContextCap),
		Category:   e.Category,
		SignalType: e.Kind,
		Confidence: roundConfidence(e.Confidence),
		Sources:    sources,
		SignalID:   e.SignalID,
		Timestamp:  time.Now(),
		SourceData: e.Signal.SourceData(),
	}
}

// Validate checks presence of all mandatory fields, confidence bounds,
// and that sources is a sequence (possibly empty).
func (n *Normalizer) Validate(record Normalized) bool {
	if record.Topic == "" || record.Context == "" || record.SignalID == "" {
		return false
	}
	if record.Category == "" || record.SignalType == "" {
		return false
	}
	if record.Confidence < 0 || record.Confidence > 1 {
		return false
	}
	if record.Sources == nil {
		return false
	}
	if record.Timestamp.IsZero() {
		return false
	}
	return true
}

// Sanitize collapses runs of whitespace to single spaces, trims, then
// hard-truncates to limit characters with a trailing ellipsis marker if
// truncated. Truncation cuts on rune boundaries so multibyte text stays
// valid. Applying it twice yields the same result as applying it once.
func Sanitize(s string, limit int) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	if limit <= 0 {
		return collapsed
	}
	runes := []rune(collapsed)
	if len(runes) <= limit {
		return collapsed
	}
	if limit <= len(truncationMarker) {
		return string(runes[:limit])
	}
	return string(runes[:limit-len(truncationMarker)]) + truncationMarker
}

// placeholderRecord is the degraded output of a failed normalization
func placeholderRecord(signalID string) Normalized {
	return Normalized{
		Topic:      "Normalization Failed",
		Context:    "No context available.",
		Category:   signal.CategoryUnknown,
		SignalType: signal.Kind("unknown"),
		Confidence: signal.ConfidenceFloor,
		Sources:    []string{},
		SignalID:   signalID,
		Timestamp:  time.Now(),
	}
}

// roundConfidence rounds to 2 decimals
func roundConfidence(v float64) float64 {
	return math.Round(v*100) / 100
}
