// Package classify assigns categories and adjusted confidence to signals.
package classify

import (
	"strings"

	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/logging"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/signal"
)

// Keyword tables for the per-kind heuristics. Matching is substring on
// the lowercased primary text.
var (
	codeKeywords   = []string{"fix", "bug", "feat", "feature", "refactor", "perf", "test", "crash", "error", "implement"}
	docsKeywords   = []string{"doc", "readme", "guide", "tutorial", "comment", "typo", "example"}
	configKeywords = []string{"config", "ci", "workflow", "yaml", "docker", "build", "deps", "dependency", "bump"}
)

// Classifier assigns a category and confidence adjustment per signal kind
type Classifier struct {
	logger *logging.Logger
}

// NewClassifier creates a classifier
func NewClassifier(logger *logging.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Classify is a pure function of signal content: it dispatches on kind,
// applies a small fixed adjustment, and clamps the result to [0.3, 1.0].
func (c *Classifier) Classify(sig signal.Signal) signal.Classified {
	var (
		category   signal.Category
		adjustment float64
		method     string
	)

	switch sig.Kind {
	case signal.KindCommit:
		category, adjustment = classifyText(sig.Payload.PrimaryText())
		method = "commit_message_keywords"
	case signal.KindIssue:
		category, adjustment = classifyIssue(sig)
		method = "issue_labels_and_title"
	case signal.KindReadmeUpdate:
		category, adjustment = signal.CategoryDocs, signal.MaxPositiveAdjustment
		method = "readme_update_fixed"
	case signal.KindRepoEvent:
		category, adjustment = classifyText(sig.Payload.PrimaryText())
		method = "event_description_keywords"
	default:
		category, adjustment = signal.CategoryUnknown, 0
		method = "unrecognized_kind"
		c.logger.Warn(logging.CategoryClassify, "unknown_kind", "unrecognized signal kind", map[string]any{
			"signal_id": sig.ID,
			"kind":      string(sig.Kind),
		})
	}

	classified := signal.Classified{
		Signal:   sig,
		Category: category,
		Method:   method,
	}
	classified.Confidence = signal.Clamp(sig.Confidence+adjustment, signal.ConfidenceFloor, signal.ConfidenceCeiling)
	return classified
}

// ClassifyBatch maps Classify over a batch elementwise
func (c *Classifier) ClassifyBatch(signals []signal.Signal) []signal.Classified {
	out := make([]signal.Classified, 0, len(signals))
	for _, sig := range signals {
		out = append(out, c.Classify(sig))
	}
	return out
}

// FilterByConfidence returns the signals at or above threshold. Pure and
// non-mutating; threshold filtering is deliberately a separate step from
// classification.
func FilterByConfidence(signals []signal.Classified, threshold float64) []signal.Classified {
	out := make([]signal.Classified, 0, len(signals))
	for _, s := range signals {
		if s.Confidence >= threshold {
			out = append(out, s)
		}
	}
	return out
}

// classifyText matches keyword tables against free text
func classifyText(text string) (signal.Category, float64) {
	lower := strings.ToLower(text)

	if containsAny(lower, codeKeywords) {
		return signal.CategoryCode, 0.10
	}
	if containsAny(lower, docsKeywords) {
		return signal.CategoryDocs, 0.05
	}
	if containsAny(lower, configKeywords) {
		return signal.CategoryConfig, 0.0
	}
	// Nothing recognizable; slightly demote routine noise
	return signal.CategoryUnknown, signal.MaxNegativeAdjustment
}

// classifyIssue prefers labels over title text
func classifyIssue(sig signal.Signal) (signal.Category, float64) {
	payload, ok := sig.Payload.(signal.IssuePayload)
	if !ok {
		return classifyText(sig.Payload.PrimaryText())
	}

	for _, label := range payload.Labels {
		switch strings.ToLower(label) {
		case "bug", "enhancement", "feature", "performance":
			return signal.CategoryCode, 0.10
		case "documentation", "docs":
			return signal.CategoryDocs, 0.05
		case "ci", "build", "dependencies":
			return signal.CategoryConfig, 0.0
		}
	}
	return classifyText(payload.Title)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
