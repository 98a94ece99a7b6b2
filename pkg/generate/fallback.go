package generate

import (
	"fmt"
	"strings"
	"time"

	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/prompt"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/signal"
)

// fallbackHashtags maps category to a fixed hashtag set
var fallbackHashtags = map[signal.Category][]string{
	signal.CategoryCode:    {"#SoftwareEngineering", "#Coding", "#DevLife"},
	signal.CategoryDocs:    {"#Documentation", "#TechWriting", "#OpenSource"},
	signal.CategoryConfig:  {"#DevOps", "#CI", "#Automation"},
	signal.CategoryUnknown: {"#SoftwareDevelopment", "#Tech", "#Engineering"},
}

// FallbackContent builds a deterministic templated placeholder. The
// provenance marking is the contract: this output never masquerades as
// primary generation.
func FallbackContent(p prompt.Prompt) Content {
	topic := p.Instructions.Topic
	if topic == "" {
		topic = "recent development work"
	}

	tags := fallbackHashtags[p.Instructions.Category]
	if tags == nil {
		tags = fallbackHashtags[signal.CategoryUnknown]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Progress update: %s.\n\n", topic)
	if p.Instructions.Context != "" {
		sb.WriteString(p.Instructions.Context)
		sb.WriteString("\n\n")
	}
	sb.WriteString("More details to follow.\n\n")
	sb.WriteString(strings.Join(tags, " "))

	text := truncatePost(sb.String())

	return Content{
		Text:     text,
		Provider: ProvenanceFallback,
		Model:    "template",
		Metadata: map[string]any{
			"signal_id":   p.Metadata.SignalID,
			"placeholder": true,
		},
		GeneratedAt: time.Now(),
	}
}
