// Package prompt converts normalized records into structured generation
// requests and adapts them to provider-specific message shapes.
package prompt

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/SyedFrazAli/linkedin-automation-engine/pkg/errors"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/enrich"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/signal"
)

// Metadata identifies the originating signal inside a generation request
type Metadata struct {
	SignalID   string          `json:"signal_id"`
	Timestamp  time.Time       `json:"timestamp"`
	Category   signal.Category `json:"category"`
	Confidence float64         `json:"confidence"`
}

// System describes the generation persona and guidelines
type System struct {
	Role       string   `json:"role"`
	Guidelines []string `json:"guidelines"`
}

// Instructions carries the content the post should be about
type Instructions struct {
	Topic      string          `json:"topic"`
	Context    string          `json:"context"`
	SignalType signal.Kind     `json:"signal_type"`
	Category   signal.Category `json:"category"`
	Sources    []string        `json:"sources"`
	Confidence float64         `json:"confidence"`
}

// Length bounds the output size
type Length struct {
	Min  int    `json:"min"`
	Max  int    `json:"max"`
	Unit string `json:"unit"`
}

// Structure lists required and forbidden structural elements
type Structure struct {
	Include []string `json:"include"`
	Avoid   []string `json:"avoid"`
}

// Formatting holds hashtag and tone policy
type Formatting struct {
	MinHashtags int    `json:"min_hashtags"`
	MaxHashtags int    `json:"max_hashtags"`
	Tone        string `json:"tone"`
}

// Constraints bundles all output policy
type Constraints struct {
	Length     Length     `json:"length"`
	Structure  Structure  `json:"structure"`
	Formatting Formatting `json:"formatting"`
}

// Prompt is an immutable structured generation request
type Prompt struct {
	Metadata     Metadata     `json:"metadata"`
	System       System       `json:"system"`
	Instructions Instructions `json:"instructions"`
	Constraints  Constraints  `json:"constraints"`
	Attribution  string       `json:"attribution,omitempty"`
}

// Policy holds the fixed constants prompts are assembled from
type Policy struct {
	MinWords    int
	MaxWords    int
	MinHashtags int
	MaxHashtags int
	Tone        string
}

// DefaultPolicy returns the standard post policy
func DefaultPolicy() Policy {
	return Policy{
		MinWords:    50,
		MaxWords:    150,
		MinHashtags: 3,
		MaxHashtags: 5,
		Tone:        "professional",
	}
}

// Builder deterministically assembles generation requests
type Builder struct {
	policy Policy
}

// NewBuilder creates a prompt builder with the given policy
func NewBuilder(policy Policy) *Builder {
	return &Builder{policy: policy}
}

// Build assembles the four structured blocks from the normalized record
func (b *Builder) Build(record enrich.Normalized) Prompt {
	p := Prompt{
		Metadata: Metadata{
			SignalID:   record.SignalID,
			Timestamp:  record.Timestamp,
			Category:   record.Category,
			Confidence: record.Confidence,
		},
		System: System{
			Role: "You are a professional software engineer sharing development updates on LinkedIn.",
			Guidelines: []string{
				"Write in first person",
				"Be specific about the technical work",
				"Keep the tone authentic, not promotional",
				"Do not fabricate details beyond the provided context",
			},
		},
		Instructions: Instructions{
			Topic:      record.Topic,
			Context:    record.Context,
			SignalType: record.SignalType,
			Category:   record.Category,
			Sources:    record.Sources,
			Confidence: record.Confidence,
		},
		Constraints: Constraints{
			Length: Length{Min: b.policy.MinWords, Max: b.policy.MaxWords, Unit: "words"},
			Structure: Structure{
				Include: []string{"hook opening line", "concrete detail", "closing question or call to action"},
				Avoid:   []string{"markdown formatting", "emojis in every sentence", "buzzword lists"},
			},
			Formatting: Formatting{
				MinHashtags: b.policy.MinHashtags,
				MaxHashtags: b.policy.MaxHashtags,
				Tone:        b.policy.Tone,
			},
		},
	}

	if record.SourceData != nil && record.SourceData.URL != "" {
		p.Attribution = record.SourceData.URL
	}
	return p
}

// Validate checks required-field presence. Non-fatal; the caller logs
// and proceeds with the fallback path on failure.
func Validate(p Prompt) bool {
	if p.Metadata.SignalID == "" {
		return false
	}
	if p.Instructions.Topic == "" {
		return false
	}
	if p.System.Role == "" || len(p.System.Guidelines) == 0 {
		return false
	}
	if p.Constraints.Length.Max <= 0 {
		return false
	}
	return true
}

// Message is a role-tagged provider message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Formatter adapts a prompt into a provider-specific shape
type Formatter func(Prompt) (any, error)

var formatters = map[string]Formatter{
	"openai": formatOpenAI,
	"single": formatSingleBlock,
}

// RegisterFormat adds a provider shape without touching Build
func RegisterFormat(name string, f Formatter) {
	formatters[name] = f
}

// ToProviderFormat adapts the prompt's semantic content to the named
// provider shape without altering substance.
func ToProviderFormat(p Prompt, provider string) (any, error) {
	f, ok := formatters[provider]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "unknown provider format").WithContext("provider", provider)
	}
	return f(p)
}

func formatOpenAI(p Prompt) (any, error) {
	return []Message{
		{Role: "system", Content: systemText(p)},
		{Role: "user", Content: userText(p)},
	}, nil
}

func formatSingleBlock(p Prompt) (any, error) {
	return systemText(p) + "\n\n" + userText(p), nil
}

func systemText(p Prompt) string {
	var sb strings.Builder
	sb.WriteString(p.System.Role)
	sb.WriteString("\n\nGuidelines:\n")
	for _, g := range p.System.Guidelines {
		sb.WriteString("- " + g + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func userText(p Prompt) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a LinkedIn post about: %s\n\n", p.Instructions.Topic)
	fmt.Fprintf(&sb, "Context: %s\n", p.Instructions.Context)
	fmt.Fprintf(&sb, "Activity type: %s (%s)\n\n", p.Instructions.SignalType, p.Instructions.Category)
	fmt.Fprintf(&sb, "Length: %d-%d %s. ", p.Constraints.Length.Min, p.Constraints.Length.Max, p.Constraints.Length.Unit)
	fmt.Fprintf(&sb, "Include %d-%d relevant hashtags. Tone: %s.\n",
		p.Constraints.Formatting.MinHashtags, p.Constraints.Formatting.MaxHashtags, p.Constraints.Formatting.Tone)
	if len(p.Constraints.Structure.Include) > 0 {
		fmt.Fprintf(&sb, "Structure: %s.\n", strings.Join(p.Constraints.Structure.Include, "; "))
	}
	if len(p.Constraints.Structure.Avoid) > 0 {
		fmt.Fprintf(&sb, "Avoid: %s.\n", strings.Join(p.Constraints.Structure.Avoid, "; "))
	}
	if p.Attribution != "" {
		fmt.Fprintf(&sb, "Source: %s\n", p.Attribution)
	}
	return strings.TrimRight(sb.String(), "\n")
}
