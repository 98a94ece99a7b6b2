// Package generate renders generation requests into post text, falling
// back to a deterministic template when the primary capability fails.
package generate

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/logging"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/prompt"
	"golang.org/x/time/rate"
)

// PostMaxChars is the destination length limit
const PostMaxChars = 3000

// Provenance marks where generated content came from
type Provenance string

const (
	ProvenancePrimary  Provenance = "primary"
	ProvenanceFallback Provenance = "fallback"
	ProvenanceError    Provenance = "error"
)

// Content is the output of a generation attempt
type Content struct {
	Text        string         `json:"text"`
	Provider    Provenance     `json:"provider"`
	Model       string         `json:"model"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// TextGenerator is the generative-text capability
type TextGenerator interface {
	Complete(ctx context.Context, messages []prompt.Message) (string, error)
	Model() string
}

// formatSelector lets a generator name the prompt format it expects.
// Generators without it get the default "openai" message shape.
type formatSelector interface {
	PromptFormat() string
}

// Generator drives the primary capability with a cooperative single-flow
// throttle and guarantees a fallback result on any failure.
type Generator struct {
	primary TextGenerator
	limiter *rate.Limiter
	timeout time.Duration
	logger  *logging.Logger
}

// NewGenerator creates a generator. minInterval is the minimum spacing
// between primary calls; zero disables the throttle.
func NewGenerator(primary TextGenerator, minInterval, timeout time.Duration, logger *logging.Logger) *Generator {
	var limiter *rate.Limiter
	if minInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{
		primary: primary,
		limiter: limiter,
		timeout: timeout,
		logger:  logger,
	}
}

// Generate produces post text for the prompt. It never returns an error:
// any primary failure degrades to the deterministic fallback template,
// detectable via Provider == ProvenanceFallback.
func (g *Generator) Generate(ctx context.Context, p prompt.Prompt) Content {
	if !prompt.Validate(p) {
		g.logger.Warn(logging.CategoryGenerate, "invalid_prompt", "prompt failed validation, using fallback", map[string]any{
			"signal_id": p.Metadata.SignalID,
		})
		return FallbackContent(p)
	}

	if g.primary == nil {
		g.logger.Info(logging.CategoryGenerate, "no_provider", "no text provider configured, using fallback", nil)
		return FallbackContent(p)
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return FallbackContent(p)
		}
	}

	format := "openai"
	if fs, ok := g.primary.(formatSelector); ok && fs.PromptFormat() != "" {
		format = fs.PromptFormat()
	}
	formatted, err := prompt.ToProviderFormat(p, format)
	if err != nil {
		g.logger.Warn(logging.CategoryGenerate, "format_failed", "prompt format adaptation failed", map[string]any{"error": err.Error()})
		return FallbackContent(p)
	}
	messages, ok := formatted.([]prompt.Message)
	if !ok {
		g.logger.Warn(logging.CategoryGenerate, "format_mismatch", "provider format did not yield messages, using fallback", map[string]any{
			"format": format,
		})
		return FallbackContent(p)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.primary.Complete(callCtx, messages)
	if err != nil {
		g.logger.Warn(logging.CategoryGenerate, "primary_failed", "primary generation failed, using fallback", map[string]any{
			"signal_id": p.Metadata.SignalID,
			"error":     err.Error(),
		})
		return FallbackContent(p)
	}

	cleaned := PostProcess(text)
	if cleaned == "" {
		g.logger.Warn(logging.CategoryGenerate, "empty_output", "primary returned empty output, using fallback", map[string]any{
			"signal_id": p.Metadata.SignalID,
		})
		return FallbackContent(p)
	}

	return Content{
		Text:     cleaned,
		Provider: ProvenancePrimary,
		Model:    g.primary.Model(),
		Metadata: map[string]any{
			"signal_id": p.Metadata.SignalID,
			"category":  string(p.Metadata.Category),
		},
		GeneratedAt: time.Now(),
	}
}

var (
	codeFenceRe  = regexp.MustCompile("(?s)```[a-z]*\n?|```")
	blankRunsRe  = regexp.MustCompile(`\n{3,}`)
	leadLabelRe  = regexp.MustCompile(`(?i)^(post|draft|output|here is the post)\s*:\s*`)
	boldMarkerRe = regexp.MustCompile(`\*\*([^*]*)\*\*`)
)

// PostProcess strips instruction-formatting artifacts, collapses excess
// blank lines, and hard-truncates to the destination limit.
func PostProcess(text string) string {
	out := strings.TrimSpace(text)
	out = codeFenceRe.ReplaceAllString(out, "")
	out = boldMarkerRe.ReplaceAllString(out, "$1")
	out = leadLabelRe.ReplaceAllString(out, "")
	out = blankRunsRe.ReplaceAllString(out, "\n\n")
	out = strings.TrimSpace(out)
	return truncatePost(out)
}

// truncatePost bounds text to the destination character limit, cutting on
// rune boundaries so multibyte text stays valid.
func truncatePost(text string) string {
	runes := []rune(text)
	if len(runes) <= PostMaxChars {
		return text
	}
	return string(runes[:PostMaxChars-3]) + "..."
}
