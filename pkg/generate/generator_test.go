package generate

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	apperrors "github.com/SyedFrazAli/linkedin-automation-engine/pkg/errors"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/enrich"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/logging"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/prompt"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/signal"
)

type stubTextGenerator struct {
	text  string
	err   error
	calls int
	last  []prompt.Message
}

func (s *stubTextGenerator) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	s.calls++
	s.last = messages
	return s.text, s.err
}

func (s *stubTextGenerator) Model() string { return "stub-model" }

func testPrompt() prompt.Prompt {
	record := enrich.Normalized{
		Topic:      "memory leak worker",
		Context:    "Fixed a leak in the worker pool.",
		Category:   signal.CategoryCode,
		SignalType: signal.KindCommit,
		Confidence: 0.76,
		Sources:    []string{},
		SignalID:   "commit:abc",
		Timestamp:  time.Now(),
	}
	return prompt.NewBuilder(prompt.DefaultPolicy()).Build(record)
}

func TestGeneratePrimarySuccess(t *testing.T) {
	stub := &stubTextGenerator{text: "Shipped a fix for the worker pool leak today. #Coding"}
	g := NewGenerator(stub, 0, time.Second, logging.NewNopLogger())

	got := g.Generate(context.Background(), testPrompt())
	if got.Provider != ProvenancePrimary {
		t.Errorf("provider = %s, want primary", got.Provider)
	}
	if got.Model != "stub-model" {
		t.Errorf("model = %s", got.Model)
	}
	if stub.calls != 1 {
		t.Errorf("primary called %d times", stub.calls)
	}
	if len(stub.last) != 2 {
		t.Errorf("expected system+user messages, got %d", len(stub.last))
	}
}

func TestGenerateFallbackOnError(t *testing.T) {
	stub := &stubTextGenerator{err: apperrors.New(apperrors.ErrCodeRateLimited, "throttled")}
	g := NewGenerator(stub, 0, time.Second, logging.NewNopLogger())

	got := g.Generate(context.Background(), testPrompt())
	if got.Provider != ProvenanceFallback {
		t.Errorf("provider = %s, want fallback", got.Provider)
	}
	if got.Text == "" {
		t.Error("fallback text must be non-empty")
	}
	if got.Metadata["placeholder"] != true {
		t.Error("fallback must be marked as a placeholder in metadata")
	}
}

func TestGenerateFallbackOnPlainError(t *testing.T) {
	stub := &stubTextGenerator{err: fmt.Errorf("connection reset")}
	g := NewGenerator(stub, 0, time.Second, logging.NewNopLogger())

	got := g.Generate(context.Background(), testPrompt())
	if got.Provider != ProvenanceFallback || got.Text == "" {
		t.Errorf("unclassified errors must also degrade: %+v", got)
	}
}

func TestGenerateNoProviderUsesFallback(t *testing.T) {
	g := NewGenerator(nil, 0, time.Second, logging.NewNopLogger())
	got := g.Generate(context.Background(), testPrompt())
	if got.Provider != ProvenanceFallback {
		t.Errorf("provider = %s, want fallback", got.Provider)
	}
}

func TestGenerateInvalidPromptUsesFallback(t *testing.T) {
	stub := &stubTextGenerator{text: "should not be called"}
	g := NewGenerator(stub, 0, time.Second, logging.NewNopLogger())

	bad := testPrompt()
	bad.Metadata.SignalID = ""
	got := g.Generate(context.Background(), bad)
	if got.Provider != ProvenanceFallback {
		t.Errorf("provider = %s, want fallback", got.Provider)
	}
	if stub.calls != 0 {
		t.Error("invalid prompt must not reach the primary capability")
	}
}

func TestGenerateThrottleSpacesCalls(t *testing.T) {
	stub := &stubTextGenerator{text: "post text"}
	g := NewGenerator(stub, 50*time.Millisecond, time.Second, logging.NewNopLogger())

	start := time.Now()
	g.Generate(context.Background(), testPrompt())
	g.Generate(context.Background(), testPrompt())
	elapsed := time.Since(start)

	if elapsed < 50*time.Millisecond {
		t.Errorf("second call not delayed: elapsed %s", elapsed)
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	p := testPrompt()
	a := FallbackContent(p)
	b := FallbackContent(p)
	if a.Text != b.Text {
		t.Error("fallback template must be deterministic")
	}
	if !strings.Contains(a.Text, "memory leak worker") {
		t.Errorf("fallback should mention the topic: %q", a.Text)
	}
	if !strings.Contains(a.Text, "#") {
		t.Error("fallback should carry hashtags")
	}
}

func TestPostProcess(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips code fences", "```\npost body\n```", "post body"},
		{"strips bold markers", "This is **important** work", "This is important work"},
		{"strips lead label", "Post: actual content", "actual content"},
		{"collapses blank runs", "a\n\n\n\nb", "a\n\nb"},
		{"trims", "  padded  ", "padded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PostProcess(tc.in); got != tc.want {
				t.Errorf("PostProcess(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPostProcessTruncatesToDestinationLimit(t *testing.T) {
	long := strings.Repeat("x", PostMaxChars+500)
	got := PostProcess(long)
	if len(got) != PostMaxChars {
		t.Errorf("length = %d, want %d", len(got), PostMaxChars)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated output should end with ellipsis")
	}
}

func TestPostProcessTruncatesOnRuneBoundaries(t *testing.T) {
	long := strings.Repeat("日", PostMaxChars+100)
	got := PostProcess(long)
	if !utf8.ValidString(got) {
		t.Fatal("truncation must not split a multibyte character")
	}
	if n := utf8.RuneCountInString(got); n != PostMaxChars {
		t.Errorf("length = %d chars, want %d", n, PostMaxChars)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated output should end with ellipsis")
	}
}

func TestFallbackTruncatesMultibyteContext(t *testing.T) {
	p := testPrompt()
	p.Instructions.Context = strings.Repeat("é", PostMaxChars+200)

	got := FallbackContent(p)
	if !utf8.ValidString(got.Text) {
		t.Fatal("fallback truncation must not split a multibyte character")
	}
	if n := utf8.RuneCountInString(got.Text); n > PostMaxChars {
		t.Errorf("fallback text length %d chars exceeds destination limit", n)
	}
}

type shapedTextGenerator struct {
	stubTextGenerator
	format string
}

func (s *shapedTextGenerator) PromptFormat() string { return s.format }

func TestGenerateUsesProviderSelectedFormat(t *testing.T) {
	prompt.RegisterFormat("user-only", func(p prompt.Prompt) (any, error) {
		return []prompt.Message{{Role: "user", Content: p.Instructions.Topic}}, nil
	})
	stub := &shapedTextGenerator{stubTextGenerator: stubTextGenerator{text: "post text"}, format: "user-only"}
	g := NewGenerator(stub, 0, time.Second, logging.NewNopLogger())

	got := g.Generate(context.Background(), testPrompt())
	if got.Provider != ProvenancePrimary {
		t.Errorf("provider = %s, want primary", got.Provider)
	}
	if len(stub.last) != 1 || stub.last[0].Role != "user" {
		t.Errorf("messages = %+v, want the provider-selected shape", stub.last)
	}
}

func TestGenerateFallsBackOnNonMessageFormat(t *testing.T) {
	prompt.RegisterFormat("flat-string", func(p prompt.Prompt) (any, error) {
		return p.Instructions.Topic, nil
	})
	stub := &shapedTextGenerator{stubTextGenerator: stubTextGenerator{text: "post text"}, format: "flat-string"}
	g := NewGenerator(stub, 0, time.Second, logging.NewNopLogger())

	got := g.Generate(context.Background(), testPrompt())
	if got.Provider != ProvenanceFallback {
		t.Errorf("provider = %s, want fallback when the format is not messages", got.Provider)
	}
	if stub.calls != 0 {
		t.Error("mismatched format must not reach the primary capability")
	}
}

func TestGeneratedTextNeverExceedsLimit(t *testing.T) {
	stub := &stubTextGenerator{text: strings.Repeat("words ", 1000)}
	g := NewGenerator(stub, 0, time.Second, logging.NewNopLogger())

	got := g.Generate(context.Background(), testPrompt())
	if len(got.Text) > PostMaxChars {
		t.Errorf("generated text length %d exceeds destination limit", len(got.Text))
	}
}
