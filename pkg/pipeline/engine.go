// Package pipeline orchestrates one detection-to-publish run over all
// fresh signals.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/classify"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/enrich"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/generate"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/image"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/ledger"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/logging"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/prompt"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/publish"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/signal"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/source"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/telemetry"
)

const workflowName = "signal_pipeline"

// SignalStatus is a per-signal terminal outcome within a run
type SignalStatus string

const (
	SignalPublished SignalStatus = "published"
	SignalQueued    SignalStatus = "queued"
	SignalSkipped   SignalStatus = "skipped"
	SignalError     SignalStatus = "error"
)

// SignalResult records what happened to one signal
type SignalResult struct {
	SignalID string       `json:"signal_id"`
	Status   SignalStatus `json:"status"`
	QueueID  string       `json:"queue_id,omitempty"`
	PostID   string       `json:"post_id,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// RunResult summarizes a pipeline run
type RunResult struct {
	Detected  int            `json:"detected"`
	Results   []SignalResult `json:"results"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
}

// Engine wires the pipeline stages together. Signals are processed
// sequentially and independently: one signal's failure is recorded and
// never aborts the batch.
type Engine struct {
	source     source.SignalSource
	classifier *classify.Classifier
	enricher   *enrich.Enricher
	normalizer *enrich.Normalizer
	builder    *prompt.Builder
	generator  *generate.Generator
	images     *image.Finder
	publisher  *publish.Publisher
	queue      *publish.Queue
	ledger     *ledger.Ledger
	logger     *logging.Logger
	threshold  float64
}

// Options bundles the engine's collaborators
type Options struct {
	Source     source.SignalSource
	Classifier *classify.Classifier
	Enricher   *enrich.Enricher
	Normalizer *enrich.Normalizer
	Builder    *prompt.Builder
	Generator  *generate.Generator
	Images     *image.Finder
	Publisher  *publish.Publisher
	Queue      *publish.Queue
	Ledger     *ledger.Ledger
	Logger     *logging.Logger
	Threshold  float64
}

// NewEngine creates a pipeline engine
func NewEngine(opts Options) *Engine {
	return &Engine{
		source:     opts.Source,
		classifier: opts.Classifier,
		enricher:   opts.Enricher,
		normalizer: opts.Normalizer,
		builder:    opts.Builder,
		generator:  opts.Generator,
		images:     opts.Images,
		publisher:  opts.Publisher,
		queue:      opts.Queue,
		ledger:     opts.Ledger,
		logger:     opts.Logger,
		threshold:  opts.Threshold,
	}
}

// Run executes one full pipeline pass. It returns an error only for
// run-wide failures such as an unusable signal source; per-signal
// failures are folded into the result entries.
func (e *Engine) Run(ctx context.Context) (RunResult, error) {
	started := time.Now()
	result := RunResult{StartedAt: started}

	signals, err := e.source.DetectSignals(ctx)
	if err != nil {
		e.ledger.RecordExecution(workflowName, "error", "detection failed: "+err.Error())
		telemetry.RecordRun("error")
		return result, err
	}
	result.Detected = len(signals)
	telemetry.RecordDetected(len(signals))

	classified := e.classifier.ClassifyBatch(signals)
	eligible := classify.FilterByConfidence(classified, e.threshold)

	// Below-threshold signals are still marked processed so the next
	// poll does not rediscover them.
	eligibleIDs := make(map[string]struct{}, len(eligible))
	for _, cs := range eligible {
		eligibleIDs[cs.ID] = struct{}{}
	}
	for _, cs := range classified {
		if _, ok := eligibleIDs[cs.ID]; ok {
			continue
		}
		e.ledger.MarkProcessed(cs.ID, map[string]any{
			"status":     string(SignalSkipped),
			"confidence": cs.Confidence,
		})
		result.Results = append(result.Results, SignalResult{SignalID: cs.ID, Status: SignalSkipped})
		telemetry.RecordSignalOutcome(string(SignalSkipped))
	}

	for _, cs := range eligible {
		res := e.processSignal(ctx, cs)
		result.Results = append(result.Results, res)
		telemetry.RecordSignalOutcome(string(res.Status))
	}

	if e.queue != nil {
		telemetry.SetQueueDepth(e.queue.Depth())
	}

	result.Duration = time.Since(started)
	status := "success"
	details := fmt.Sprintf("detected=%d processed=%d", result.Detected, len(result.Results))
	for _, r := range result.Results {
		if r.Status == SignalError {
			status = "partial"
			break
		}
	}
	e.ledger.RecordExecution(workflowName, status, details)
	telemetry.RecordRun(status)

	e.logger.Info(logging.CategoryPipeline, "run_complete", "pipeline run complete", map[string]any{
		"detected": result.Detected,
		"results":  len(result.Results),
		"duration": result.Duration.String(),
	})
	return result, nil
}

// processSignal runs one signal through enrich, normalize, prompt,
// generate and publish. The recover boundary converts panics into an
// error result so the batch continues.
func (e *Engine) processSignal(ctx context.Context, cs signal.Classified) (res SignalResult) {
	res = SignalResult{SignalID: cs.ID}

	defer func() {
		if r := recover(); r != nil {
			res.Status = SignalError
			res.Error = fmt.Sprintf("panic: %v", r)
			e.logger.Error(logging.CategoryPipeline, "signal_failed", "signal pipeline panicked", map[string]any{
				"signal_id": cs.ID,
				"panic":     fmt.Sprintf("%v", r),
			})
			e.ledger.MarkProcessed(cs.ID, map[string]any{"status": string(SignalError), "error": res.Error})
		}
	}()

	enriched := e.enricher.EnrichSignal(ctx, cs)
	record := e.normalizer.Normalize(enriched)
	if !e.normalizer.Validate(record) {
		e.logger.Warn(logging.CategoryPipeline, "invalid_record", "normalized record failed validation", map[string]any{
			"signal_id": cs.ID,
		})
	}

	p := e.builder.Build(record)
	content := e.generator.Generate(ctx, p)
	if content.Provider == generate.ProvenanceFallback {
		telemetry.RecordFallback()
	}

	var suggestion image.Suggestion
	if e.images != nil {
		suggestion = e.images.Find(ctx, record.Topic, record.Category)
	}

	pub := e.publisher.Publish(ctx, content)
	switch pub.Status {
	case publish.ResultPublished:
		res.Status = SignalPublished
		res.PostID = pub.PostID
	case publish.ResultQueued:
		res.Status = SignalQueued
		res.QueueID = pub.QueueID
	default:
		res.Status = SignalError
		res.Error = pub.Error
	}

	e.ledger.MarkProcessed(cs.ID, map[string]any{
		"status":     string(res.Status),
		"category":   string(cs.Category),
		"confidence": cs.Confidence,
		"provider":   string(content.Provider),
		"image":      string(suggestion.Type),
	})
	return res
}
