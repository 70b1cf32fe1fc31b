// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package governance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianAudit/services/governance/evidence"
)

// Engine runs governance reviews. It is stateless across runs: all
// behavior comes from the Config captured at construction, so equal
// configs and equal inputs produce equal reports.
type Engine struct {
	cfg       Config
	source    evidence.Source
	evaluator Evaluator
	logger    *slog.Logger
}

// NewEngine builds a review engine.
//
// # Inputs
//
//   - cfg: validated at construction; an invalid config is rejected
//     here, never detected mid-run.
//   - source: where named evidence logs are read from. May be nil for
//     document-only deployments; a pipeline review naming logs then
//     fails with ErrNoSource.
//   - evaluator: optional enhancement strategy. Nil disables the phase.
//   - logger: nil falls back to slog.Default().
//
// # Outputs
//
//   - *Engine: ready for concurrent use.
//   - error: non-nil if the config is invalid.
func NewEngine(cfg Config, source evidence.Source, evaluator Evaluator, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, source: source, evaluator: evaluator, logger: logger}, nil
}

// Review runs one governance evaluation and returns its report.
//
// The deterministic phase always completes: missing logs, broken
// chains, and empty documents become findings, not errors. The only
// error paths are an input with no (or two) bundle shapes, a missing
// evidence source, context cancellation, and report serialization.
//
// # Inputs
//
//   - ctx: bounds the whole run; a nil ctx is replaced with Background.
//   - input: exactly one bundle shape, read-only.
//
// # Outputs
//
//   - *Report: the immutable, hashed run artifact.
//   - error: non-nil only for the caller errors listed above.
//
// # Thread Safety
//
// Safe for concurrent use; runs share no state.
func (e *Engine) Review(ctx context.Context, input ReviewInput) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	mode, err := input.Mode()
	if err != nil {
		return nil, err
	}

	ctx, span := startReviewSpan(ctx, mode)
	defer span.End()

	var results map[Dimension]dimResult
	switch mode {
	case ModePipeline:
		results, err = e.reviewPipeline(ctx, input.Pipeline)
		if err != nil {
			return nil, err
		}
	default:
		results = e.reviewDocument(input.Document)
	}

	dims := buildDimensions(e.cfg.Weights, results)

	var modelUsed, narrative string
	if input.Evaluator != "" {
		modelUsed = input.Evaluator
		dims, narrative = e.enhance(ctx, mode, input, dims)
	}

	report, err := buildReport(e.cfg, mode, dims, modelUsed, narrative, start)
	if err != nil {
		return nil, err
	}
	setReviewSpanResult(span, report)

	recordReview(ctx, report)
	e.logger.Info("governance review complete",
		"mode", mode,
		"confidence", report.ConfidenceScore,
		"tier", report.TrustTier,
		"findings", report.TotalFindings,
		"duration_ms", report.DurationMs,
	)
	return report, nil
}

// reviewPipeline scores pipeline artifacts. Logs are read exactly once;
// the checkers then run concurrently over the immutable snapshot and
// their findings merge by concatenation, so concurrency cannot change
// the outcome.
func (e *Engine) reviewPipeline(ctx context.Context, b *PipelineBundle) (map[Dimension]dimResult, error) {
	if len(b.EvidenceLogs) > 0 && e.source == nil {
		return nil, ErrNoSource
	}
	logs, err := loadLogs(ctx, e.source, b.EvidenceLogs)
	if err != nil {
		return nil, err
	}

	var integrity, temporal, correlation, methodology, bias dimResult

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { integrity = scoreIntegrity(logs, e.cfg.Policy.Integrity); return nil })
	g.Go(func() error { temporal = scoreTemporal(logs, e.cfg.Policy.Temporal); return nil })
	g.Go(func() error { correlation = scoreCorrelation(logs, b.Probes); return nil })
	g.Go(func() error { methodology = scorePipelineMethodology(b, e.cfg.Policy.Pipeline.Methodology); return nil })
	g.Go(func() error { bias = scorePipelineBias(b, e.cfg.Policy.Pipeline.Bias); return nil })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return map[Dimension]dimResult{
		DimensionMethodology:       methodology,
		DimensionEvidenceIntegrity: integrity,
		DimensionCompleteness:      meanResult(temporal, correlation),
		DimensionBiasDetection:     bias,
	}, nil
}

// reviewDocument scores a normalized document. The four dimension
// scorers and three supplementary checks run concurrently; the
// supplementary deltas then fold into their fixed target dimensions.
func (e *Engine) reviewDocument(b *DocumentBundle) map[Dimension]dimResult {
	pol := e.cfg.Policy.Document

	var (
		methodology, quality, completeness, bias dimResult
		auditor, sysdesc, structure              supplementary
	)

	var g errgroup.Group
	g.Go(func() error { methodology = scoreDocMethodology(b, pol.Methodology); return nil })
	g.Go(func() error { quality = scoreDocEvidence(b, pol.Evidence); return nil })
	g.Go(func() error { completeness = scoreDocCompleteness(b, pol.Completeness); return nil })
	g.Go(func() error { bias = scoreDocBias(b, pol.Bias); return nil })
	g.Go(func() error { auditor = checkAuditorLegitimacy(b.Metadata, pol.Auditor); return nil })
	g.Go(func() error { sysdesc = checkSystemDescription(b, pol.SystemDescription); return nil })
	g.Go(func() error { structure = checkStructure(b.Metadata, pol.Structural); return nil })
	_ = g.Wait()

	return map[Dimension]dimResult{
		DimensionMethodology:       foldSupplementary(methodology, auditor, structure),
		DimensionEvidenceIntegrity: foldSupplementary(quality, sysdesc),
		DimensionCompleteness:      completeness,
		DimensionBiasDetection:     bias,
	}
}

// enhance runs the optional evaluator phase. Every failure mode keeps
// the deterministic result: the phase can refine a report, never break
// one.
func (e *Engine) enhance(ctx context.Context, mode ReviewMode, input ReviewInput, dims []DimensionScore) ([]DimensionScore, string) {
	if e.evaluator == nil {
		e.logger.Warn("evaluator requested but none configured; skipping enhancement",
			"model", input.Evaluator)
		return dims, ""
	}

	ectx, cancel := context.WithTimeout(ctx, e.cfg.EnhancementTimeout)
	defer cancel()

	ectx, span := startEnhanceSpan(ectx, input.Evaluator)
	defer span.End()

	eval, err := e.evaluator.Evaluate(ectx, EvaluationRequest{
		Model:    input.Evaluator,
		Mode:     mode,
		Input:    input,
		Baseline: dims,
	})
	if err != nil || eval == nil {
		if err == nil {
			err = errors.New("evaluator returned no evaluation")
		}
		span.RecordError(err)
		recordEnhancementFailure(ctx)
		e.logger.Warn("enhancement phase failed; deterministic result stands",
			"model", input.Evaluator, "error", err)
		return dims, ""
	}

	outcome := applyEnhancement(dims, eval, e.cfg)
	if outcome.droppedFindings > 0 || outcome.ignoredAdjustments > 0 {
		e.logger.Debug("evaluator output partially discarded",
			"model", input.Evaluator,
			"dropped_findings", outcome.droppedFindings,
			"ignored_adjustments", outcome.ignoredAdjustments,
		)
	}
	return outcome.dims, eval.Narrative
}

// VerifyLogs checks the named logs' hash chains without scoring. This
// backs the standalone verification endpoint.
//
// # Inputs
//
//   - ctx: bounds the reads.
//   - names: evidence log names; order is preserved in the result.
//
// # Outputs
//
//   - []LogReview: one per name, found or not.
//   - error: non-nil if no source is configured or ctx ends.
func (e *Engine) VerifyLogs(ctx context.Context, names []string) ([]LogReview, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if e.source == nil {
		return nil, ErrNoSource
	}

	ctx, span := startVerifySpan(ctx, len(names))
	defer span.End()

	logs, err := loadLogs(ctx, e.source, names)
	if err != nil {
		return nil, err
	}

	reviews := make([]LogReview, len(logs))
	for i, lg := range logs {
		found, status := chainStatusOf(lg)
		reviews[i] = LogReview{Name: lg.name, Found: found, Status: status}
	}
	return reviews, nil
}
