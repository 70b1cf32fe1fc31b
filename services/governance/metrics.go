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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for governance review operations.
var (
	tracer = otel.Tracer("aleutian.governance")
	meter  = otel.Meter("aleutian.governance")
)

// startReviewSpan creates a span for one governance review run.
func startReviewSpan(ctx context.Context, mode ReviewMode) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Engine.Review",
		trace.WithAttributes(
			attribute.String("review.mode", string(mode)),
		),
	)
}

// setReviewSpanResult sets the result attributes on a review span.
func setReviewSpanResult(span trace.Span, report *Report) {
	span.SetAttributes(
		attribute.Int("review.confidence", report.ConfidenceScore),
		attribute.String("review.tier", string(report.TrustTier)),
		attribute.Int("review.findings", report.TotalFindings),
	)
}

// startEnhanceSpan creates a span for the enhancement phase.
func startEnhanceSpan(ctx context.Context, model string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Engine.Enhance",
		trace.WithAttributes(
			attribute.String("review.evaluator", model),
		),
	)
}

// startVerifySpan creates a span for a standalone log verification.
func startVerifySpan(ctx context.Context, logCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Engine.VerifyLogs",
		trace.WithAttributes(
			attribute.Int("logs.count", logCount),
		),
	)
}

// Metrics for governance review operations.
var (
	reviewLatency       metric.Float64Histogram
	reviewTotal         metric.Int64Counter
	confidenceScores    metric.Int64Histogram
	findingsTotal       metric.Int64Counter
	enhancementFailures metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		reviewLatency, err = meter.Float64Histogram(
			"governance_review_duration_seconds",
			metric.WithDescription("Duration of governance review runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		reviewTotal, err = meter.Int64Counter(
			"governance_reviews_total",
			metric.WithDescription("Total number of governance reviews"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		confidenceScores, err = meter.Int64Histogram(
			"governance_confidence_score",
			metric.WithDescription("Confidence score distribution across reviews"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		findingsTotal, err = meter.Int64Counter(
			"governance_findings_total",
			metric.WithDescription("Total findings emitted, by severity"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		enhancementFailures, err = meter.Int64Counter(
			"governance_enhancement_failures_total",
			metric.WithDescription("Enhancement phases that failed and were skipped"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordReview records metrics for one completed review.
func recordReview(ctx context.Context, report *Report) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("mode", string(report.Mode)),
		attribute.String("tier", string(report.TrustTier)),
	)

	reviewLatency.Record(ctx, (time.Duration(report.DurationMs) * time.Millisecond).Seconds(), attrs)
	reviewTotal.Add(ctx, 1, attrs)
	confidenceScores.Record(ctx, int64(report.ConfidenceScore), attrs)

	for severity, count := range report.FindingsBySeverity {
		if count == 0 {
			continue
		}
		findingsTotal.Add(ctx, int64(count), metric.WithAttributes(
			attribute.String("severity", string(severity)),
		))
	}
}

// recordEnhancementFailure counts a skipped enhancement phase.
func recordEnhancementFailure(ctx context.Context) {
	if err := initMetrics(); err != nil {
		return
	}
	enhancementFailures.Add(ctx, 1)
}
