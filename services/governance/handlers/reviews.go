// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianAudit/services/governance"
	"github.com/AleutianAI/AleutianAudit/services/governance/observability"
)

// recordError reports an API error to Prometheus when metrics are up.
func recordError(endpoint observability.Endpoint, code observability.ErrorCode) {
	if m := observability.DefaultMetrics; m != nil {
		m.RecordError(endpoint, code)
	}
}

// SubmitReview returns the handler for POST /v1/governance/reviews.
//
// # Description
//
// Parses a ReviewInput from the request body, runs the review, and
// returns the finished report. The body must carry exactly one of the
// "pipeline" or "document" shapes; an optional "evaluator" field names
// an LLM model for the bounded enhancement phase.
//
// # Inputs
//
//   - svc: the review service, typically *governance.Engine.
//
// # Outputs
//
//   - 200 with the governance.Report on success.
//   - 400 if the body is malformed, empty, or carries both shapes.
//   - 403 if an enterprise authorizer rejects the submission.
//   - 503 if the engine has no evidence source configured.
//   - 500 on any other failure.
//
// # Example
//
//	v1.POST("/governance/reviews", handlers.SubmitReview(engine))
func SubmitReview(svc Reviewer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "handlers.submit_review")
		defer span.End()

		var input governance.ReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			span.RecordError(err)
			recordError(observability.EndpointReview, observability.ErrorCodeValidation)
			slog.Warn("review request rejected", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		mode, err := input.Mode()
		if err != nil {
			span.RecordError(err)
			recordError(observability.EndpointReview, observability.ErrorCodeValidation)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		span.SetAttributes(
			attribute.String("review.mode", string(mode)),
			attribute.Bool("review.enhanced", input.Evaluator != ""),
		)

		if authz, ok := svc.(ReviewAuthorizer); ok {
			if err := authz.AuthorizeReview(ctx, input); err != nil {
				span.RecordError(err)
				recordError(observability.EndpointReview, observability.ErrorCodeForbidden)
				slog.Warn("review submission denied", "mode", mode, "error", err)
				c.JSON(http.StatusForbidden, gin.H{"error": "submission not authorized"})
				return
			}
		}

		report, err := svc.Review(ctx, input)
		if err != nil {
			span.RecordError(err)
			switch {
			case errors.Is(err, governance.ErrNoInput), errors.Is(err, governance.ErrBothShapes):
				recordError(observability.EndpointReview, observability.ErrorCodeValidation)
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, governance.ErrNoSource):
				recordError(observability.EndpointReview, observability.ErrorCodeNoSource)
				slog.Error("review failed: no evidence source configured")
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "evidence source unavailable"})
			default:
				recordError(observability.EndpointReview, observability.ErrorCodeInternal)
				slog.Error("review failed", "mode", mode, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "review failed"})
			}
			return
		}

		if archiver, ok := svc.(ReportArchiver); ok {
			if err := archiver.ArchiveReport(ctx, report); err != nil {
				slog.Warn("report archive failed", "report_id", report.ID, "error", err)
			}
		}

		if m := observability.DefaultMetrics; m != nil {
			m.RecordReview(string(report.Mode), string(report.TrustTier), report.ConfidenceScore)
		}

		slog.Info("review served",
			"report_id", report.ID,
			"mode", report.Mode,
			"confidence", report.ConfidenceScore,
			"tier", report.TrustTier,
		)
		c.JSON(http.StatusOK, report)
	}
}
