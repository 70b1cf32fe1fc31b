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
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianAudit/services/governance"
	"github.com/AleutianAI/AleutianAudit/services/governance/observability"
)

// VerifyEvidenceRequest is the body for POST /v1/governance/evidence/verify.
type VerifyEvidenceRequest struct {
	// Logs names the evidence logs to verify. At least one is required.
	Logs []string `json:"logs" binding:"required,min=1"`
}

// VerifyEvidenceResponse reports per-log chain status.
type VerifyEvidenceResponse struct {
	Results    []governance.LogReview `json:"results"`
	VerifiedAt time.Time              `json:"verified_at"`
}

// VerifyEvidence returns the handler for POST /v1/governance/evidence/verify.
//
// # Description
//
// Walks each named log's hash chain and reports whether it is intact,
// without producing a scored report. Logs that do not exist are returned
// with found=false rather than failing the whole request, so callers can
// probe a batch of names in one round trip.
//
// # Inputs
//
//   - svc: the verification service, typically *governance.Engine.
//
// # Outputs
//
//   - 200 with a VerifyEvidenceResponse on success.
//   - 400 if the body is malformed or names no logs.
//   - 503 if the engine has no evidence source configured.
//   - 500 on any other failure.
//
// # Example
//
//	v1.POST("/governance/evidence/verify", handlers.VerifyEvidence(engine))
func VerifyEvidence(svc LogVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "handlers.verify_evidence")
		defer span.End()

		var req VerifyEvidenceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			span.RecordError(err)
			recordError(observability.EndpointVerify, observability.ErrorCodeValidation)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		span.SetAttributes(attribute.Int("logs.count", len(req.Logs)))

		results, err := svc.VerifyLogs(ctx, req.Logs)
		if err != nil {
			span.RecordError(err)
			if errors.Is(err, governance.ErrNoSource) {
				recordError(observability.EndpointVerify, observability.ErrorCodeNoSource)
				slog.Error("verification failed: no evidence source configured")
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "evidence source unavailable"})
				return
			}
			recordError(observability.EndpointVerify, observability.ErrorCodeInternal)
			slog.Error("verification failed", "logs", len(req.Logs), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
			return
		}

		intact := 0
		for _, r := range results {
			if r.Found && r.Status.Intact {
				intact++
			}
		}
		slog.Info("evidence verified", "logs", len(results), "intact", intact)

		c.JSON(http.StatusOK, VerifyEvidenceResponse{
			Results:    results,
			VerifiedAt: time.Now().UTC(),
		})
	}
}
