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
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianAudit/services/governance"
)

// ReadinessChecker reports whether a dependency can serve traffic.
//
// *badger.Store satisfies this interface.
type ReadinessChecker interface {
	Healthy(ctx context.Context) error
}

// Health returns the handler for GET /v1/governance/health.
//
// Liveness only. Returns 200 whenever the process is up.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"service":        "governd",
			"engine_version": governance.EngineVersion,
			"api_version":    governance.APIVersion,
		})
	}
}

// Ready returns the handler for GET /v1/governance/ready.
//
// # Description
//
// Probes the evidence store. A nil checker means the service was started
// without one, which still counts as ready; reviews that name evidence
// logs will fail per-request instead.
//
// # Outputs
//
//   - 200 when the store answers the probe.
//   - 503 when the probe fails.
func Ready(store ReadinessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ready", "evidence_store": "not configured"})
			return
		}
		if err := store.Healthy(c.Request.Context()); err != nil {
			slog.Warn("readiness probe failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
