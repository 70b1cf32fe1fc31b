// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package routes wires the governance handlers into a Gin router.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianAudit/services/governance/handlers"
	"github.com/AleutianAI/AleutianAudit/services/governance/observability"
)

// Engine is the combined service surface the governance routes need.
// *governance.Engine satisfies it.
type Engine interface {
	handlers.Reviewer
	handlers.LogVerifier
}

// RegisterRoutes registers all governance routes with the router.
//
// Description:
//
//	Registers all /v1/governance/* endpoints with the given Gin router
//	group. The router group should already have any required middleware
//	applied (tracing, recovery, request logging).
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	engine - The review engine
//	store - Evidence store readiness probe; nil when none is configured
//
// Endpoints:
//
//	POST /v1/governance/reviews - Run a trust review
//	POST /v1/governance/evidence/verify - Verify evidence hash chains
//	GET  /v1/governance/health - Liveness check
//	GET  /v1/governance/ready - Readiness check
//
// Example:
//
//	engine, _ := governance.NewEngine(cfg, store, evaluator, logger)
//
//	v1 := router.Group("/v1")
//	routes.RegisterRoutes(v1, engine, store)
func RegisterRoutes(rg *gin.RouterGroup, engine Engine, store handlers.ReadinessChecker) {
	gov := rg.Group("/governance")
	{
		// Reviews
		gov.POST("/reviews",
			observability.Middleware(observability.EndpointReview),
			handlers.SubmitReview(engine))

		// Evidence verification
		gov.POST("/evidence/verify",
			observability.Middleware(observability.EndpointVerify),
			handlers.VerifyEvidence(engine))

		// Health checks
		gov.GET("/health", handlers.Health())
		gov.GET("/ready", handlers.Ready(store))
	}
}
