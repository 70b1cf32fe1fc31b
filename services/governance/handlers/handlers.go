// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers exposes the governance engine over HTTP.
//
// # Description
//
// This package implements the Gin handlers for the governance API:
//   - POST /v1/governance/reviews - run a trust review
//   - POST /v1/governance/evidence/verify - verify evidence chains only
//   - GET  /v1/governance/health - liveness
//   - GET  /v1/governance/ready - readiness
//
// Handlers are factories that close over narrow service interfaces rather
// than the concrete engine, so tests can substitute fakes and enterprise
// builds can wrap the engine with additional behavior.
//
// # Thread Safety
//
// All handlers are safe for concurrent use by the Gin router.
package handlers

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/AleutianAudit/services/governance"
)

var tracer = otel.Tracer("aleutian.governance.handlers")

// =============================================================================
// Service Interfaces
// =============================================================================

// Reviewer runs a full governance review over a submitted bundle.
//
// *governance.Engine satisfies this interface.
type Reviewer interface {
	Review(ctx context.Context, input governance.ReviewInput) (*governance.Report, error)
}

// LogVerifier checks evidence log hash chains without scoring them.
//
// *governance.Engine satisfies this interface.
type LogVerifier interface {
	VerifyLogs(ctx context.Context, names []string) ([]governance.LogReview, error)
}

// =============================================================================
// Enterprise Extension Points
// =============================================================================
//
// The interfaces below are optional. Handlers probe for them with a type
// assertion on the injected service; the open-source engine implements
// none of them. Enterprise deployments wrap the engine to add tenant
// authorization and report retention without forking the handlers.

// ReviewAuthorizer authorizes a review submission before it is executed.
//
// # Inputs
//
//   - ctx: carries request-scoped values (tenant, principal).
//   - input: the parsed review input.
//
// # Outputs
//
//   - error: non-nil to reject the submission. The handler responds 403.
type ReviewAuthorizer interface {
	AuthorizeReview(ctx context.Context, input governance.ReviewInput) error
}

// ReportArchiver persists finished reports for retention or later audit.
//
// Archive failures never fail the request; the handler logs them and
// returns the report anyway.
type ReportArchiver interface {
	ArchiveReport(ctx context.Context, report *governance.Report) error
}
