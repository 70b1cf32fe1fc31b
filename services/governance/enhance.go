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
	"fmt"
)

// Evaluator is the strategy interface for the optional enhancement
// phase. Implementations may call external models; the engine treats
// any error as "phase absent" and the deterministic result stands.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use; one Evaluator is
// shared across runs.
type Evaluator interface {
	Evaluate(ctx context.Context, req EvaluationRequest) (*Evaluation, error)
}

// EvaluationRequest is what an evaluator sees: the original input and
// the deterministic baseline it may refine but never replace.
type EvaluationRequest struct {
	// Model is the evaluator name the caller requested.
	Model string `json:"model"`

	Mode  ReviewMode  `json:"mode"`
	Input ReviewInput `json:"input"`

	// Baseline is the deterministic dimension outcome. Read-only.
	Baseline []DimensionScore `json:"baseline"`
}

// Evaluation is an evaluator's proposal. Adjustments are raw and are
// clamped by the engine before use; proposals for evidence_integrity or
// unknown dimensions are ignored.
type Evaluation struct {
	Adjustments map[Dimension]float64 `json:"adjustments,omitempty"`
	Findings    []EvaluatorFinding    `json:"findings,omitempty"`
	Narrative   string                `json:"narrative,omitempty"`
}

// EvaluatorFinding is a finding proposed by an evaluator. It becomes a
// report Finding only if its category routes to a dimension.
type EvaluatorFinding struct {
	Category    FindingCategory `json:"category"`
	Severity    Severity        `json:"severity"`
	Description string          `json:"description"`
	Remediation string          `json:"remediation,omitempty"`
}

// enhancementOutcome is the applied result of one evaluation.
type enhancementOutcome struct {
	dims []DimensionScore

	// droppedFindings counts evaluator findings whose category had no
	// route; they are discarded, not guessed at.
	droppedFindings int

	// ignoredAdjustments counts proposals for dimensions that accept
	// none (evidence_integrity) or that do not exist.
	ignoredAdjustments int
}

// applyEnhancement folds an evaluator's proposal into the deterministic
// baseline. Each accepted adjustment is clamped to the configured band,
// the adjusted score is re-clamped to [0,100], and routed findings are
// appended tagged with their source. The baseline slice is not mutated.
func applyEnhancement(dims []DimensionScore, eval *Evaluation, cfg Config) enhancementOutcome {
	out := enhancementOutcome{dims: make([]DimensionScore, len(dims))}

	routed := make(map[Dimension][]Finding)
	for _, ef := range eval.Findings {
		dim, ok := cfg.Routing[ef.Category]
		if !ok {
			out.droppedFindings++
			continue
		}
		routed[dim] = append(routed[dim], Finding{
			Severity:    normalizeSeverity(ef.Severity),
			Category:    ef.Category,
			Description: ef.Description,
			Remediation: ef.Remediation,
			Source:      SourceEnhancement,
		})
	}

	adjustable := make(map[Dimension]bool, 3)
	for _, d := range Dimensions() {
		if d != DimensionEvidenceIntegrity {
			adjustable[d] = true
		}
	}
	for dim := range eval.Adjustments {
		if !adjustable[dim] {
			out.ignoredAdjustments++
		}
	}

	for i, d := range dims {
		nd := d
		if adj, ok := eval.Adjustments[d.Name]; ok && adjustable[d.Name] {
			clamped := clampAdjustment(adj, cfg)
			if clamped != 0 {
				nd.Score = clampScore(nd.Score + clamped)
				nd.Rationale = fmt.Sprintf("%s; adjusted %+.1f by external evaluator", nd.Rationale, clamped)
			}
		}
		if extra := routed[d.Name]; len(extra) > 0 {
			merged := make([]Finding, 0, len(d.Findings)+len(extra))
			merged = append(merged, d.Findings...)
			merged = append(merged, extra...)
			nd.Findings = merged
		}
		out.dims[i] = nd
	}
	return out
}

// clampAdjustment bounds one raw adjustment to the configured band.
func clampAdjustment(adj float64, cfg Config) float64 {
	if adj < cfg.AdjustmentFloor {
		return cfg.AdjustmentFloor
	}
	if adj > cfg.AdjustmentCeiling {
		return cfg.AdjustmentCeiling
	}
	return adj
}

// normalizeSeverity coerces evaluator-supplied severities to the known
// set; anything unrecognized demotes to info rather than inflating.
func normalizeSeverity(s Severity) Severity {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return s
	default:
		return SeverityInfo
	}
}
