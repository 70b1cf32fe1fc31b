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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// buildReport assembles the immutable run artifact. Dimension order,
// finding order, and finding IDs are all deterministic, so two runs
// over identical input produce identical reports up to the volatile
// fields excluded from the hash.
func buildReport(cfg Config, mode ReviewMode, dims []DimensionScore, modelUsed, narrative string, start time.Time) (*Report, error) {
	dims = assignFindingIDs(dims)

	total := 0
	bySeverity := map[Severity]int{
		SeverityCritical: 0,
		SeverityWarning:  0,
		SeverityInfo:     0,
	}
	for _, d := range dims {
		total += len(d.Findings)
		for _, f := range d.Findings {
			bySeverity[f.Severity]++
		}
	}

	confidence := aggregate(dims)
	tier := cfg.Tier(confidence)

	report := &Report{
		ID:                 uuid.NewString(),
		APIVersion:         APIVersion,
		EngineVersion:      EngineVersion,
		Mode:               mode,
		ConfidenceScore:    confidence,
		Dimensions:         dims,
		TrustTier:          tier,
		TotalFindings:      total,
		FindingsBySeverity: bySeverity,
		ExecutiveSummary:   executiveSummary(confidence, tier, bySeverity),
		EvaluatedAt:        time.Now().UTC(),
		DurationMs:         time.Since(start).Milliseconds(),
		ModelUsed:          modelUsed,
		Narrative:          narrative,
	}

	hash, err := ComputeReportHash(*report)
	if err != nil {
		return nil, fmt.Errorf("hash report: %w", err)
	}
	report.ReportHash = hash
	return report, nil
}

// assignFindingIDs numbers findings GOV-001, GOV-002, ... walking the
// dimensions in report order. Returns fresh slices; inputs are shared
// with scorer results and must not be mutated.
func assignFindingIDs(dims []DimensionScore) []DimensionScore {
	out := make([]DimensionScore, len(dims))
	next := 1
	for i, d := range dims {
		nd := d
		if len(d.Findings) > 0 {
			nd.Findings = make([]Finding, len(d.Findings))
			for j, f := range d.Findings {
				f.ID = fmt.Sprintf("GOV-%03d", next)
				next++
				nd.Findings[j] = f
			}
		}
		out[i] = nd
	}
	return out
}

// executiveSummary picks one of three fixed templates. The wording is
// intentionally rigid so downstream systems can rely on it; anything
// nuanced belongs in findings or the evaluator narrative.
func executiveSummary(score int, tier TrustTier, bySeverity map[Severity]int) string {
	switch {
	case bySeverity[SeverityCritical] > 0:
		return fmt.Sprintf(
			"Governance review found %d critical issue(s); the evidence base cannot be relied on until they are resolved. Confidence %d/100, tier %s.",
			bySeverity[SeverityCritical], score, tier)
	case bySeverity[SeverityWarning] > 0:
		return fmt.Sprintf(
			"Governance review completed with %d warning(s) and no critical issues; the flagged items reduce confidence. Confidence %d/100, tier %s.",
			bySeverity[SeverityWarning], score, tier)
	default:
		return fmt.Sprintf(
			"Governance review completed with no adverse findings; all verification checks passed. Confidence %d/100, tier %s.",
			score, tier)
	}
}

// ComputeReportHash hashes the canonical form of a report: the report
// serialized with its volatile fields (id, evaluated_at, duration_ms,
// report_hash) cleared. Two runs over identical input therefore carry
// identical hashes, and any edit to the stored report is detectable.
func ComputeReportHash(r Report) (string, error) {
	r.ID = ""
	r.EvaluatedAt = time.Time{}
	r.DurationMs = 0
	r.ReportHash = ""

	canonical, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal canonical report: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// VerifyReportHash recomputes a report's hash and reports whether it
// matches the stored one.
func VerifyReportHash(r Report) (bool, error) {
	want, err := ComputeReportHash(r)
	if err != nil {
		return false, err
	}
	return want == r.ReportHash, nil
}
