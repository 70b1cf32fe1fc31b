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
	"fmt"
	"math"
)

// clampScore bounds a score to the [0,100] dimension scale.
func clampScore(s float64) float64 {
	return math.Max(0, math.Min(100, s))
}

// aggregate computes the confidence score as the weighted sum of
// dimension scores, rounded to the nearest integer.
func aggregate(dims []DimensionScore) int {
	var sum float64
	for _, d := range dims {
		sum += d.Score * d.Weight
	}
	return int(math.Round(sum))
}

// buildDimensions assembles the report's dimension list in fixed order.
// Fixed ordering keeps reports byte-comparable across runs.
func buildDimensions(w Weights, results map[Dimension]dimResult) []DimensionScore {
	dims := make([]DimensionScore, 0, len(results))
	for _, name := range Dimensions() {
		r, ok := results[name]
		if !ok {
			continue
		}
		dims = append(dims, DimensionScore{
			Name:      name,
			Score:     r.score,
			Weight:    w.Of(name),
			Rationale: r.rationale,
			Findings:  r.findings,
		})
	}
	return dims
}

// meanResult combines the temporal and correlation checks into the
// pipeline completeness dimension: the mean of the two scores, with the
// findings of both.
func meanResult(temporal, correlation dimResult) dimResult {
	findings := make([]Finding, 0, len(temporal.findings)+len(correlation.findings))
	findings = append(findings, temporal.findings...)
	findings = append(findings, correlation.findings...)
	return dimResult{
		score: (temporal.score + correlation.score) / 2,
		rationale: fmt.Sprintf("mean of temporal consistency (%.0f) and evidence correlation (%.0f)",
			temporal.score, correlation.score),
		findings: findings,
	}
}

// foldSupplementary applies supplementary check deltas to a dimension
// result and re-clamps.
func foldSupplementary(r dimResult, sups ...supplementary) dimResult {
	for _, s := range sups {
		r.score += s.delta
		r.findings = append(r.findings, s.findings...)
	}
	r.score = clampScore(r.score)
	return r
}
