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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampScore(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-15, 0},
		{0, 0},
		{42.5, 42.5},
		{100, 100},
		{117, 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, clampScore(tt.in), "clampScore(%v)", tt.in)
	}
}

func TestAggregate(t *testing.T) {
	dims := []DimensionScore{
		{Name: DimensionMethodology, Score: 100, Weight: 0.30},
		{Name: DimensionEvidenceIntegrity, Score: 70, Weight: 0.25},
		{Name: DimensionCompleteness, Score: 92.5, Weight: 0.25},
		{Name: DimensionBiasDetection, Score: 100, Weight: 0.20},
	}

	assert.Equal(t, 91, aggregate(dims), "30 + 17.5 + 23.125 + 20 rounds to 91")
}

func TestAggregate_RoundsHalfAwayFromZero(t *testing.T) {
	dims := []DimensionScore{
		{Name: DimensionMethodology, Score: 90, Weight: 0.30},
		{Name: DimensionEvidenceIntegrity, Score: 90, Weight: 0.25},
		{Name: DimensionCompleteness, Score: 90, Weight: 0.25},
		{Name: DimensionBiasDetection, Score: 92.5, Weight: 0.20},
	}

	assert.Equal(t, 91, aggregate(dims), "90.5 rounds up, not to even")
}

func TestAggregate_Empty(t *testing.T) {
	assert.Equal(t, 0, aggregate(nil))
}

func TestBuildDimensions_FixedOrder(t *testing.T) {
	// Feed the results in scrambled map order; output order never varies.
	results := map[Dimension]dimResult{
		DimensionBiasDetection:     {score: 80, rationale: "d"},
		DimensionMethodology:       {score: 50, rationale: "a"},
		DimensionCompleteness:      {score: 70, rationale: "c"},
		DimensionEvidenceIntegrity: {score: 60, rationale: "b"},
	}

	dims := buildDimensions(DefaultWeights(), results)

	require.Len(t, dims, 4)
	assert.Equal(t, []Dimension{
		DimensionMethodology, DimensionEvidenceIntegrity,
		DimensionCompleteness, DimensionBiasDetection,
	}, []Dimension{dims[0].Name, dims[1].Name, dims[2].Name, dims[3].Name})
	assert.Equal(t, []string{"a", "b", "c", "d"},
		[]string{dims[0].Rationale, dims[1].Rationale, dims[2].Rationale, dims[3].Rationale})
	assert.Equal(t, 0.30, dims[0].Weight)
	assert.Equal(t, 0.20, dims[3].Weight)
}

func TestBuildDimensions_SkipsAbsent(t *testing.T) {
	dims := buildDimensions(DefaultWeights(), map[Dimension]dimResult{
		DimensionMethodology: {score: 50},
	})

	require.Len(t, dims, 1)
	assert.Equal(t, DimensionMethodology, dims[0].Name)
}

func TestMeanResult(t *testing.T) {
	temporal := dimResult{
		score:    80,
		findings: []Finding{{Category: CategoryOrderingViolation, Severity: SeverityWarning}},
	}
	correlation := dimResult{
		score:    100,
		findings: []Finding{{Category: CategoryCorrelationMiss, Severity: SeverityWarning}},
	}

	r := meanResult(temporal, correlation)

	assert.Equal(t, 90.0, r.score)
	assert.Equal(t, "mean of temporal consistency (80) and evidence correlation (100)", r.rationale)
	require.Len(t, r.findings, 2)
	assert.Equal(t, CategoryOrderingViolation, r.findings[0].Category, "temporal findings come first")
	assert.Equal(t, CategoryCorrelationMiss, r.findings[1].Category)
}

func TestFoldSupplementary(t *testing.T) {
	base := dimResult{score: 50, rationale: "base", findings: []Finding{{Category: CategoryMethodology}}}

	r := foldSupplementary(base,
		supplementary{delta: -10, findings: []Finding{{Category: CategoryAuditorLegitimacy}}},
		supplementary{delta: 5},
	)

	assert.Equal(t, 45.0, r.score)
	assert.Equal(t, "base", r.rationale)
	require.Len(t, r.findings, 2)
	assert.Equal(t, CategoryAuditorLegitimacy, r.findings[1].Category)
}

func TestFoldSupplementary_Clamps(t *testing.T) {
	r := foldSupplementary(dimResult{score: 5}, supplementary{delta: -20})
	assert.Equal(t, 0.0, r.score)

	r = foldSupplementary(dimResult{score: 98}, supplementary{delta: 10})
	assert.Equal(t, 100.0, r.score)
}
