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

func TestScorePipelineMethodology_Complete(t *testing.T) {
	r := scorePipelineMethodology(completePipeline(), DefaultScoringPolicy().Pipeline.Methodology)

	assert.Equal(t, 100.0, r.score)
	assert.Equal(t, "all expected assessment phases are present", r.rationale)
	assert.Empty(t, r.findings)
}

func TestScorePipelineMethodology_EmptyPhaseIsNotAbsent(t *testing.T) {
	// A phase that ran and found nothing is distinct from one that never
	// ran: only the nil pointer is penalized.
	bundle := &PipelineBundle{
		Drift:       &DriftPhase{},
		Probes:      &ProbePhase{},
		Mapping:     &MappingPhase{},
		ThreatModel: &ThreatModel{},
		Criteria:    []string{"cc6.1"},
	}

	r := scorePipelineMethodology(bundle, DefaultScoringPolicy().Pipeline.Methodology)
	assert.Equal(t, 100.0, r.score)
	assert.Empty(t, r.findings)
}

func TestScorePipelineMethodology_MissingPhases(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(b *PipelineBundle)
		wantScore float64
		wantDesc  string
		wantSev   Severity
	}{
		{
			name:      "missing drift",
			mutate:    func(b *PipelineBundle) { b.Drift = nil },
			wantScore: 80,
			wantDesc:  "no configuration drift results were supplied",
			wantSev:   SeverityWarning,
		},
		{
			name:      "missing probes",
			mutate:    func(b *PipelineBundle) { b.Probes = nil },
			wantScore: 80,
			wantDesc:  "no adversarial probe results were supplied",
			wantSev:   SeverityWarning,
		},
		{
			name:      "missing mapping",
			mutate:    func(b *PipelineBundle) { b.Mapping = nil },
			wantScore: 80,
			wantDesc:  "no compliance mapping results were supplied",
			wantSev:   SeverityWarning,
		},
		{
			name:      "missing threat model",
			mutate:    func(b *PipelineBundle) { b.ThreatModel = nil },
			wantScore: 85,
			wantDesc:  "no threat model was declared for the assessment",
			wantSev:   SeverityWarning,
		},
		{
			name:      "missing criteria",
			mutate:    func(b *PipelineBundle) { b.Criteria = nil },
			wantScore: 90,
			wantDesc:  "no evaluation criteria were declared",
			wantSev:   SeverityInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := completePipeline()
			tt.mutate(bundle)

			r := scorePipelineMethodology(bundle, DefaultScoringPolicy().Pipeline.Methodology)

			assert.Equal(t, tt.wantScore, r.score)
			assert.Equal(t, "1 expected assessment phase(s) or declarations are absent", r.rationale)
			require.Len(t, r.findings, 1)
			assert.Equal(t, tt.wantDesc, r.findings[0].Description)
			assert.Equal(t, tt.wantSev, r.findings[0].Severity)
			assert.Equal(t, CategoryMethodology, r.findings[0].Category)
		})
	}
}

func TestScorePipelineMethodology_EverythingMissing(t *testing.T) {
	r := scorePipelineMethodology(&PipelineBundle{}, DefaultScoringPolicy().Pipeline.Methodology)

	assert.Equal(t, 15.0, r.score, "100 - 20 - 20 - 20 - 15 - 10")
	assert.Equal(t, "5 expected assessment phase(s) or declarations are absent", r.rationale)
	assert.Len(t, r.findings, 5)
}

func TestScorePipelineBias_Organic(t *testing.T) {
	bundle := &PipelineBundle{
		Probes: &ProbePhase{Results: []ProbeResult{
			{ID: "A", Outcome: OutcomeBlocked},
			{ID: "B", Outcome: OutcomeSucceeded},
			{ID: "C", Outcome: OutcomeBlocked},
		}},
		Drift: &DriftPhase{Findings: []DriftFinding{
			{ID: "D1", Severity: SeverityWarning},
			{ID: "D2", Severity: SeverityInfo},
			{ID: "D3", Severity: SeverityCritical},
		}},
	}

	r := scorePipelineBias(bundle, DefaultScoringPolicy().Pipeline.Bias)

	assert.Equal(t, 100.0, r.score)
	assert.Equal(t, "result distributions look organic", r.rationale)
	assert.Empty(t, r.findings)
}

func TestScorePipelineBias_UniformBlocked(t *testing.T) {
	bundle := &PipelineBundle{Probes: &ProbePhase{Results: []ProbeResult{
		{ID: "A", Outcome: OutcomeBlocked},
		{ID: "B", Outcome: OutcomeBlocked},
		{ID: "C", Outcome: OutcomeBlocked},
	}}}

	r := scorePipelineBias(bundle, DefaultScoringPolicy().Pipeline.Bias)

	assert.Equal(t, 90.0, r.score)
	require.Len(t, r.findings, 1)
	assert.Equal(t, "all 3 adversarial probes report blocked; a uniformly clean run is statistically suspect",
		r.findings[0].Description)
	assert.Equal(t, CategoryBias, r.findings[0].Category)
}

func TestScorePipelineBias_UniformSucceeded(t *testing.T) {
	bundle := &PipelineBundle{Probes: &ProbePhase{Results: []ProbeResult{
		{ID: "A", Outcome: OutcomeSucceeded},
		{ID: "B", Outcome: OutcomeSucceeded},
		{ID: "C", Outcome: OutcomeSucceeded},
	}}}

	r := scorePipelineBias(bundle, DefaultScoringPolicy().Pipeline.Bias)

	assert.Equal(t, 80.0, r.score, "every attack landing is worse than every attack blocked")
	require.Len(t, r.findings, 1)
	assert.Equal(t, "all 3 adversarial probes succeeded; the assessed controls blocked nothing",
		r.findings[0].Description)
}

func TestScorePipelineBias_BelowProbeSample(t *testing.T) {
	// Two uniform results are too small a sample to call suspicious.
	bundle := &PipelineBundle{Probes: &ProbePhase{Results: []ProbeResult{
		{ID: "A", Outcome: OutcomeBlocked},
		{ID: "B", Outcome: OutcomeBlocked},
	}}}

	r := scorePipelineBias(bundle, DefaultScoringPolicy().Pipeline.Bias)
	assert.Equal(t, 100.0, r.score)
	assert.Empty(t, r.findings)
}

func TestScorePipelineBias_UniformInconclusiveExempt(t *testing.T) {
	// The uniformity checks target blocked and succeeded only.
	bundle := &PipelineBundle{Probes: &ProbePhase{Results: []ProbeResult{
		{ID: "A", Outcome: OutcomeInconclusive},
		{ID: "B", Outcome: OutcomeInconclusive},
		{ID: "C", Outcome: OutcomeInconclusive},
	}}}

	r := scorePipelineBias(bundle, DefaultScoringPolicy().Pipeline.Bias)
	assert.Equal(t, 100.0, r.score)
}

func TestScorePipelineBias_DriftSeverityMonoculture(t *testing.T) {
	bundle := &PipelineBundle{Drift: &DriftPhase{Findings: []DriftFinding{
		{ID: "D1", Severity: SeverityWarning},
		{ID: "D2", Severity: SeverityWarning},
		{ID: "D3", Severity: SeverityWarning},
	}}}

	r := scorePipelineBias(bundle, DefaultScoringPolicy().Pipeline.Bias)

	assert.Equal(t, 90.0, r.score)
	assert.Equal(t, "1 suspicious result distribution(s) detected", r.rationale)
	require.Len(t, r.findings, 1)
	assert.Contains(t, r.findings[0].Description, `all 3 drift findings share severity "warning"`)
}

func TestScorePipelineBias_DriftBelowSample(t *testing.T) {
	bundle := &PipelineBundle{Drift: &DriftPhase{Findings: []DriftFinding{
		{ID: "D1", Severity: SeverityWarning},
		{ID: "D2", Severity: SeverityWarning},
	}}}

	r := scorePipelineBias(bundle, DefaultScoringPolicy().Pipeline.Bias)
	assert.Equal(t, 100.0, r.score)
}

func TestScorePipelineBias_Stacked(t *testing.T) {
	// Uniform blocked probes and a drift monoculture both fire.
	bundle := &PipelineBundle{
		Probes: &ProbePhase{Results: []ProbeResult{
			{ID: "A", Outcome: OutcomeBlocked},
			{ID: "B", Outcome: OutcomeBlocked},
			{ID: "C", Outcome: OutcomeBlocked},
		}},
		Drift: &DriftPhase{Findings: []DriftFinding{
			{ID: "D1", Severity: SeverityInfo},
			{ID: "D2", Severity: SeverityInfo},
			{ID: "D3", Severity: SeverityInfo},
		}},
	}

	r := scorePipelineBias(bundle, DefaultScoringPolicy().Pipeline.Bias)

	assert.Equal(t, 80.0, r.score)
	assert.Equal(t, "2 suspicious result distribution(s) detected", r.rationale)
	assert.Len(t, r.findings, 2)
}

func TestAllOutcomes(t *testing.T) {
	mixed := []ProbeResult{{Outcome: OutcomeBlocked}, {Outcome: OutcomeSucceeded}}
	uniform := []ProbeResult{{Outcome: OutcomeBlocked}, {Outcome: OutcomeBlocked}}

	assert.False(t, allOutcomes(mixed, OutcomeBlocked))
	assert.True(t, allOutcomes(uniform, OutcomeBlocked))
	assert.False(t, allOutcomes(uniform, OutcomeSucceeded))
	assert.True(t, allOutcomes(nil, OutcomeBlocked), "vacuously true; callers gate on sample size")
}

func TestUniformSeverity(t *testing.T) {
	_, uniform := uniformSeverity(nil)
	assert.False(t, uniform)

	sev, uniform := uniformSeverity([]DriftFinding{{Severity: SeverityInfo}, {Severity: SeverityInfo}})
	assert.True(t, uniform)
	assert.Equal(t, SeverityInfo, sev)

	_, uniform = uniformSeverity([]DriftFinding{{Severity: SeverityInfo}, {Severity: SeverityWarning}})
	assert.False(t, uniform)
}
