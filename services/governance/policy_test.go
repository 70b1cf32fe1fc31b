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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScoringPolicy_Values(t *testing.T) {
	p := DefaultScoringPolicy()

	assert.Equal(t, 30.0, p.Integrity.CriticalPenalty)

	assert.Equal(t, 15.0, p.Temporal.OrderingPenalty)
	assert.Equal(t, 5.0, p.Temporal.SpanPenalty)
	assert.Equal(t, 24.0, p.Temporal.MaxSpanHours)

	assert.Equal(t, 100.0, p.Pipeline.Methodology.Base)
	assert.Equal(t, 20.0, p.Pipeline.Methodology.MissingDriftPenalty)
	assert.Equal(t, 20.0, p.Pipeline.Methodology.MissingProbesPenalty)
	assert.Equal(t, 20.0, p.Pipeline.Methodology.MissingMappingPenalty)
	assert.Equal(t, 15.0, p.Pipeline.Methodology.MissingThreatModelPenalty)
	assert.Equal(t, 10.0, p.Pipeline.Methodology.MissingCriteriaPenalty)

	assert.Equal(t, 100.0, p.Pipeline.Bias.Base)
	assert.Equal(t, 3, p.Pipeline.Bias.MinProbeSample)
	assert.Equal(t, 10.0, p.Pipeline.Bias.UniformBlockedPenalty)
	assert.Equal(t, 20.0, p.Pipeline.Bias.UniformSucceededPenalty)
	assert.Equal(t, 3, p.Pipeline.Bias.MinDriftSample)
	assert.Equal(t, 10.0, p.Pipeline.Bias.SeverityMonoculturePenalty)

	assert.Equal(t, 40.0, p.Document.Methodology.Base)
	assert.Equal(t, 50.0, p.Document.Methodology.TechniqueBonus["reperformance"])
	assert.Equal(t, 50.0, p.Document.Methodology.TechniqueBonus["automated_testing"])
	assert.Equal(t, 35.0, p.Document.Methodology.TechniqueBonus["inspection"])
	assert.Equal(t, 25.0, p.Document.Methodology.TechniqueBonus["observation"])
	assert.Equal(t, 10.0, p.Document.Methodology.TechniqueBonus["inquiry"])
	assert.Equal(t, 40.0, p.Document.Methodology.InquiryHeavyCap)
	assert.Len(t, p.Document.Methodology.Keywords, 9)
	assert.Equal(t, 2.0, p.Document.Methodology.KeywordBonus)
	assert.Equal(t, 10.0, p.Document.Methodology.KeywordBonusCap)

	assert.Equal(t, 60.0, p.Document.Evidence.Base)
	assert.Equal(t, 40.0, p.Document.Evidence.FullCoverageBonus)
	assert.Equal(t, 5.0, p.Document.Evidence.MissingEvidencePenalty)
	assert.Equal(t, 80.0, p.Document.Evidence.MinMeanEvidenceChars)
	assert.Equal(t, 10.0, p.Document.Evidence.ShortEvidencePenalty)
	assert.Equal(t, 5.0, p.Document.Evidence.BoilerplatePenalty)

	assert.Equal(t, 50.0, p.Document.Completeness.Base)
	assert.Equal(t, 50.0, p.Document.Completeness.CoverageWeight)
	assert.Equal(t, 2.0, p.Document.Completeness.GapBonus)
	assert.Equal(t, 3, p.Document.Completeness.GapBonusLimit)
	assert.Equal(t, 3.0, p.Document.Completeness.GapPenalty)
	assert.Equal(t, 5.0, p.Document.Completeness.ScopeBonus)
	assert.Equal(t, 120, p.Document.Completeness.MinScopeChars)

	assert.Equal(t, 90.0, p.Document.Bias.Base)
	assert.Equal(t, 10, p.Document.Bias.PerfectPassMinControls)
	assert.Equal(t, 15.0, p.Document.Bias.PerfectPassPenalty)
	assert.Equal(t, 5, p.Document.Bias.SeverityMonocultureMin)
	assert.Equal(t, 10.0, p.Document.Bias.SeverityMonoculturePenalty)
	assert.Equal(t, 5.0, p.Document.Bias.UnevidencedFailurePenalty)

	assert.Equal(t, 10.0, p.Document.Auditor.MissingIdentityPenalty)
	assert.Equal(t, 5.0, p.Document.Auditor.FirmBonus)
	assert.Contains(t, p.Document.Auditor.GenericNames, "auditor")
	assert.Contains(t, p.Document.Auditor.FirmPatterns, " llp")

	assert.Equal(t, 10.0, p.Document.SystemDescription.GenericInventoryPenalty)
	assert.Equal(t, 10.0, p.Document.SystemDescription.DisconnectedPenalty)
	assert.Contains(t, p.Document.SystemDescription.GenericTerms, "cloud")

	assert.Equal(t, 5.0, p.Document.Structural.MissingSectionPenalty)
	require.Contains(t, p.Document.Structural.RequiredSections, "soc2_type2")
	assert.Len(t, p.Document.Structural.RequiredSections["soc2_type2"], 5)
}

func TestDefaultScoringPolicy_CopiesAreIsolated(t *testing.T) {
	p := DefaultScoringPolicy()
	p.Document.Methodology.TechniqueBonus["inspection"] = 99
	p.Document.Methodology.Keywords[0] = "tampered"
	p.Document.Structural.RequiredSections["soc2_type2"][0] = "tampered"
	p.Document.Auditor.GenericNames = append(p.Document.Auditor.GenericNames[:0], "tampered")

	fresh := DefaultScoringPolicy()
	assert.Equal(t, 35.0, fresh.Document.Methodology.TechniqueBonus["inspection"])
	assert.Equal(t, "sampling", fresh.Document.Methodology.Keywords[0])
	assert.Equal(t, "management_assertion", fresh.Document.Structural.RequiredSections["soc2_type2"][0])
	assert.Contains(t, fresh.Document.Auditor.GenericNames, "auditor")
}

func TestLoadScoringPolicy_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	overlay := "integrity:\n  critical_penalty: 50\ndocument:\n  bias:\n    base: 70\n"
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0o600))

	p, err := LoadScoringPolicy(path)
	require.NoError(t, err)

	assert.Equal(t, 50.0, p.Integrity.CriticalPenalty)
	assert.Equal(t, 70.0, p.Document.Bias.Base)

	// Everything the overlay does not mention keeps its default.
	assert.Equal(t, 15.0, p.Temporal.OrderingPenalty)
	assert.Equal(t, 40.0, p.Document.Methodology.Base)
	assert.Equal(t, 15.0, p.Document.Bias.PerfectPassPenalty)
	assert.Len(t, p.Document.Methodology.Keywords, 9)
}

func TestLoadScoringPolicy_MissingFile(t *testing.T) {
	_, err := LoadScoringPolicy(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scoring policy")
}

func TestLoadScoringPolicy_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("integrity: [not: a: mapping"), 0o600))

	_, err := LoadScoringPolicy(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scoring policy")
}
