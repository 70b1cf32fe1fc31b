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
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicyYAML []byte

// ScoringPolicy holds every tunable constant the deterministic scorers
// use. Defaults come from the embedded policy.yaml; deployments can
// overlay a partial YAML file via LoadScoringPolicy.
//
// Scores and penalties are points on the 0-100 dimension scale. Sample
// minimums are record counts below which a distribution check does not
// fire.
type ScoringPolicy struct {
	Integrity IntegrityPolicy `yaml:"integrity"`
	Temporal  TemporalPolicy  `yaml:"temporal"`
	Pipeline  PipelinePolicy  `yaml:"pipeline"`
	Document  DocumentPolicy  `yaml:"document"`
}

// IntegrityPolicy tunes evidence hash chain verification.
type IntegrityPolicy struct {
	// CriticalPenalty is deducted per critical integrity finding.
	CriticalPenalty float64 `yaml:"critical_penalty"`
}

// TemporalPolicy tunes evidence timestamp consistency checks.
type TemporalPolicy struct {
	OrderingPenalty float64 `yaml:"ordering_penalty"`
	SpanPenalty     float64 `yaml:"span_penalty"`

	// MaxSpanHours is the widest acceptable collection window per log.
	MaxSpanHours float64 `yaml:"max_span_hours"`
}

// PipelinePolicy tunes the pipeline-mode scorers.
type PipelinePolicy struct {
	Methodology PipelineMethodologyPolicy `yaml:"methodology"`
	Bias        PipelineBiasPolicy        `yaml:"bias"`
}

// PipelineMethodologyPolicy penalizes missing upstream phases.
type PipelineMethodologyPolicy struct {
	Base                      float64 `yaml:"base"`
	MissingDriftPenalty       float64 `yaml:"missing_drift_penalty"`
	MissingProbesPenalty      float64 `yaml:"missing_probes_penalty"`
	MissingMappingPenalty     float64 `yaml:"missing_mapping_penalty"`
	MissingThreatModelPenalty float64 `yaml:"missing_threat_model_penalty"`
	MissingCriteriaPenalty    float64 `yaml:"missing_criteria_penalty"`
}

// PipelineBiasPolicy tunes suspicious-distribution checks on pipeline
// artifacts.
type PipelineBiasPolicy struct {
	Base float64 `yaml:"base"`

	// MinProbeSample is the smallest probe-result set checked for a
	// uniform outcome.
	MinProbeSample          int     `yaml:"min_probe_sample"`
	UniformBlockedPenalty   float64 `yaml:"uniform_blocked_penalty"`
	UniformSucceededPenalty float64 `yaml:"uniform_succeeded_penalty"`

	// MinDriftSample is the smallest drift-finding set checked for a
	// severity monoculture.
	MinDriftSample             int     `yaml:"min_drift_sample"`
	SeverityMonoculturePenalty float64 `yaml:"severity_monoculture_penalty"`
}

// DocumentPolicy tunes the document-mode scorers.
type DocumentPolicy struct {
	Methodology       DocMethodologyPolicy    `yaml:"methodology"`
	Evidence          DocEvidencePolicy       `yaml:"evidence"`
	Completeness      DocCompletenessPolicy   `yaml:"completeness"`
	Bias              DocBiasPolicy           `yaml:"bias"`
	Auditor           AuditorPolicy           `yaml:"auditor"`
	SystemDescription SystemDescriptionPolicy `yaml:"system_description"`
	Structural        StructuralPolicy        `yaml:"structural"`
}

// DocMethodologyPolicy rewards strong evidence-collection techniques.
type DocMethodologyPolicy struct {
	Base float64 `yaml:"base"`

	// TechniqueBonus maps a collection technique to its bonus; the bonus
	// applied is the average across all controls. Unknown techniques
	// score zero.
	TechniqueBonus map[string]float64 `yaml:"technique_bonus"`

	// InquiryHeavyCap caps the technique bonus when more than half the
	// controls rely on inquiry alone.
	InquiryHeavyCap float64 `yaml:"inquiry_heavy_cap"`

	// Keywords are methodology terms searched for in assessor notes.
	Keywords        []string `yaml:"keywords"`
	KeywordBonus    float64  `yaml:"keyword_bonus"`
	KeywordBonusCap float64  `yaml:"keyword_bonus_cap"`
}

// DocEvidencePolicy tunes evidence-quality scoring for documents.
type DocEvidencePolicy struct {
	Base                   float64 `yaml:"base"`
	FullCoverageBonus      float64 `yaml:"full_coverage_bonus"`
	MissingEvidencePenalty float64 `yaml:"missing_evidence_penalty"`
	MinMeanEvidenceChars   float64 `yaml:"min_mean_evidence_chars"`
	ShortEvidencePenalty   float64 `yaml:"short_evidence_penalty"`
	BoilerplatePenalty     float64 `yaml:"boilerplate_penalty"`
}

// DocCompletenessPolicy tunes coverage and disclosure scoring.
type DocCompletenessPolicy struct {
	Base           float64 `yaml:"base"`
	CoverageWeight float64 `yaml:"coverage_weight"`

	// GapBonus rewards each acknowledged gap up to GapBonusLimit; gaps
	// beyond the limit cost GapPenalty each.
	GapBonus      float64 `yaml:"gap_bonus"`
	GapBonusLimit int     `yaml:"gap_bonus_limit"`
	GapPenalty    float64 `yaml:"gap_penalty"`

	ScopeBonus    float64 `yaml:"scope_bonus"`
	MinScopeChars int     `yaml:"min_scope_chars"`
}

// DocBiasPolicy tunes suspicious-distribution checks on documents.
type DocBiasPolicy struct {
	Base float64 `yaml:"base"`

	// PerfectPassMinControls is the smallest control set where a 100%
	// pass rate is treated as suspicious.
	PerfectPassMinControls int     `yaml:"perfect_pass_min_controls"`
	PerfectPassPenalty     float64 `yaml:"perfect_pass_penalty"`

	SeverityMonocultureMin     int     `yaml:"severity_monoculture_min"`
	SeverityMonoculturePenalty float64 `yaml:"severity_monoculture_penalty"`

	// UnevidencedFailurePenalty is deducted per ineffective control that
	// carries no failure evidence.
	UnevidencedFailurePenalty float64 `yaml:"unevidenced_failure_penalty"`
}

// AuditorPolicy tunes the auditor-legitimacy supplementary check.
type AuditorPolicy struct {
	MissingIdentityPenalty float64 `yaml:"missing_identity_penalty"`
	FirmBonus              float64 `yaml:"firm_bonus"`

	// GenericNames are identities that carry no legitimacy signal.
	GenericNames []string `yaml:"generic_names"`

	// FirmPatterns are lowercase substrings that mark a recognizable
	// audit-firm naming convention.
	FirmPatterns []string `yaml:"firm_patterns"`
}

// SystemDescriptionPolicy tunes the technology-inventory check.
type SystemDescriptionPolicy struct {
	GenericInventoryPenalty float64 `yaml:"generic_inventory_penalty"`
	DisconnectedPenalty     float64 `yaml:"disconnected_penalty"`

	// GenericTerms are inventory entries too vague to verify against.
	GenericTerms []string `yaml:"generic_terms"`
}

// StructuralPolicy tunes the expected-sections check.
type StructuralPolicy struct {
	MissingSectionPenalty float64 `yaml:"missing_section_penalty"`

	// RequiredSections maps a document type to the sections a complete
	// report of that type must contain. Types not listed are exempt.
	RequiredSections map[string][]string `yaml:"required_sections"`
}

var defaultPolicy = mustParsePolicy(defaultPolicyYAML)

func mustParsePolicy(raw []byte) ScoringPolicy {
	var p ScoringPolicy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		panic(fmt.Sprintf("governance: embedded policy.yaml is invalid: %v", err))
	}
	return p
}

// DefaultScoringPolicy returns a copy of the embedded default policy.
//
// # Outputs
//
//   - ScoringPolicy: the defaults shipped with the engine. Mutating the
//     copy does not affect later calls.
func DefaultScoringPolicy() ScoringPolicy {
	return clonePolicy(defaultPolicy)
}

// LoadScoringPolicy reads a partial policy overlay from a YAML file.
// Fields absent from the file keep their embedded defaults.
//
// # Inputs
//
//   - path: YAML file with the same structure as policy.yaml.
//
// # Outputs
//
//   - ScoringPolicy: defaults overlaid with the file's values.
//   - error: non-nil if the file cannot be read or parsed.
func LoadScoringPolicy(path string) (ScoringPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ScoringPolicy{}, fmt.Errorf("read scoring policy: %w", err)
	}
	p := DefaultScoringPolicy()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return ScoringPolicy{}, fmt.Errorf("parse scoring policy %s: %w", path, err)
	}
	return p, nil
}

// clonePolicy deep-copies the maps and slices so callers cannot mutate
// the shared defaults.
func clonePolicy(p ScoringPolicy) ScoringPolicy {
	out := p
	out.Document.Methodology.TechniqueBonus = cloneMap(p.Document.Methodology.TechniqueBonus)
	out.Document.Methodology.Keywords = cloneSlice(p.Document.Methodology.Keywords)
	out.Document.Auditor.GenericNames = cloneSlice(p.Document.Auditor.GenericNames)
	out.Document.Auditor.FirmPatterns = cloneSlice(p.Document.Auditor.FirmPatterns)
	out.Document.SystemDescription.GenericTerms = cloneSlice(p.Document.SystemDescription.GenericTerms)
	if p.Document.Structural.RequiredSections != nil {
		sections := make(map[string][]string, len(p.Document.Structural.RequiredSections))
		for k, v := range p.Document.Structural.RequiredSections {
			sections[k] = cloneSlice(v)
		}
		out.Document.Structural.RequiredSections = sections
	}
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
