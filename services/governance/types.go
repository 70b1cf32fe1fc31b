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
	"time"

	"github.com/AleutianAI/AleutianAudit/services/governance/evidence"
)

// EngineVersion is the version of the governance scoring algorithm.
// Increment when making changes that affect confidence calculations.
const EngineVersion = "1.0"

// APIVersion is the JSON output API version.
const APIVersion = "1.0"

// Severity classifies how strongly a finding discounts trust.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Order returns the numeric order of this severity (higher is worse).
func (s Severity) Order() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// TrustTier is the discrete classification derived from the confidence
// score. Downstream consumers use it to decide how much external
// verification a compliance report carries.
type TrustTier string

const (
	// TierSelfAssessed means the evidence base could not be externally
	// corroborated; trust rests on the assessor's own statements.
	TierSelfAssessed TrustTier = "self-assessed"

	// TierAIVerified means automated verification succeeded broadly with
	// some reservations.
	TierAIVerified TrustTier = "ai-verified"

	// TierAuditorVerified means the evidence base met the strictest
	// automated bar and is fit for auditor-grade reliance.
	TierAuditorVerified TrustTier = "auditor-verified"
)

// Dimension names one axis of governance quality.
type Dimension string

const (
	DimensionMethodology       Dimension = "methodology"
	DimensionEvidenceIntegrity Dimension = "evidence_integrity"
	DimensionCompleteness      Dimension = "completeness"
	DimensionBiasDetection     Dimension = "bias_detection"
)

// Dimensions lists the fixed dimension set in report order.
func Dimensions() []Dimension {
	return []Dimension{
		DimensionMethodology,
		DimensionEvidenceIntegrity,
		DimensionCompleteness,
		DimensionBiasDetection,
	}
}

// FindingSource tags where a finding came from. Deterministic findings
// and external-evaluator findings are never mixed silently.
type FindingSource string

const (
	SourceDeterministic FindingSource = "deterministic"
	SourceEnhancement   FindingSource = "enhancement"
)

// FindingCategory classifies a finding. Categories double as the routing
// key that places external-evaluator findings into a dimension.
type FindingCategory string

const (
	// CategoryMissingInput marks a named evidence log that could not be
	// produced by the source.
	CategoryMissingInput FindingCategory = "missing_input"

	// CategoryIntegrityViolation marks a broken hash chain.
	CategoryIntegrityViolation FindingCategory = "integrity_violation"

	// CategoryOrderingViolation marks a timestamp decrease within a log.
	CategoryOrderingViolation FindingCategory = "ordering_violation"

	// CategoryGapObservation marks an unusually long collection window.
	CategoryGapObservation FindingCategory = "gap_observation"

	// CategoryCorrelationMiss marks a probe result with no matching
	// evidence identifier.
	CategoryCorrelationMiss FindingCategory = "correlation_miss"

	// CategoryMethodology covers assessment-technique weaknesses.
	CategoryMethodology FindingCategory = "methodology"

	// CategoryEvidenceQuality covers evidence text quality problems.
	CategoryEvidenceQuality FindingCategory = "evidence_quality"

	// CategoryCompleteness covers coverage and disclosure problems.
	CategoryCompleteness FindingCategory = "completeness"

	// CategoryBias covers suspicious result distributions.
	CategoryBias FindingCategory = "bias"

	// CategoryAuditorLegitimacy covers assessor identity checks.
	CategoryAuditorLegitimacy FindingCategory = "auditor_legitimacy"

	// CategorySystemDescription covers technology inventory checks.
	CategorySystemDescription FindingCategory = "system_description"

	// CategoryStructural covers expected report sections.
	CategoryStructural FindingCategory = "structural_completeness"
)

// Finding is one explained deduction (or observation) in a report.
type Finding struct {
	// ID is unique within the report ("GOV-001", "GOV-002", ...).
	ID string `json:"id"`

	Severity    Severity        `json:"severity"`
	Category    FindingCategory `json:"category"`
	Description string          `json:"description"`

	// Remediation suggests how to clear the finding.
	Remediation string `json:"remediation,omitempty"`

	// EvidenceRefs names the logs, records, or controls involved.
	EvidenceRefs []string `json:"evidence_refs,omitempty"`

	// Source separates deterministic findings from evaluator findings.
	Source FindingSource `json:"source"`
}

// DimensionScore is one dimension's outcome.
type DimensionScore struct {
	Name Dimension `json:"name"`

	// Score is in [0,100].
	Score float64 `json:"score"`

	// Weight is this dimension's share of the confidence score, in (0,1].
	Weight float64 `json:"weight"`

	// Rationale summarizes how the score was reached.
	Rationale string `json:"rationale"`

	Findings []Finding `json:"findings"`
}

// Weights holds the weight of each dimension. The four weights must sum
// to 1.0; Config.Validate enforces this.
type Weights struct {
	Methodology       float64 `json:"methodology" yaml:"methodology"`
	EvidenceIntegrity float64 `json:"evidence_integrity" yaml:"evidence_integrity"`
	Completeness      float64 `json:"completeness" yaml:"completeness"`
	BiasDetection     float64 `json:"bias_detection" yaml:"bias_detection"`
}

// DefaultWeights returns the default dimension weights.
func DefaultWeights() Weights {
	return Weights{
		Methodology:       0.30,
		EvidenceIntegrity: 0.25,
		Completeness:      0.25,
		BiasDetection:     0.20,
	}
}

// Total returns the sum of all weights.
func (w Weights) Total() float64 {
	return w.Methodology + w.EvidenceIntegrity + w.Completeness + w.BiasDetection
}

// Of returns the weight of one dimension.
func (w Weights) Of(d Dimension) float64 {
	switch d {
	case DimensionMethodology:
		return w.Methodology
	case DimensionEvidenceIntegrity:
		return w.EvidenceIntegrity
	case DimensionCompleteness:
		return w.Completeness
	case DimensionBiasDetection:
		return w.BiasDetection
	default:
		return 0
	}
}

// ReviewMode selects which scorer family a run uses.
type ReviewMode string

const (
	// ModePipeline reviews artifacts produced by an assessment pipeline.
	ModePipeline ReviewMode = "pipeline"

	// ModeDocument reviews a single normalized evidence document.
	ModeDocument ReviewMode = "document"
)

// =============================================================================
// Review Input
// =============================================================================

// ReviewInput is the caller-supplied bundle for one governance run.
// Exactly one of Pipeline or Document must be set.
//
// ReviewInput is read-only: the engine never mutates it and carries no
// state between runs.
type ReviewInput struct {
	Pipeline *PipelineBundle `json:"pipeline,omitempty"`
	Document *DocumentBundle `json:"document,omitempty"`

	// Evaluator optionally names a non-deterministic evaluator (e.g. an
	// LLM model) for the bounded enhancement phase. Empty disables the
	// phase. The name is recorded in the report as model_used whether or
	// not the phase succeeded.
	Evaluator string `json:"evaluator,omitempty"`
}

// Mode returns which scorer family this input selects.
func (in ReviewInput) Mode() (ReviewMode, error) {
	switch {
	case in.Pipeline != nil && in.Document != nil:
		return "", ErrBothShapes
	case in.Pipeline != nil:
		return ModePipeline, nil
	case in.Document != nil:
		return ModeDocument, nil
	default:
		return "", ErrNoInput
	}
}

// PipelineBundle carries artifacts from an earlier assessment pipeline.
//
// Phase pointers are nil when the corresponding upstream phase did not
// run; an empty result collection inside a non-nil phase means the phase
// ran and found nothing, which is not penalized.
type PipelineBundle struct {
	// EvidenceLogs names the hash-chained logs to verify.
	EvidenceLogs []string `json:"evidence_logs,omitempty"`

	Drift   *DriftPhase   `json:"drift,omitempty"`
	Probes  *ProbePhase   `json:"probes,omitempty"`
	Mapping *MappingPhase `json:"mapping,omitempty"`

	// ThreatModel is optional; its absence is a methodology finding.
	ThreatModel *ThreatModel `json:"threat_model,omitempty"`

	// Criteria is the optional list of evaluation criteria the pipeline
	// assessed against.
	Criteria []string `json:"criteria,omitempty"`

	// Scope describes what the assessment covered.
	Scope string `json:"scope,omitempty"`
}

// DriftPhase is the output of the configuration drift detection phase.
type DriftPhase struct {
	Findings []DriftFinding `json:"findings"`
}

// DriftFinding is one detected deviation between expected and actual
// configuration state.
type DriftFinding struct {
	ID          string   `json:"id"`
	Severity    Severity `json:"severity"`
	Resource    string   `json:"resource,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ProbePhase is the output of the adversarial attack simulation phase.
type ProbePhase struct {
	Results []ProbeResult `json:"results"`
}

// ProbeOutcome is the result of one adversarial probe.
type ProbeOutcome string

const (
	OutcomeBlocked      ProbeOutcome = "blocked"
	OutcomeSucceeded    ProbeOutcome = "succeeded"
	OutcomeInconclusive ProbeOutcome = "inconclusive"
)

// ProbeResult is the outcome of one adversarial test against a target
// control. Its ID is correlated against identifiers found in evidence
// log payloads.
type ProbeResult struct {
	ID        string       `json:"id"`
	ControlID string       `json:"control_id,omitempty"`
	Outcome   ProbeOutcome `json:"outcome"`
	Detail    string       `json:"detail,omitempty"`
}

// MappingPhase is the output of the compliance mapping phase.
type MappingPhase struct {
	Mappings []ControlMapping `json:"mappings"`
}

// ControlMapping links an assessed control to a framework requirement.
type ControlMapping struct {
	ControlID   string `json:"control_id"`
	Framework   string `json:"framework"`
	Requirement string `json:"requirement,omitempty"`
}

// ThreatModel describes the threat assumptions the assessment used.
type ThreatModel struct {
	Actors   []string `json:"actors,omitempty"`
	Surfaces []string `json:"surfaces,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// =============================================================================
// Document Input
// =============================================================================

// DocumentBundle carries one normalized evidence document produced by an
// ingestion collaborator.
type DocumentBundle struct {
	Controls []Control          `json:"controls"`
	Metadata DocumentMeta       `json:"metadata"`
	Context  *AssessmentContext `json:"context,omitempty"`
}

// ControlStatus is a control's declared effectiveness.
//
// Partially compliant and non-compliant controls are both treated as
// ineffective for scoring.
type ControlStatus string

const (
	StatusEffective          ControlStatus = "effective"
	StatusPartiallyCompliant ControlStatus = "partially_compliant"
	StatusNonCompliant       ControlStatus = "non_compliant"
	StatusNotTested          ControlStatus = "not_tested"
)

// Passed reports whether the control is declared fully effective.
func (s ControlStatus) Passed() bool {
	return s == StatusEffective
}

// Failed reports whether the control is declared ineffective (partial
// compliance counts as a failure for scoring).
func (s ControlStatus) Failed() bool {
	return s == StatusPartiallyCompliant || s == StatusNonCompliant
}

// Technique is the evidence-collection technique used for a control,
// ranked from strongest (reperformance, automated testing) to weakest
// (inquiry, none).
type Technique string

const (
	TechniqueReperformance    Technique = "reperformance"
	TechniqueAutomatedTesting Technique = "automated_testing"
	TechniqueInspection       Technique = "inspection"
	TechniqueObservation      Technique = "observation"
	TechniqueInquiry          Technique = "inquiry"
	TechniqueNone             Technique = ""
)

// Control is one normalized control assertion from the document.
type Control struct {
	ID     string        `json:"id"`
	Name   string        `json:"name,omitempty"`
	Status ControlStatus `json:"status"`

	// Evidence is the supporting evidence text.
	Evidence string `json:"evidence,omitempty"`

	// Technique is how the evidence was collected.
	Technique Technique `json:"technique,omitempty"`

	// DeclaredSeverity is the assessor's own risk rating for the control.
	DeclaredSeverity Severity `json:"declared_severity,omitempty"`

	// Boilerplate is set by an upstream classifier when the evidence text
	// looks templated.
	Boilerplate bool `json:"boilerplate,omitempty"`
}

// DocumentType identifies the document subtype. Structural completeness
// checks apply only to SOC 2 Type II reports.
type DocumentType string

const (
	DocTypeSOC2Type2      DocumentType = "soc2_type2"
	DocTypeISO27001       DocumentType = "iso27001"
	DocTypeSelfAssessment DocumentType = "self_assessment"
)

// DocumentMeta describes the reviewed document.
type DocumentMeta struct {
	Type  DocumentType `json:"type"`
	Title string       `json:"title,omitempty"`

	// Auditor is the declared assessor identity (person or firm).
	Auditor string `json:"auditor,omitempty"`

	// Scope describes what the assessment covered.
	Scope string `json:"scope,omitempty"`

	// Sections lists the report sections present in the document,
	// normalized to lower snake case by the ingestion collaborator.
	Sections []string `json:"sections,omitempty"`
}

// AssessmentContext is optional context supplied alongside a document.
type AssessmentContext struct {
	// Technologies is the declared technology inventory.
	Technologies []string `json:"technologies,omitempty"`

	// AcknowledgedGaps lists shortcomings the assessor disclosed.
	AcknowledgedGaps []string `json:"acknowledged_gaps,omitempty"`

	// AssessorNotes is free-text commentary from the assessor.
	AssessorNotes string `json:"assessor_notes,omitempty"`
}

// =============================================================================
// Report
// =============================================================================

// Report is the sole externally visible artifact of a governance run.
// Once hashed it is immutable: any later adjustment produces a new
// report, never an in-place edit.
type Report struct {
	// ID is unique per run and excluded from the report hash.
	ID string `json:"id"`

	APIVersion    string     `json:"api_version"`
	EngineVersion string     `json:"engine_version"`
	Mode          ReviewMode `json:"mode"`

	// ConfidenceScore is round(sum of score*weight) over the dimensions.
	ConfidenceScore int `json:"confidence_score"`

	Dimensions []DimensionScore `json:"dimensions"`
	TrustTier  TrustTier        `json:"trust_tier"`

	TotalFindings      int              `json:"total_findings"`
	FindingsBySeverity map[Severity]int `json:"findings_by_severity"`

	ExecutiveSummary string `json:"executive_summary"`

	// EvaluatedAt and DurationMs are volatile and excluded from the hash.
	EvaluatedAt time.Time `json:"evaluated_at"`
	DurationMs  int64     `json:"duration_ms"`

	// ModelUsed names the evaluator the caller requested, whether or not
	// the enhancement phase had any effect.
	ModelUsed string `json:"model_used,omitempty"`

	// Narrative is the external evaluator's short commentary, if any.
	Narrative string `json:"narrative,omitempty"`

	// ReportHash makes the report itself tamper-evident.
	ReportHash string `json:"report_hash"`
}

// LogReview is the integrity outcome for one named evidence log,
// reported by the standalone verification endpoint.
type LogReview struct {
	Name   string               `json:"name"`
	Found  bool                 `json:"found"`
	Status evidence.ChainStatus `json:"status"`
}
