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

import "fmt"

// scorePipelineMethodology checks that the assessment pipeline ran every
// expected phase. Each absent phase deducts its penalty and emits one
// finding; a phase that ran and produced nothing is not penalized.
func scorePipelineMethodology(b *PipelineBundle, pol PipelineMethodologyPolicy) dimResult {
	score := pol.Base
	var findings []Finding
	missing := 0

	add := func(severity Severity, penalty float64, desc, remediation string) {
		score -= penalty
		missing++
		findings = append(findings, Finding{
			Severity:    severity,
			Category:    CategoryMethodology,
			Description: desc,
			Remediation: remediation,
			Source:      SourceDeterministic,
		})
	}

	if b.Drift == nil {
		add(SeverityWarning, pol.MissingDriftPenalty,
			"no configuration drift results were supplied",
			"run drift detection against the declared baseline before requesting review")
	}
	if b.Probes == nil {
		add(SeverityWarning, pol.MissingProbesPenalty,
			"no adversarial probe results were supplied",
			"run the attack simulation phase so control claims are tested, not assumed")
	}
	if b.Mapping == nil {
		add(SeverityWarning, pol.MissingMappingPenalty,
			"no compliance mapping results were supplied",
			"map assessed controls to framework requirements before requesting review")
	}
	if b.ThreatModel == nil {
		add(SeverityWarning, pol.MissingThreatModelPenalty,
			"no threat model was declared for the assessment",
			"declare the threat actors and surfaces the assessment assumed")
	}
	if len(b.Criteria) == 0 {
		add(SeverityInfo, pol.MissingCriteriaPenalty,
			"no evaluation criteria were declared",
			"list the criteria the pipeline assessed against")
	}

	rationale := "all expected assessment phases are present"
	if missing > 0 {
		rationale = fmt.Sprintf("%d expected assessment phase(s) or declarations are absent", missing)
	}

	return dimResult{score: clampScore(score), rationale: rationale, findings: findings}
}

// scorePipelineBias looks for result distributions too clean to trust.
//
// A probe-result set of MinProbeSample or more that is uniformly blocked
// suggests the probes never really ran; uniformly succeeded is worse,
// since an environment where every attack lands should never score well.
// A drift-finding set where every finding shares one severity suggests a
// generator, not an assessment.
func scorePipelineBias(b *PipelineBundle, pol PipelineBiasPolicy) dimResult {
	score := pol.Base
	var findings []Finding

	if b.Probes != nil && len(b.Probes.Results) >= pol.MinProbeSample {
		n := len(b.Probes.Results)
		switch {
		case allOutcomes(b.Probes.Results, OutcomeBlocked):
			score -= pol.UniformBlockedPenalty
			findings = append(findings, Finding{
				Severity:    SeverityWarning,
				Category:    CategoryBias,
				Description: fmt.Sprintf("all %d adversarial probes report blocked; a uniformly clean run is statistically suspect", n),
				Remediation: "verify the probes executed against the live target and not a mock",
				Source:      SourceDeterministic,
			})
		case allOutcomes(b.Probes.Results, OutcomeSucceeded):
			score -= pol.UniformSucceededPenalty
			findings = append(findings, Finding{
				Severity:    SeverityWarning,
				Category:    CategoryBias,
				Description: fmt.Sprintf("all %d adversarial probes succeeded; the assessed controls blocked nothing", n),
				Remediation: "treat the control environment as unproven and remediate before relying on this assessment",
				Source:      SourceDeterministic,
			})
		}
	}

	if b.Drift != nil && len(b.Drift.Findings) >= pol.MinDriftSample {
		if sev, uniform := uniformSeverity(b.Drift.Findings); uniform {
			score -= pol.SeverityMonoculturePenalty
			findings = append(findings, Finding{
				Severity:    SeverityWarning,
				Category:    CategoryBias,
				Description: fmt.Sprintf("all %d drift findings share severity %q; real environments produce mixed severities", len(b.Drift.Findings), sev),
				Remediation: "check the drift detector's severity assignment",
				Source:      SourceDeterministic,
			})
		}
	}

	rationale := "result distributions look organic"
	if len(findings) > 0 {
		rationale = fmt.Sprintf("%d suspicious result distribution(s) detected", len(findings))
	}

	return dimResult{score: clampScore(score), rationale: rationale, findings: findings}
}

func allOutcomes(results []ProbeResult, want ProbeOutcome) bool {
	for _, r := range results {
		if r.Outcome != want {
			return false
		}
	}
	return true
}

func uniformSeverity(findings []DriftFinding) (Severity, bool) {
	if len(findings) == 0 {
		return "", false
	}
	first := findings[0].Severity
	for _, f := range findings[1:] {
		if f.Severity != first {
			return "", false
		}
	}
	return first, true
}
