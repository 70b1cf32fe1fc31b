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
	"strings"
)

// scoreDocMethodology rates how the document's evidence was collected.
//
// The base is deliberately low: a document asserts, it does not prove.
// Strong techniques (reperformance, automated testing) earn the most,
// inquiry the least, and the technique bonus is capped when more than
// half the controls rely on inquiry or record no technique at all.
// Methodology keywords in assessor notes earn a small capped bonus.
func scoreDocMethodology(b *DocumentBundle, pol DocMethodologyPolicy) dimResult {
	score := pol.Base
	var findings []Finding

	if n := len(b.Controls); n > 0 {
		var sum float64
		weak := 0
		for _, c := range b.Controls {
			sum += pol.TechniqueBonus[string(c.Technique)]
			if c.Technique == TechniqueInquiry || c.Technique == TechniqueNone {
				weak++
			}
		}
		bonus := sum / float64(n)
		if 2*weak > n {
			if bonus > pol.InquiryHeavyCap {
				bonus = pol.InquiryHeavyCap
			}
			findings = append(findings, Finding{
				Severity:    SeverityInfo,
				Category:    CategoryMethodology,
				Description: fmt.Sprintf("%d of %d controls rely on inquiry alone or record no collection technique", weak, n),
				Remediation: "inspect, observe, or reperform controls rather than asking about them",
				Source:      SourceDeterministic,
			})
		}
		score += bonus
	}

	if b.Context != nil && b.Context.AssessorNotes != "" {
		notes := strings.ToLower(b.Context.AssessorNotes)
		var bonus float64
		for _, kw := range pol.Keywords {
			if strings.Contains(notes, kw) {
				bonus += pol.KeywordBonus
			}
		}
		if bonus > pol.KeywordBonusCap {
			bonus = pol.KeywordBonusCap
		}
		score += bonus
	}

	return dimResult{
		score:     clampScore(score),
		rationale: fmt.Sprintf("evidence-collection techniques rated across %d control(s)", len(b.Controls)),
		findings:  findings,
	}
}

// scoreDocEvidence rates the quality of the evidence text itself:
// coverage, length, and boilerplate.
func scoreDocEvidence(b *DocumentBundle, pol DocEvidencePolicy) dimResult {
	score := pol.Base
	var findings []Finding

	n := len(b.Controls)
	withEvidence := 0
	var totalChars int
	for _, c := range b.Controls {
		text := strings.TrimSpace(c.Evidence)
		totalChars += len(text)
		if text != "" {
			withEvidence++
			continue
		}
		score -= pol.MissingEvidencePenalty
		findings = append(findings, Finding{
			Severity:     SeverityWarning,
			Category:     CategoryEvidenceQuality,
			Description:  fmt.Sprintf("control %s carries no supporting evidence", c.ID),
			Remediation:  "attach the evidence the assessor relied on for this control",
			EvidenceRefs: []string{c.ID},
			Source:       SourceDeterministic,
		})
	}

	if n > 0 && withEvidence == n {
		score += pol.FullCoverageBonus
	}

	if n > 0 {
		if mean := float64(totalChars) / float64(n); mean < pol.MinMeanEvidenceChars {
			score -= pol.ShortEvidencePenalty
			findings = append(findings, Finding{
				Severity: SeverityInfo,
				Category: CategoryEvidenceQuality,
				Description: fmt.Sprintf("mean evidence length is %.0f characters, below the %.0f-character bar for substantive evidence",
					mean, pol.MinMeanEvidenceChars),
				Source: SourceDeterministic,
			})
		}
	}

	for _, c := range b.Controls {
		if !c.Boilerplate {
			continue
		}
		score -= pol.BoilerplatePenalty
		findings = append(findings, Finding{
			Severity:     SeverityWarning,
			Category:     CategoryEvidenceQuality,
			Description:  fmt.Sprintf("control %s evidence was flagged as boilerplate", c.ID),
			Remediation:  "replace templated language with evidence specific to this system and period",
			EvidenceRefs: []string{c.ID},
			Source:       SourceDeterministic,
		})
	}

	return dimResult{
		score:     clampScore(score),
		rationale: fmt.Sprintf("%d of %d control(s) carry evidence", withEvidence, n),
		findings:  findings,
	}
}

// scoreDocCompleteness rates coverage and disclosure. Acknowledged gaps
// are rewarded up to a bound: an assessor who admits shortcomings is
// more credible than one who reports none, but a long gap list means
// the assessment itself was thin.
func scoreDocCompleteness(b *DocumentBundle, pol DocCompletenessPolicy) dimResult {
	score := pol.Base
	var findings []Finding

	n := len(b.Controls)
	coverage := 0.0
	if n > 0 {
		withEvidence := 0
		for _, c := range b.Controls {
			if strings.TrimSpace(c.Evidence) != "" {
				withEvidence++
			}
		}
		coverage = float64(withEvidence) / float64(n)
	} else {
		findings = append(findings, Finding{
			Severity:    SeverityWarning,
			Category:    CategoryCompleteness,
			Description: "no controls were extracted from the document",
			Remediation: "confirm the document contains a control matrix the ingestion service can read",
			Source:      SourceDeterministic,
		})
	}
	score += pol.CoverageWeight * coverage

	if b.Context != nil {
		if gaps := len(b.Context.AcknowledgedGaps); gaps > 0 {
			rewarded := gaps
			if rewarded > pol.GapBonusLimit {
				rewarded = pol.GapBonusLimit
			}
			score += pol.GapBonus * float64(rewarded)
			if excess := gaps - pol.GapBonusLimit; excess > 0 {
				score -= pol.GapPenalty * float64(excess)
				findings = append(findings, Finding{
					Severity:    SeverityInfo,
					Category:    CategoryCompleteness,
					Description: fmt.Sprintf("assessor acknowledged %d gaps; disclosure is credited but the assessment left much untested", gaps),
					Source:      SourceDeterministic,
				})
			}
		}
	}

	if len(strings.TrimSpace(b.Metadata.Scope)) >= pol.MinScopeChars {
		score += pol.ScopeBonus
	}

	return dimResult{
		score:     clampScore(score),
		rationale: fmt.Sprintf("evidence coverage %.0f%% across %d control(s)", 100*coverage, n),
		findings:  findings,
	}
}

// scoreDocBias looks for assessments that grade their own homework.
func scoreDocBias(b *DocumentBundle, pol DocBiasPolicy) dimResult {
	score := pol.Base
	var findings []Finding

	n := len(b.Controls)
	if n >= pol.PerfectPassMinControls {
		passed := 0
		for _, c := range b.Controls {
			if c.Status.Passed() {
				passed++
			}
		}
		if passed == n {
			score -= pol.PerfectPassPenalty
			findings = append(findings, Finding{
				Severity:    SeverityWarning,
				Category:    CategoryBias,
				Description: fmt.Sprintf("all %d controls are reported effective; a 100%% pass rate at this size is statistically suspect", n),
				Remediation: "expect at least some exceptions in an honest assessment of this breadth",
				Source:      SourceDeterministic,
			})
		}
	}

	if sev, count, uniform := declaredSeverityMonoculture(b.Controls); uniform && count >= pol.SeverityMonocultureMin {
		score -= pol.SeverityMonoculturePenalty
		findings = append(findings, Finding{
			Severity:    SeverityWarning,
			Category:    CategoryBias,
			Description: fmt.Sprintf("all %d rated controls declare severity %q; uniform ratings suggest a template", count, sev),
			Source:      SourceDeterministic,
		})
	}

	for _, c := range b.Controls {
		if c.Status.Failed() && strings.TrimSpace(c.Evidence) == "" {
			score -= pol.UnevidencedFailurePenalty
			findings = append(findings, Finding{
				Severity:     SeverityWarning,
				Category:     CategoryBias,
				Description:  fmt.Sprintf("control %s is reported ineffective but carries no failure evidence", c.ID),
				Remediation:  "document what failed; unexplained failures cannot be remediated or verified",
				EvidenceRefs: []string{c.ID},
				Source:       SourceDeterministic,
			})
		}
	}

	rationale := "result distributions look organic"
	if len(findings) > 0 {
		rationale = fmt.Sprintf("%d suspicious pattern(s) in reported results", len(findings))
	}

	return dimResult{score: clampScore(score), rationale: rationale, findings: findings}
}

// declaredSeverityMonoculture reports whether every control that carries
// a declared severity shares the same one, and how many do.
func declaredSeverityMonoculture(controls []Control) (Severity, int, bool) {
	var sev Severity
	count := 0
	for _, c := range controls {
		if c.DeclaredSeverity == "" {
			continue
		}
		if count > 0 && c.DeclaredSeverity != sev {
			return "", 0, false
		}
		sev = c.DeclaredSeverity
		count++
	}
	return sev, count, count > 0
}

// =============================================================================
// Supplementary checks
// =============================================================================

// supplementary is a score delta folded into an existing dimension.
type supplementary struct {
	delta    float64
	findings []Finding
}

// checkAuditorLegitimacy verifies the declared assessor identity. Folds
// into methodology.
func checkAuditorLegitimacy(meta DocumentMeta, pol AuditorPolicy) supplementary {
	name := strings.ToLower(strings.TrimSpace(meta.Auditor))

	if name == "" || containsString(pol.GenericNames, name) {
		return supplementary{
			delta: -pol.MissingIdentityPenalty,
			findings: []Finding{{
				Severity:    SeverityWarning,
				Category:    CategoryAuditorLegitimacy,
				Description: "the document declares no verifiable assessor identity",
				Remediation: "name the individual or firm that performed the assessment",
				Source:      SourceDeterministic,
			}},
		}
	}

	for _, pattern := range pol.FirmPatterns {
		if strings.Contains(name, pattern) {
			return supplementary{delta: pol.FirmBonus}
		}
	}
	return supplementary{}
}

// checkSystemDescription verifies the declared technology inventory is
// specific and consistent with the control evidence. Folds into
// evidence integrity.
func checkSystemDescription(b *DocumentBundle, pol SystemDescriptionPolicy) supplementary {
	var techs []string
	if b.Context != nil {
		techs = b.Context.Technologies
	}

	if len(techs) == 0 {
		return supplementary{
			delta: -pol.GenericInventoryPenalty,
			findings: []Finding{{
				Severity:    SeverityWarning,
				Category:    CategorySystemDescription,
				Description: "the document declares no technology inventory",
				Remediation: "list the systems in scope so evidence can be tied to them",
				Source:      SourceDeterministic,
			}},
		}
	}

	generic := 0
	for _, t := range techs {
		if containsString(pol.GenericTerms, strings.ToLower(strings.TrimSpace(t))) {
			generic++
		}
	}
	if generic == len(techs) {
		return supplementary{
			delta: -pol.GenericInventoryPenalty,
			findings: []Finding{{
				Severity:    SeverityWarning,
				Category:    CategorySystemDescription,
				Description: "the declared technology inventory names only generic categories",
				Remediation: "name concrete products and platforms, not categories",
				Source:      SourceDeterministic,
			}},
		}
	}

	var corpus strings.Builder
	for _, c := range b.Controls {
		corpus.WriteString(strings.ToLower(c.Evidence))
		corpus.WriteByte('\n')
	}
	evidenceText := corpus.String()
	for _, t := range techs {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && strings.Contains(evidenceText, t) {
			return supplementary{}
		}
	}
	return supplementary{
		delta: -pol.DisconnectedPenalty,
		findings: []Finding{{
			Severity:    SeverityWarning,
			Category:    CategorySystemDescription,
			Description: "none of the declared technologies appear in any control evidence; the system description is disconnected from the assessment",
			Remediation: "evidence should reference the systems it was collected from",
			Source:      SourceDeterministic,
		}},
	}
}

// checkStructure verifies expected report sections for document types
// that have a fixed shape. Folds into methodology.
func checkStructure(meta DocumentMeta, pol StructuralPolicy) supplementary {
	required := pol.RequiredSections[string(meta.Type)]
	if len(required) == 0 {
		return supplementary{}
	}

	present := make(map[string]bool, len(meta.Sections))
	for _, s := range meta.Sections {
		present[normalizeSection(s)] = true
	}

	var sup supplementary
	for _, want := range required {
		if present[normalizeSection(want)] {
			continue
		}
		sup.delta -= pol.MissingSectionPenalty
		sup.findings = append(sup.findings, Finding{
			Severity:    SeverityWarning,
			Category:    CategoryStructural,
			Description: fmt.Sprintf("document is missing the %s section expected of a %s report", want, meta.Type),
			Remediation: "a report of this type without its standard sections cannot be independently assessed",
			Source:      SourceDeterministic,
		})
	}
	return sup
}

func normalizeSection(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

func containsString(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}
