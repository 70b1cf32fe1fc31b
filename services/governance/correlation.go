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

// identifierKeys are the payload keys whose string values count as
// evidence identifiers for cross-referencing.
var identifierKeys = map[string]bool{
	"id":         true,
	"identifier": true,
	"probe_id":   true,
	"attack_id":  true,
	"control_id": true,
	"check_id":   true,
	"finding_id": true,
	"target":     true,
}

// scoreCorrelation cross-references probe results against identifiers
// found in evidence log payloads.
//
// The score is the matched fraction scaled to 100; an empty probe set
// (or an absent probe phase) correlates vacuously at 100. Each
// unmatched probe result emits one warning naming it.
func scoreCorrelation(logs []loadedLog, probes *ProbePhase) dimResult {
	var results []ProbeResult
	if probes != nil {
		results = probes.Results
	}
	if len(results) == 0 {
		return dimResult{score: 100, rationale: "no probe results to correlate"}
	}

	ids := collectIdentifiers(logs)

	matched := 0
	var findings []Finding
	for i, pr := range results {
		if pr.ID != "" && ids[pr.ID] {
			matched++
			continue
		}
		desc := fmt.Sprintf("probe result %q is not referenced by any evidence log record", pr.ID)
		refs := []string{pr.ID}
		if pr.ID == "" {
			desc = fmt.Sprintf("probe result %d carries no identifier and cannot be correlated", i+1)
			refs = nil
		}
		findings = append(findings, Finding{
			Severity:     SeverityWarning,
			Category:     CategoryCorrelationMiss,
			Description:  desc,
			Remediation:  "adversarial results must be written to an evidence log as they are produced",
			EvidenceRefs: refs,
			Source:       SourceDeterministic,
		})
	}

	score := 100 * float64(matched) / float64(len(results))
	return dimResult{
		score:     score,
		rationale: fmt.Sprintf("%d of %d probe results matched evidence identifiers", matched, len(results)),
		findings:  findings,
	}
}

// collectIdentifiers walks every record payload and gathers string
// values under identifier-bearing keys, recursing through nested maps
// and arrays.
func collectIdentifiers(logs []loadedLog) map[string]bool {
	ids := make(map[string]bool)
	for _, lg := range logs {
		for _, rec := range lg.records {
			for key, val := range rec.Data {
				collectFrom(key, val, ids)
			}
		}
	}
	return ids
}

func collectFrom(key string, val any, ids map[string]bool) {
	switch v := val.(type) {
	case string:
		if identifierKeys[key] && v != "" {
			ids[v] = true
		}
	case map[string]any:
		for k, inner := range v {
			collectFrom(k, inner, ids)
		}
	case []any:
		for _, inner := range v {
			collectFrom(key, inner, ids)
		}
	}
}
