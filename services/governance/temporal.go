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
	"time"
)

// scoreTemporal checks timestamp consistency across every loaded log
// and produces one score for the whole run.
//
// Within a log, each timestamp decrease costs OrderingPenalty and emits
// a warning citing both timestamps and the record index. A collection
// window wider than MaxSpanHours costs SpanPenalty once per log and
// emits an info finding. Logs with fewer than two records are skipped;
// logs that failed to load contribute whatever readable prefix they
// have.
func scoreTemporal(logs []loadedLog, pol TemporalPolicy) dimResult {
	score := 100.0
	var findings []Finding
	checked := 0

	maxSpan := time.Duration(pol.MaxSpanHours * float64(time.Hour))

	for _, lg := range logs {
		if len(lg.records) < 2 {
			continue
		}
		checked++

		earliest, latest := lg.records[0].Timestamp, lg.records[0].Timestamp
		for i := 1; i < len(lg.records); i++ {
			prev, cur := lg.records[i-1], lg.records[i]
			if cur.Timestamp < prev.Timestamp {
				score -= pol.OrderingPenalty
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Category: CategoryOrderingViolation,
					Description: fmt.Sprintf("evidence log %q record %d is timestamped %s, before record %d at %s",
						lg.name, cur.Sequence, formatMillis(cur.Timestamp), prev.Sequence, formatMillis(prev.Timestamp)),
					Remediation:  "evidence records must be appended in collection order; check the collector's clock",
					EvidenceRefs: []string{fmt.Sprintf("%s#%d", lg.name, cur.Sequence)},
					Source:       SourceDeterministic,
				})
			}
			if cur.Timestamp < earliest {
				earliest = cur.Timestamp
			}
			if cur.Timestamp > latest {
				latest = cur.Timestamp
			}
		}

		if span := time.Duration(latest-earliest) * time.Millisecond; span > maxSpan {
			score -= pol.SpanPenalty
			findings = append(findings, Finding{
				Severity: SeverityInfo,
				Category: CategoryGapObservation,
				Description: fmt.Sprintf("evidence log %q spans %s between %s and %s, wider than the expected %s collection window",
					lg.name, span.Round(time.Minute), formatMillis(earliest), formatMillis(latest), maxSpan),
				EvidenceRefs: []string{lg.name},
				Source:       SourceDeterministic,
			})
		}
	}

	rationale := fmt.Sprintf("timestamps consistent across %d evidence log(s)", checked)
	if len(findings) > 0 {
		rationale = fmt.Sprintf("%d temporal anomalies across %d evidence log(s)", len(findings), checked)
	}

	return dimResult{score: clampScore(score), rationale: rationale, findings: findings}
}

// formatMillis renders a unix-millisecond timestamp for findings.
func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
