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
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/AleutianAudit/services/governance/evidence"
)

// loadedLog is one named evidence log's records as read at the start of
// a run. Every checker operates on this immutable snapshot so a log is
// opened exactly once per run.
type loadedLog struct {
	name    string
	records []evidence.Record

	// err is nil on a clean read, evidence.ErrLogNotFound when the
	// source has no such log, an *evidence.MalformedRecordError when a
	// record could not be decoded (records then holds the readable
	// prefix), or any other read failure.
	err error
}

// loadLogs reads every named log from the source. Read failures are
// captured per log, never returned: a missing or unreadable log is a
// finding, not an engine failure.
func loadLogs(ctx context.Context, source evidence.Source, names []string) ([]loadedLog, error) {
	logs := make([]loadedLog, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := source.Read(ctx, name)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logs = append(logs, loadedLog{name: name, records: records, err: err})
	}
	return logs, nil
}

// dimResult is one checker's contribution before aggregation. Findings
// have no IDs yet; the report builder assigns them.
type dimResult struct {
	score     float64
	rationale string
	findings  []Finding
}

// scoreIntegrity verifies the hash chain of every loaded log.
//
// Each log contributes at most one critical finding: its first break,
// its malformed record, or its absence. The score is 100 when every log
// verifies and max(0, 100 - penalty*criticals) otherwise. A run naming
// zero logs verifies vacuously.
func scoreIntegrity(logs []loadedLog, pol IntegrityPolicy) dimResult {
	var findings []Finding
	verified := 0

	for _, lg := range logs {
		if f, ok := integrityFinding(lg); ok {
			findings = append(findings, f)
			continue
		}
		verified++
	}

	criticals := len(findings)
	score := 100.0
	rationale := fmt.Sprintf("verified hash chains of %d evidence log(s)", verified)
	if criticals > 0 {
		score = clampScore(100 - pol.CriticalPenalty*float64(criticals))
		rationale = fmt.Sprintf("%d of %d evidence log(s) failed integrity verification", criticals, len(logs))
	}
	if len(logs) == 0 {
		rationale = "no evidence logs were named"
	}

	return dimResult{score: score, rationale: rationale, findings: findings}
}

// integrityFinding inspects one loaded log and returns its critical
// finding, if any.
func integrityFinding(lg loadedLog) (Finding, bool) {
	var malformed *evidence.MalformedRecordError
	switch {
	case lg.err == nil:
		// Verified below.
	case errors.Is(lg.err, evidence.ErrLogNotFound):
		return Finding{
			Severity:     SeverityCritical,
			Category:     CategoryMissingInput,
			Description:  fmt.Sprintf("evidence log %q was named for review but was not found", lg.name),
			Remediation:  "confirm the log name and that the collection pipeline shipped the log",
			EvidenceRefs: []string{lg.name},
			Source:       SourceDeterministic,
		}, true
	case errors.As(lg.err, &malformed):
		// A broken prefix outranks the malformed record: the chain walk
		// reports the earliest problem.
		if status := evidence.VerifyChain(lg.records); !status.Intact {
			return chainBreakFinding(lg.name, status), true
		}
		return Finding{
			Severity: SeverityCritical,
			Category: CategoryIntegrityViolation,
			Description: fmt.Sprintf("evidence log %q record %d could not be decoded: %v",
				lg.name, malformed.Index, malformed.Err),
			Remediation:  "restore the log from the collector; a partially written or edited record breaks the chain",
			EvidenceRefs: []string{fmt.Sprintf("%s#%d", lg.name, malformed.Index)},
			Source:       SourceDeterministic,
		}, true
	default:
		return Finding{
			Severity:     SeverityCritical,
			Category:     CategoryMissingInput,
			Description:  fmt.Sprintf("evidence log %q could not be read: %v", lg.name, lg.err),
			Remediation:  "check source permissions and storage health, then rerun the review",
			EvidenceRefs: []string{lg.name},
			Source:       SourceDeterministic,
		}, true
	}

	if status := evidence.VerifyChain(lg.records); !status.Intact {
		return chainBreakFinding(lg.name, status), true
	}
	return Finding{}, false
}

// chainStatusOf maps a loaded log to the chain status the verification
// endpoint reports, folding read failures into the status.
func chainStatusOf(lg loadedLog) (found bool, status evidence.ChainStatus) {
	var malformed *evidence.MalformedRecordError
	switch {
	case lg.err == nil:
		return true, evidence.VerifyChain(lg.records)
	case errors.Is(lg.err, evidence.ErrLogNotFound):
		return false, evidence.ChainStatus{Detail: "log not found"}
	case errors.As(lg.err, &malformed):
		st := evidence.VerifyChain(lg.records)
		if st.Intact {
			st = evidence.ChainStatus{
				Records:  len(lg.records),
				BrokenAt: malformed.Index,
				Kind:     evidence.BreakMalformed,
				Detail:   fmt.Sprintf("record %d could not be decoded: %v", malformed.Index, malformed.Err),
			}
		}
		return true, st
	default:
		return false, evidence.ChainStatus{Detail: fmt.Sprintf("read failed: %v", lg.err)}
	}
}

// chainBreakFinding describes the first break the chain walk found.
func chainBreakFinding(name string, status evidence.ChainStatus) Finding {
	var what string
	switch status.Kind {
	case evidence.BreakLink:
		what = "its previous-hash link does not match the prior record"
	case evidence.BreakContent:
		what = "its content does not match its recorded hash"
	default:
		what = "it could not be rehashed"
	}
	return Finding{
		Severity: SeverityCritical,
		Category: CategoryIntegrityViolation,
		Description: fmt.Sprintf("evidence log %q hash chain is broken at record %d: %s (%s)",
			name, status.BrokenAt, what, status.Detail),
		Remediation:  "treat this log as untrusted from the broken record onward and re-collect the evidence",
		EvidenceRefs: []string{fmt.Sprintf("%s#%d", name, status.BrokenAt)},
		Source:       SourceDeterministic,
	}
}
