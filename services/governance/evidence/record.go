// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package evidence defines the hash-chained evidence record model shared by
// assessment collectors (which append records) and the governance engine
// (which verifies them).
//
// An evidence log is an append-only sequence of records. Each record commits
// to its own content and to the hash of its predecessor, so any later edit,
// reorder, or deletion is detectable by rewalking the chain. This provides
// tamper-evidence, not tamper-prevention: records are plain JSON and anyone
// holding the log can rewrite it wholesale, but not silently.
package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// genesisPreviousHash is the previous-hash value of the first record in a
// chain. The verifier starts its walk from this value.
const genesisPreviousHash = ""

// Record is one entry in a hash-chained evidence log.
//
// Invariants:
//   - Hash = SHA-256 over the canonical JSON of the record with Hash cleared
//     (i.e. over sequence, timestamp, operation, data, previous_hash).
//   - PreviousHash of the first record is empty; for every later record it
//     equals the Hash of its predecessor.
//
// Records are immutable once written. Verification never mutates them.
type Record struct {
	// Sequence is the 1-based position of the record within its log.
	Sequence int `json:"sequence"`

	// Timestamp when the recorded operation happened (Unix milliseconds UTC).
	Timestamp int64 `json:"timestamp"`

	// Operation names what the collector did, e.g. "probe_executed".
	Operation string `json:"operation"`

	// Data carries operation-specific payload fields.
	Data map[string]any `json:"data,omitempty"`

	// PreviousHash is the Hash of the preceding record ("" for the first).
	PreviousHash string `json:"previous_hash,omitempty"`

	// Hash is the content hash committed when the record was appended.
	Hash string `json:"hash,omitempty"`
}

// ComputeHash returns the content hash of the record.
//
// The hash covers every field except Hash itself, serialized as canonical
// JSON (struct field order is fixed; map keys inside Data are sorted by
// encoding/json).
//
// Outputs:
//   - string: Hex-encoded SHA-256 digest.
//   - error: Non-nil when the record data cannot be serialized, which means
//     the hash cannot be reconstructed at all.
func (r Record) ComputeHash() (string, error) {
	c := r
	c.Hash = ""
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal record %d: %w", r.Sequence, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// BreakKind classifies why a chain walk stopped trusting a log.
type BreakKind string

const (
	// BreakLink means a record's previous_hash does not match the hash of
	// its predecessor (or is non-empty on the first record).
	BreakLink BreakKind = "link_mismatch"

	// BreakContent means a record's stored hash does not match the hash
	// recomputed over its committed fields.
	BreakContent BreakKind = "content_mismatch"

	// BreakMalformed means a record's content hash could not be
	// reconstructed (unreadable or unserializable record data).
	BreakMalformed BreakKind = "malformed_record"
)

// ChainStatus is the outcome of verifying one evidence log.
//
// When the chain is intact, BrokenAt is 0 and HeadHash holds the hash of
// the final record ("" for an empty log, which is valid).
type ChainStatus struct {
	// Intact is true when every record verified against its predecessor.
	Intact bool `json:"intact"`

	// Records is the number of records examined.
	Records int `json:"records"`

	// BrokenAt is the 1-based index of the first record that failed
	// verification, or 0 when the chain is intact. Records past the break
	// are not examined further.
	BrokenAt int `json:"broken_at,omitempty"`

	// Kind classifies the first break.
	Kind BreakKind `json:"kind,omitempty"`

	// Detail is a human-readable description of the first break.
	Detail string `json:"detail,omitempty"`

	// HeadHash is the hash of the last record of an intact chain.
	HeadHash string `json:"head_hash,omitempty"`
}

// VerifyChain rewalks a log in order and checks both chain invariants for
// every record: the previous-hash link and the recomputed content hash.
//
// Verification stops at the first broken record; later records are not
// separately reported. An empty slice is a valid chain.
//
// Inputs:
//   - records: The log's records in file order.
//
// Outputs:
//   - ChainStatus: Intact flag plus first-break position and reason.
func VerifyChain(records []Record) ChainStatus {
	prev := genesisPreviousHash
	for i, r := range records {
		idx := i + 1
		if r.PreviousHash != prev {
			return ChainStatus{
				Records:  len(records),
				BrokenAt: idx,
				Kind:     BreakLink,
				Detail: fmt.Sprintf("record %d: previous_hash %q does not match predecessor hash %q",
					idx, truncateHash(r.PreviousHash), truncateHash(prev)),
			}
		}

		computed, err := r.ComputeHash()
		if err != nil {
			return ChainStatus{
				Records:  len(records),
				BrokenAt: idx,
				Kind:     BreakMalformed,
				Detail:   fmt.Sprintf("record %d: %v", idx, err),
			}
		}
		if computed != r.Hash {
			return ChainStatus{
				Records:  len(records),
				BrokenAt: idx,
				Kind:     BreakContent,
				Detail: fmt.Sprintf("record %d: stored hash %q does not match recomputed hash %q",
					idx, truncateHash(r.Hash), truncateHash(computed)),
			}
		}

		prev = r.Hash
	}

	return ChainStatus{
		Intact:   true,
		Records:  len(records),
		HeadHash: prev,
	}
}

// truncateHash shortens a hash for finding and log messages.
func truncateHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
