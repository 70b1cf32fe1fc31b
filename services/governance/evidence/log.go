// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package evidence

import (
	"sync"
	"time"
)

// Log is an append-only evidence log that maintains the hash chain as
// records are added.
//
// Collectors use Log while an assessment runs, then persist the records
// through a store or hand them to the governance engine directly. The
// governance engine itself never appends; it only reads and verifies.
//
// Thread Safety: Safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	name    string
	records []Record
	head    string
}

// NewLog creates an empty evidence log.
//
// Inputs:
//   - name: Log identifier, used when persisting and when the engine
//     requests the log from a Source.
//
// Outputs:
//   - *Log: An empty log whose first appended record will carry the
//     genesis previous-hash.
//
// Thread Safety: The returned log is safe for concurrent use.
func NewLog(name string) *Log {
	return &Log{
		name:    name,
		records: make([]Record, 0),
		head:    genesisPreviousHash,
	}
}

// Name returns the log identifier.
func (l *Log) Name() string {
	return l.name
}

// Append records an operation at the tail of the chain.
//
// The record's sequence, timestamp, previous-hash link, and content hash
// are all assigned here; callers supply only what happened.
//
// Inputs:
//   - operation: Name of the operation performed.
//   - data: Operation-specific payload (may be nil).
//
// Outputs:
//   - Record: The committed record, including its hash.
//   - error: Non-nil when the payload cannot be serialized; the log is
//     left unchanged in that case.
//
// Thread Safety: Safe for concurrent use.
func (l *Log) Append(operation string, data map[string]any) (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r := Record{
		Sequence:     len(l.records) + 1,
		Timestamp:    time.Now().UnixMilli(),
		Operation:    operation,
		Data:         data,
		PreviousHash: l.head,
	}

	hash, err := r.ComputeHash()
	if err != nil {
		return Record{}, err
	}
	r.Hash = hash

	l.records = append(l.records, r)
	l.head = hash
	return r, nil
}

// Records returns a copy of all records in append order.
//
// Thread Safety: Safe for concurrent use.
func (l *Log) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records.
//
// Thread Safety: Safe for concurrent use.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// HeadHash returns the hash of the most recent record, or the genesis
// value for an empty log.
//
// Thread Safety: Safe for concurrent use.
func (l *Log) HeadHash() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.head
}

// Verify rewalks the chain from the first record.
//
// Outputs:
//   - ChainStatus: Intact flag plus first-break details on tampering.
//
// Thread Safety: Safe for concurrent use.
func (l *Log) Verify() ChainStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return VerifyChain(l.records)
}

// Summary returns collection statistics for the log.
//
// Thread Safety: Safe for concurrent use.
func (l *Log) Summary() LogSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := LogSummary{
		Name:            l.name,
		TotalRecords:    len(l.records),
		OperationCounts: make(map[string]int),
	}
	if len(l.records) > 0 {
		s.FirstTimestamp = l.records[0].Timestamp
		s.LastTimestamp = l.records[len(l.records)-1].Timestamp
	}
	for _, r := range l.records {
		s.OperationCounts[r.Operation]++
	}
	return s
}

// LogSummary contains collection statistics for one evidence log.
type LogSummary struct {
	Name            string         `json:"name"`
	TotalRecords    int            `json:"total_records"`
	FirstTimestamp  int64          `json:"first_timestamp,omitempty"` // Unix milliseconds UTC
	LastTimestamp   int64          `json:"last_timestamp,omitempty"`  // Unix milliseconds UTC
	OperationCounts map[string]int `json:"operation_counts"`
}
