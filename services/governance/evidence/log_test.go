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
	"math"
	"sync"
	"testing"
	"time"
)

func TestNewLog(t *testing.T) {
	log := NewLog("drift")

	if log.Name() != "drift" {
		t.Errorf("Name() = %v, want drift", log.Name())
	}
	if log.Len() != 0 {
		t.Errorf("Len() = %d, want 0", log.Len())
	}
	if log.HeadHash() != "" {
		t.Errorf("HeadHash() = %v, want empty genesis value", log.HeadHash())
	}
}

func TestLog_Append(t *testing.T) {
	log := NewLog("drift")

	before := time.Now().UnixMilli()
	r, err := log.Append("scan_started", map[string]any{"target": "prod"})
	after := time.Now().UnixMilli()
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if r.Sequence != 1 {
		t.Errorf("Sequence = %d, want 1", r.Sequence)
	}
	if r.Timestamp < before || r.Timestamp > after {
		t.Error("Timestamp not in expected range")
	}
	if r.PreviousHash != "" {
		t.Errorf("PreviousHash = %v, want empty for first record", r.PreviousHash)
	}
	if r.Hash == "" {
		t.Error("Hash should be set")
	}
	if log.HeadHash() != r.Hash {
		t.Errorf("HeadHash() = %v, want %v", log.HeadHash(), r.Hash)
	}
}

func TestLog_Append_Links(t *testing.T) {
	log := NewLog("drift")

	r1, _ := log.Append("a", nil)
	r2, _ := log.Append("b", nil)
	r3, _ := log.Append("c", nil)

	if r2.PreviousHash != r1.Hash {
		t.Errorf("record 2 PreviousHash = %v, want %v", r2.PreviousHash, r1.Hash)
	}
	if r3.PreviousHash != r2.Hash {
		t.Errorf("record 3 PreviousHash = %v, want %v", r3.PreviousHash, r2.Hash)
	}
	if r1.Sequence != 1 || r2.Sequence != 2 || r3.Sequence != 3 {
		t.Errorf("sequences = %d,%d,%d, want 1,2,3", r1.Sequence, r2.Sequence, r3.Sequence)
	}
}

func TestLog_Append_UnserializableLeavesLogUnchanged(t *testing.T) {
	log := NewLog("drift")
	log.Append("ok", nil)

	if _, err := log.Append("bad", map[string]any{"v": math.NaN()}); err == nil {
		t.Fatal("Append() should fail for unserializable payload")
	}

	if log.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after failed append", log.Len())
	}
	if !log.Verify().Intact {
		t.Error("log should still verify after failed append")
	}
}

func TestLog_Records_Copy(t *testing.T) {
	log := NewLog("drift")
	log.Append("a", nil)

	records := log.Records()
	records[0].Operation = "modified"

	if log.Records()[0].Operation == "modified" {
		t.Error("Records() should return a copy")
	}
}

func TestLog_Verify_Valid(t *testing.T) {
	log := NewLog("drift")
	log.Append("a", nil)
	log.Append("b", map[string]any{"score": 0.9})
	log.Append("c", nil)

	status := log.Verify()
	if !status.Intact {
		t.Errorf("Verify().Intact = false, want true (detail: %s)", status.Detail)
	}
	if status.HeadHash != log.HeadHash() {
		t.Errorf("Verify().HeadHash = %v, want %v", status.HeadHash, log.HeadHash())
	}
}

func TestLog_Verify_Empty(t *testing.T) {
	if !NewLog("drift").Verify().Intact {
		t.Error("Verify().Intact = false, want true for empty log")
	}
}

func TestLog_Verify_Tampered(t *testing.T) {
	log := NewLog("drift")
	log.Append("a", nil)
	log.Append("b", nil)
	log.Append("c", nil)

	// Tamper with the log by directly modifying a record.
	log.mu.Lock()
	log.records[1].Operation = "rewritten"
	log.mu.Unlock()

	status := log.Verify()
	if status.Intact {
		t.Fatal("Verify().Intact = true, want false for tampered log")
	}
	if status.BrokenAt != 2 {
		t.Errorf("BrokenAt = %d, want 2", status.BrokenAt)
	}
}

func TestLog_Summary(t *testing.T) {
	log := NewLog("probes")
	log.Append("probe_executed", nil)
	log.Append("probe_executed", nil)
	log.Append("scan_finished", nil)

	summary := log.Summary()

	if summary.Name != "probes" {
		t.Errorf("Name = %v, want probes", summary.Name)
	}
	if summary.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", summary.TotalRecords)
	}
	if summary.OperationCounts["probe_executed"] != 2 {
		t.Errorf("OperationCounts[probe_executed] = %d, want 2", summary.OperationCounts["probe_executed"])
	}
	if summary.FirstTimestamp == 0 || summary.LastTimestamp == 0 {
		t.Error("First/LastTimestamp should be set")
	}
}

func TestLog_Summary_Empty(t *testing.T) {
	summary := NewLog("probes").Summary()

	if summary.TotalRecords != 0 {
		t.Errorf("TotalRecords = %d, want 0", summary.TotalRecords)
	}
	if summary.FirstTimestamp != 0 {
		t.Error("FirstTimestamp should be zero for empty log")
	}
}

func TestLog_Concurrent(t *testing.T) {
	log := NewLog("concurrent")

	var wg sync.WaitGroup
	const numGoroutines = 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(i int) {
			defer wg.Done()
			if _, err := log.Append("probe_executed", map[string]any{"worker": i}); err != nil {
				t.Errorf("Append() error = %v", err)
			}
		}(i)
	}

	wg.Wait()

	if log.Len() != numGoroutines {
		t.Errorf("Len() = %d, want %d", log.Len(), numGoroutines)
	}
	if !log.Verify().Intact {
		t.Error("Verify().Intact = false, want true after concurrent appends")
	}
}
