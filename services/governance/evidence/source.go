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
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/AleutianAI/AleutianAudit/pkg/validation"
)

// ErrLogNotFound reports that a named evidence log does not exist in the
// source. The governance engine treats this as a finding, not a failure.
var ErrLogNotFound = errors.New("evidence log not found")

// MalformedRecordError reports a record that could not be decoded while
// reading a log. Records before the malformed one are still returned, so
// callers can verify the readable prefix and report the break position.
type MalformedRecordError struct {
	// Log is the name of the log being read.
	Log string

	// Index is the 1-based position of the unreadable record.
	Index int

	// Err is the underlying decode error.
	Err error
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("evidence log %q: malformed record at index %d: %v", e.Log, e.Index, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Source produces ordered evidence records for named logs.
//
// Implementations must return records in file order and must not invent,
// reorder, or repair records: the governance engine's verification depends
// on seeing logs exactly as they were written.
//
// Read errors:
//   - ErrLogNotFound (wrapped) when the named log does not exist.
//   - *MalformedRecordError when a record cannot be decoded; the records
//     preceding it are returned alongside the error.
type Source interface {
	Read(ctx context.Context, name string) ([]Record, error)
}

// =============================================================================
// Directory Source (JSONL files)
// =============================================================================

// DirSource reads evidence logs from a directory of JSONL files, one log
// per "<name>.jsonl" file with one record per line.
//
// This matches the on-disk format assessment collectors write. Log names
// are validated before being joined into a path, so a caller-supplied name
// cannot escape the directory.
type DirSource struct {
	dir string
}

// NewDirSource creates a Source over the given directory.
//
// The directory is not required to exist until Read is called; a missing
// directory simply means every log is not found.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Read loads the named log.
//
// Inputs:
//   - ctx: Checked between line batches so oversized files can be abandoned.
//   - name: Log identifier; "<name>.jsonl" is read from the directory.
//
// Outputs:
//   - []Record: Records in file order. Blank lines are skipped.
//   - error: ErrLogNotFound, *MalformedRecordError, or a read failure.
func (s *DirSource) Read(ctx context.Context, name string) ([]Record, error) {
	if err := validation.ValidateLogName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogNotFound, err)
	}

	path := filepath.Join(s.dir, name+".jsonl")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLogNotFound, name)
		}
		return nil, fmt.Errorf("open evidence log %q: %w", name, err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if line%1024 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var r Record
		if err := json.Unmarshal([]byte(text), &r); err != nil {
			return records, &MalformedRecordError{Log: name, Index: len(records) + 1, Err: err}
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("read evidence log %q: %w", name, err)
	}

	return records, nil
}

// =============================================================================
// In-Memory Source
// =============================================================================

// MemSource holds evidence logs in memory.
//
// Used by tests and by callers that submit records inline over the API
// instead of referencing stored logs.
//
// Thread Safety: Safe for concurrent use.
type MemSource struct {
	mu   sync.RWMutex
	logs map[string][]Record
}

// NewMemSource creates an empty in-memory source.
func NewMemSource() *MemSource {
	return &MemSource{logs: make(map[string][]Record)}
}

// Put stores records under a log name, replacing any previous value.
func (s *MemSource) Put(name string, records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(records))
	copy(out, records)
	s.logs[name] = out
}

// PutLog stores a Log's current records under its own name.
func (s *MemSource) PutLog(l *Log) {
	s.Put(l.Name(), l.Records())
}

// Read returns the named log's records.
func (s *MemSource) Read(ctx context.Context, name string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.logs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLogNotFound, name)
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out, nil
}

var (
	_ Source = (*DirSource)(nil)
	_ Source = (*MemSource)(nil)
)
