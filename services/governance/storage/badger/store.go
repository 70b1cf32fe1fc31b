// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianAudit/pkg/validation"
	"github.com/AleutianAI/AleutianAudit/services/governance/evidence"
)

// Key layout. Record keys sort by sequence because the sequence is
// big-endian, so a prefix scan replays a log in chain order.
//
//	log/<name>/<seq, 8-byte big-endian>  -> JSON evidence.Record
//	head/<name>                          -> JSON chainHead
const (
	recordKeyPrefix = "log/"
	headKeyPrefix   = "head/"
)

// chainHead tracks the tail of one log's hash chain.
type chainHead struct {
	Seq  int    `json:"seq"`
	Hash string `json:"hash"`
}

// Store is the embedded evidence log store. Collectors append through
// it during an assessment; the governance engine reads through the
// evidence.Source interface it implements.
//
// Appends are serialized: a chain append must read the head and write
// the next record atomically, and BadgerDB transactions alone would
// surface that as conflict errors rather than ordering.
type Store struct {
	db *DB
	mu sync.Mutex
}

var _ evidence.Source = (*Store)(nil)

// NewStore opens the evidence store with the given database config.
func NewStore(cfg Config) (*Store, error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open evidence store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateLog establishes an empty log. A zero-record log is a valid,
// trivially intact chain. Creating a log that already exists is a
// no-op; an existing chain is never reset.
func (s *Store) CreateLog(ctx context.Context, name string) error {
	if err := validation.ValidateLogName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(headKey(name))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("read head of %s: %w", name, err)
		}
		return writeHead(txn, name, chainHead{})
	})
}

// Append writes the next record of a log, chaining it to the current
// head. The log is created implicitly on first append.
//
// # Inputs
//
//   - ctx: bounds the write.
//   - name: the log to append to.
//   - operation: what the collector did (e.g. "probe_executed").
//   - data: arbitrary JSON-serializable payload. Not copied; the caller
//     must not mutate it afterward.
//
// # Outputs
//
//   - evidence.Record: the stored record with sequence and hash set.
//   - error: non-nil if the name is invalid, the payload cannot be
//     hashed, or the write fails. The chain is unchanged on error.
//
// # Thread Safety
//
// Safe for concurrent use; appends are serialized store-wide.
func (s *Store) Append(ctx context.Context, name, operation string, data map[string]any) (evidence.Record, error) {
	if err := validation.ValidateLogName(name); err != nil {
		return evidence.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rec evidence.Record
	err := s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		head, err := readHead(txn, name)
		if err != nil {
			return err
		}

		rec = evidence.Record{
			Sequence:     head.Seq + 1,
			Timestamp:    time.Now().UnixMilli(),
			Operation:    operation,
			Data:         data,
			PreviousHash: head.Hash,
		}
		hash, err := rec.ComputeHash()
		if err != nil {
			return fmt.Errorf("hash record: %w", err)
		}
		rec.Hash = hash

		buf, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		if err := txn.Set(recordKey(name, rec.Sequence), buf); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		return writeHead(txn, name, chainHead{Seq: rec.Sequence, Hash: rec.Hash})
	})
	if err != nil {
		return evidence.Record{}, fmt.Errorf("append to %s: %w", name, err)
	}
	return rec, nil
}

// Read implements evidence.Source. It returns the log's records in
// chain order, evidence.ErrLogNotFound for unknown names, and an
// *evidence.MalformedRecordError alongside the readable prefix when a
// stored value cannot be decoded.
func (s *Store) Read(ctx context.Context, name string) ([]evidence.Record, error) {
	if err := validation.ValidateLogName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", evidence.ErrLogNotFound, err)
	}

	var records []evidence.Record
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(headKey(name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return evidence.ErrLogNotFound
			}
			return fmt.Errorf("read head of %s: %w", name, err)
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = logPrefix(name)
		it := txn.NewIterator(opts)
		defer it.Close()

		index := 0
		for it.Rewind(); it.Valid(); it.Next() {
			index++
			var rec evidence.Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return &evidence.MalformedRecordError{Log: name, Index: index, Err: err}
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return records, err
	}
	return records, nil
}

// Head returns the current chain head of a log: its last sequence and
// hash. A zero head with ok=true means the log exists but is empty.
func (s *Store) Head(ctx context.Context, name string) (seq int, hash string, ok bool, err error) {
	if err := validation.ValidateLogName(name); err != nil {
		return 0, "", false, err
	}
	err = s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(headKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		ok = true
		return item.Value(func(val []byte) error {
			var h chainHead
			if err := json.Unmarshal(val, &h); err != nil {
				return fmt.Errorf("decode head of %s: %w", name, err)
			}
			seq, hash = h.Seq, h.Hash
			return nil
		})
	})
	return seq, hash, ok, err
}

// Healthy probes the store with an empty read transaction. It backs the
// readiness endpoint.
func (s *Store) Healthy(ctx context.Context) error {
	return s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		return nil
	})
}

func recordKey(name string, seq int) []byte {
	key := make([]byte, 0, len(recordKeyPrefix)+len(name)+9)
	key = append(key, recordKeyPrefix...)
	key = append(key, name...)
	key = append(key, '/')
	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], uint64(seq))
	return append(key, seqBytes[:]...)
}

func logPrefix(name string) []byte {
	return []byte(recordKeyPrefix + name + "/")
}

func headKey(name string) []byte {
	return []byte(headKeyPrefix + name)
}

// readHead returns the head of a log, or a zero head if the log does
// not exist yet.
func readHead(txn *badger.Txn, name string) (chainHead, error) {
	item, err := txn.Get(headKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return chainHead{}, nil
	}
	if err != nil {
		return chainHead{}, fmt.Errorf("read head of %s: %w", name, err)
	}
	var h chainHead
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &h)
	})
	if err != nil {
		return chainHead{}, fmt.Errorf("decode head of %s: %w", name, err)
	}
	return h, nil
}

func writeHead(txn *badger.Txn, name string, h chainHead) error {
	buf, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode head: %w", err)
	}
	if err := txn.Set(headKey(name), buf); err != nil {
		return fmt.Errorf("write head of %s: %w", name, err)
	}
	return nil
}
