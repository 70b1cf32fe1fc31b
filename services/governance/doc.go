// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package governance scores how trustworthy a compliance assessment is.
//
// The engine never judges whether assessed controls are good security.
// It judges whether the assessment itself can be believed: were the
// evidence logs tampered with, did the claimed phases actually run, do
// adversarial results trace back to evidence, and do the reported
// outcomes look like a real assessment rather than a generated one.
//
// # Architecture
//
// A review runs in two phases over one of two input shapes:
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                      Governance Review                           │
//	├──────────────────────────────────────────────────────────────────┤
//	│                                                                   │
//	│  ReviewInput (pipeline bundle | document bundle)                  │
//	│         │                                                         │
//	│         ▼                                                         │
//	│  ┌──────────────┬──────────────┬──────────────┬──────────────┐   │
//	│  │ Methodology  │  Evidence    │ Completeness │    Bias      │   │
//	│  │ (weight .30) │  Integrity   │ (weight .25) │  Detection   │   │
//	│  │              │ (weight .25) │              │ (weight .20) │   │
//	│  └──────────────┴──────────────┴──────────────┴──────────────┘   │
//	│         │              │              │              │           │
//	│         └──────────────┴──────┬───────┴──────────────┘           │
//	│                               ▼                                   │
//	│                    ┌────────────────────┐                        │
//	│                    │ optional evaluator │  (bounded adjustments) │
//	│                    └────────────────────┘                        │
//	│                               │                                   │
//	│                               ▼                                   │
//	│        Confidence Score → Trust Tier → hashed Report             │
//	│                                                                   │
//	└──────────────────────────────────────────────────────────────────┘
//
// # Determinism
//
// The deterministic phase is a pure function of input and Config: no
// clocks feed scoring, checker findings merge in a fixed order, and the
// report hash is computed over a canonical serialization with volatile
// fields cleared. Two runs over identical input carry identical hashes.
//
// # Enhancement
//
// An external evaluator may refine methodology, completeness, and
// bias_detection within a clamped band. It may never touch
// evidence_integrity, and any failure (timeout, transport, malformed
// output) leaves the deterministic result standing. A degraded run is
// indistinguishable from a run that never requested enhancement, except
// for the recorded model name.
//
// # Thread Safety
//
// Engine is safe for concurrent use; runs share no mutable state.
//
// # Algorithm Versioning
//
// Scoring changes must increment EngineVersion so stored reports remain
// attributable to the algorithm that produced them.
package governance
