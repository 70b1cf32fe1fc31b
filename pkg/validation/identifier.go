// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for caller-provided identifiers that are
// used in file paths and storage keys. Using these validators prevents path
// traversal and key-injection through evidence log names and control IDs.
package validation

import (
	"fmt"
	"regexp"
)

// logNamePattern matches valid evidence log names.
// Allows: letters, digits, underscores, hyphens, dots (not leading).
// Max length: 128 characters.
var logNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.\-]{0,127}$`)

// controlIDPattern matches valid control identifiers.
// Allows: letters, digits, underscores, hyphens, dots, colons (CC6.1, AC-2).
// Max length: 64 characters.
var controlIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:\-]{0,63}$`)

// ValidateLogName validates an evidence log name before it is joined into
// a file path or storage key.
//
// Valid names:
//   - 1-128 characters
//   - Letters, digits, underscores, hyphens, dots
//   - Must not start with a dot (blocks "..", hidden files)
//
// Returns an error if the name is invalid.
//
// Example:
//
//	if err := validation.ValidateLogName(name); err != nil {
//	    return nil, fmt.Errorf("invalid log name: %w", err)
//	}
//	// Safe to use in a file path
func ValidateLogName(name string) error {
	if name == "" {
		return fmt.Errorf("log name cannot be empty")
	}

	if !logNamePattern.MatchString(name) {
		return fmt.Errorf("invalid log name: %q (must be 1-128 alphanumeric chars, underscores, hyphens, or non-leading dots)", name)
	}

	return nil
}

// ValidateControlID validates a control identifier before it is used as a
// storage key or finding reference.
//
// Valid IDs cover common framework notations: "CC6.1", "AC-2", "A.12.1.2".
//
// Returns an error if the ID is invalid.
func ValidateControlID(id string) error {
	if id == "" {
		return fmt.Errorf("control ID cannot be empty")
	}

	if !controlIDPattern.MatchString(id) {
		return fmt.Errorf("invalid control ID: %q (must be 1-64 alphanumeric chars, underscores, hyphens, dots, or colons)", id)
	}

	return nil
}

// ValidateLogNames validates multiple log names.
// Returns an error listing all invalid names if any fail validation.
func ValidateLogNames(names []string) error {
	var invalid []string
	for _, n := range names {
		if err := ValidateLogName(n); err != nil {
			invalid = append(invalid, n)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid log names: %v", invalid)
	}
	return nil
}
