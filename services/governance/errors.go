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

import "errors"

var (
	// ErrNoInput is returned when a review input carries neither a
	// pipeline bundle nor a document bundle.
	ErrNoInput = errors.New("governance: review input has no bundle")

	// ErrBothShapes is returned when a review input carries both bundle
	// shapes; exactly one must be set.
	ErrBothShapes = errors.New("governance: review input sets both pipeline and document bundles")

	// ErrNoSource is returned when a pipeline review names evidence logs
	// but the engine was built without an evidence source.
	ErrNoSource = errors.New("governance: no evidence source configured")
)
