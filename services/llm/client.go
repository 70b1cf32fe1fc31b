// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm wraps external model providers behind one interface so
// the governance evaluator does not care which backend serves a run.
package llm

import "context"

// GenerationParams carries per-call options. Zero values defer to the
// client's defaults.
type GenerationParams struct {
	// Model overrides the client's configured model for this call.
	Model string `json:"model,omitempty"`

	// System sets the system role content.
	System string `json:"system,omitempty"`

	// ForceJSON asks the backend for a JSON-only response where the
	// provider supports it.
	ForceJSON bool `json:"force_json,omitempty"`

	Temperature *float32 `json:"temperature,omitempty"`
	TopP        *float32 `json:"top_p,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// LLMClient is the standard interface for any model backend.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}
