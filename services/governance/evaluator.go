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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianAudit/services/llm"
)

const evaluatorSystemPrompt = `You are a second-opinion reviewer inside a compliance governance engine.
You receive a deterministic scoring baseline and the reviewed material.
You may refine three dimensions: methodology, completeness, bias_detection.
You must never touch evidence_integrity; it reflects cryptographic verification.

Respond with a single JSON object and nothing else:
{
  "adjustments": {"methodology": 0, "completeness": 0, "bias_detection": 0},
  "findings": [{"category": "methodology|completeness|bias", "severity": "warning|info", "description": "...", "remediation": "..."}],
  "narrative": "two or three sentences on overall assessment quality"
}

Adjustments are deltas on a 0-100 scale. Propose a delta only when the
baseline missed something concrete; omit dimensions you agree with.
Do not restate findings the baseline already contains.`

// LLMEvaluator adapts an llm.LLMClient to the Evaluator strategy. It is
// deliberately thin: the engine owns clamping, routing, and failure
// handling, so a misbehaving model can degrade nothing.
type LLMEvaluator struct {
	client    llm.LLMClient
	maxTokens int
}

// NewLLMEvaluator wraps a model client.
func NewLLMEvaluator(client llm.LLMClient) *LLMEvaluator {
	return &LLMEvaluator{client: client, maxTokens: 1024}
}

// Evaluate implements Evaluator.
func (e *LLMEvaluator) Evaluate(ctx context.Context, req EvaluationRequest) (*Evaluation, error) {
	prompt, err := buildEvaluationPrompt(req)
	if err != nil {
		return nil, err
	}

	temperature := float32(0)
	raw, err := e.client.Generate(ctx, prompt, llm.GenerationParams{
		Model:       req.Model,
		System:      evaluatorSystemPrompt,
		ForceJSON:   true,
		Temperature: &temperature,
		MaxTokens:   &e.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluator generation: %w", err)
	}

	var eval Evaluation
	if err := json.Unmarshal([]byte(stripFences(raw)), &eval); err != nil {
		return nil, fmt.Errorf("evaluator returned unparseable output: %w", err)
	}
	return &eval, nil
}

// buildEvaluationPrompt serializes the request for the model.
func buildEvaluationPrompt(req EvaluationRequest) (string, error) {
	payload, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal evaluation request: %w", err)
	}
	return fmt.Sprintf("Review this governance run and respond with the JSON object described in your instructions.\n\n%s", payload), nil
}

// stripFences removes a markdown code fence if the model wrapped its
// JSON in one despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
