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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianAudit/services/llm"
)

// fakeLLM records the last Generate call and plays back a canned
// response.
type fakeLLM struct {
	response string
	err      error

	prompt string
	params llm.GenerationParams
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, params llm.GenerationParams) (string, error) {
	f.prompt = prompt
	f.params = params
	return f.response, f.err
}

func evalRequest() EvaluationRequest {
	return EvaluationRequest{
		Model: "gpt-4o-mini",
		Mode:  ModePipeline,
		Input: ReviewInput{Pipeline: &PipelineBundle{EvidenceLogs: []string{"deploy-audit"}}},
		Baseline: []DimensionScore{
			{Name: DimensionMethodology, Score: 80, Weight: 0.30},
		},
	}
}

func TestLLMEvaluator_ParsesModelOutput(t *testing.T) {
	client := &fakeLLM{response: `{
		"adjustments": {"methodology": -5},
		"findings": [{"category": "bias", "severity": "info", "description": "single assessor"}],
		"narrative": "solid run"
	}`}

	eval, err := NewLLMEvaluator(client).Evaluate(context.Background(), evalRequest())
	require.NoError(t, err)

	assert.Equal(t, -5.0, eval.Adjustments[DimensionMethodology])
	require.Len(t, eval.Findings, 1)
	assert.Equal(t, CategoryBias, eval.Findings[0].Category)
	assert.Equal(t, "solid run", eval.Narrative)
}

func TestLLMEvaluator_GenerationParams(t *testing.T) {
	client := &fakeLLM{response: `{}`}

	_, err := NewLLMEvaluator(client).Evaluate(context.Background(), evalRequest())
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", client.params.Model)
	assert.True(t, client.params.ForceJSON)
	require.NotNil(t, client.params.Temperature)
	assert.Zero(t, *client.params.Temperature)
	require.NotNil(t, client.params.MaxTokens)
	assert.Equal(t, 1024, *client.params.MaxTokens)
	assert.Contains(t, client.params.System, "second-opinion reviewer")
	assert.Contains(t, client.params.System, "evidence_integrity")
}

func TestLLMEvaluator_PromptCarriesRequest(t *testing.T) {
	client := &fakeLLM{response: `{}`}

	_, err := NewLLMEvaluator(client).Evaluate(context.Background(), evalRequest())
	require.NoError(t, err)

	assert.Contains(t, client.prompt, `"deploy-audit"`)
	assert.Contains(t, client.prompt, `"gpt-4o-mini"`)
	assert.Contains(t, client.prompt, string(DimensionMethodology))
}

func TestLLMEvaluator_StripsCodeFence(t *testing.T) {
	client := &fakeLLM{response: "```json\n{\"narrative\": \"fenced anyway\"}\n```"}

	eval, err := NewLLMEvaluator(client).Evaluate(context.Background(), evalRequest())
	require.NoError(t, err)
	assert.Equal(t, "fenced anyway", eval.Narrative)
}

func TestLLMEvaluator_GenerationError(t *testing.T) {
	client := &fakeLLM{err: errors.New("model overloaded")}

	eval, err := NewLLMEvaluator(client).Evaluate(context.Background(), evalRequest())
	require.Error(t, err)
	assert.Nil(t, eval)
	assert.Contains(t, err.Error(), "evaluator generation")
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestLLMEvaluator_UnparseableOutput(t *testing.T) {
	client := &fakeLLM{response: "I think the assessment looks great!"}

	eval, err := NewLLMEvaluator(client).Evaluate(context.Background(), evalRequest())
	require.Error(t, err)
	assert.Nil(t, eval)
	assert.Contains(t, err.Error(), "unparseable")
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"anonymous fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{}\n```\n ", "{}"},
		{"no closing fence", "```json\n{\"a\":1}", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.in))
		})
	}
}

func TestBuildEvaluationPrompt(t *testing.T) {
	prompt, err := buildEvaluationPrompt(evalRequest())
	require.NoError(t, err)
	assert.Contains(t, prompt, "Review this governance run")
	assert.Contains(t, prompt, `"baseline"`)
}
