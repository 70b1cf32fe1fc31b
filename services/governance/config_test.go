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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Validates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "weights do not sum to one",
			mutate:  func(c *Config) { c.Weights.Methodology = 0.50 },
			wantErr: "sum to 1.0",
		},
		{
			name: "zero weight",
			mutate: func(c *Config) {
				c.Weights.BiasDetection = 0
				c.Weights.Methodology = 0.50
			},
			wantErr: "must be positive",
		},
		{
			name:    "negative weight",
			mutate:  func(c *Config) { c.Weights.Completeness = -0.25; c.Weights.Methodology = 0.80 },
			wantErr: "must be positive",
		},
		{
			name: "ai threshold above auditor threshold",
			mutate: func(c *Config) {
				c.AIVerifiedThreshold = 95
				c.AuditorVerifiedThreshold = 90
			},
			wantErr: "ai-verified threshold 95 exceeds auditor-verified threshold 90",
		},
		{
			name:    "positive adjustment floor",
			mutate:  func(c *Config) { c.AdjustmentFloor = 5 },
			wantErr: "governance config",
		},
		{
			name:    "threshold out of range",
			mutate:  func(c *Config) { c.AuditorVerifiedThreshold = 101 },
			wantErr: "governance config",
		},
		{
			name:    "zero enhancement timeout",
			mutate:  func(c *Config) { c.EnhancementTimeout = 0 },
			wantErr: "governance config",
		},
		{
			name: "routing into evidence integrity",
			mutate: func(c *Config) {
				c.Routing[CategoryIntegrityViolation] = DimensionEvidenceIntegrity
			},
			wantErr: "accepts no evaluator findings",
		},
		{
			name: "routing into unknown dimension",
			mutate: func(c *Config) {
				c.Routing[CategoryBias] = "charisma"
			},
			wantErr: `routes to unknown dimension "charisma"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigValidate_FloorCeilingOrdering(t *testing.T) {
	// A positive floor trips the struct tag, so exercise the ordering
	// check with values the tags allow.
	cfg := DefaultConfig()
	cfg.AdjustmentFloor = 0
	cfg.AdjustmentCeiling = 0
	require.NoError(t, cfg.Validate(), "floor equal to ceiling is allowed")
}

func TestConfigTier(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		score int
		want  TrustTier
	}{
		{100, TierAuditorVerified},
		{95, TierAuditorVerified},
		{90, TierAuditorVerified},
		{89, TierAIVerified},
		{70, TierAIVerified},
		{69, TierSelfAssessed},
		{0, TierSelfAssessed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.Tier(tt.score), "Tier(%d)", tt.score)
	}
}

func TestConfigTier_CustomThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuditorVerifiedThreshold = 80
	cfg.AIVerifiedThreshold = 50

	assert.Equal(t, TierAuditorVerified, cfg.Tier(80))
	assert.Equal(t, TierAIVerified, cfg.Tier(79))
	assert.Equal(t, TierAIVerified, cfg.Tier(50))
	assert.Equal(t, TierSelfAssessed, cfg.Tier(49))
}

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()

	assert.InDelta(t, 1.0, w.Total(), 1e-12)
	assert.Equal(t, 0.30, w.Of(DimensionMethodology))
	assert.Equal(t, 0.25, w.Of(DimensionEvidenceIntegrity))
	assert.Equal(t, 0.25, w.Of(DimensionCompleteness))
	assert.Equal(t, 0.20, w.Of(DimensionBiasDetection))
	assert.Zero(t, w.Of("unknown"))
}

func TestDefaultRouting_TargetsAdjustableDimensionsOnly(t *testing.T) {
	for category, dim := range DefaultRouting() {
		assert.NotEqual(t, DimensionEvidenceIntegrity, dim,
			"category %q must not route into evidence integrity", category)
	}
}
