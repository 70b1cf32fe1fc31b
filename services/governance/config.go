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
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// weightTolerance is how far the weight total may drift from 1.0 before
// the configuration is rejected.
const weightTolerance = 1e-9

var validate = validator.New()

// Config holds every knob a governance run consults. The engine reads
// configuration only from here; there is no ambient or global state, so
// two engines with equal configs produce byte-identical scoring.
type Config struct {
	// Weights is the dimension weighting used by the aggregator.
	Weights Weights `validate:"required"`

	// AuditorVerifiedThreshold is the minimum confidence score for the
	// auditor-verified tier.
	AuditorVerifiedThreshold int `validate:"gte=0,lte=100"`

	// AIVerifiedThreshold is the minimum confidence score for the
	// ai-verified tier. Anything below is self-assessed.
	AIVerifiedThreshold int `validate:"gte=0,lte=100"`

	// AdjustmentFloor and AdjustmentCeiling bound each enhancement
	// adjustment before it is applied.
	AdjustmentFloor   float64 `validate:"lte=0"`
	AdjustmentCeiling float64 `validate:"gte=0"`

	// EnhancementTimeout bounds the external evaluator call.
	EnhancementTimeout time.Duration `validate:"gt=0"`

	// Routing maps an evaluator finding category to the dimension it
	// lands in. Findings with categories not in the table are dropped.
	Routing map[FindingCategory]Dimension

	// Policy holds the deterministic scoring constants.
	Policy ScoringPolicy
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Weights:                  DefaultWeights(),
		AuditorVerifiedThreshold: 90,
		AIVerifiedThreshold:      70,
		AdjustmentFloor:          -20,
		AdjustmentCeiling:        10,
		EnhancementTimeout:       30 * time.Second,
		Routing:                  DefaultRouting(),
		Policy:                   DefaultScoringPolicy(),
	}
}

// DefaultRouting returns the category-to-dimension table for evaluator
// findings. Evidence integrity receives no routed categories: that
// dimension reflects cryptographic verification only.
func DefaultRouting() map[FindingCategory]Dimension {
	return map[FindingCategory]Dimension{
		CategoryMethodology:  DimensionMethodology,
		CategoryCompleteness: DimensionCompleteness,
		CategoryBias:         DimensionBiasDetection,
	}
}

// Validate rejects configurations that would make scoring ill-defined.
// Called once at engine construction, never per run.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("governance config: %w", err)
	}
	if c.Weights.Methodology <= 0 || c.Weights.EvidenceIntegrity <= 0 ||
		c.Weights.Completeness <= 0 || c.Weights.BiasDetection <= 0 {
		return fmt.Errorf("governance config: all dimension weights must be positive, got %+v", c.Weights)
	}
	if total := c.Weights.Total(); math.Abs(total-1.0) > weightTolerance {
		return fmt.Errorf("governance config: dimension weights must sum to 1.0, got %.6f", total)
	}
	if c.AIVerifiedThreshold > c.AuditorVerifiedThreshold {
		return fmt.Errorf("governance config: ai-verified threshold %d exceeds auditor-verified threshold %d",
			c.AIVerifiedThreshold, c.AuditorVerifiedThreshold)
	}
	if c.AdjustmentFloor > c.AdjustmentCeiling {
		return fmt.Errorf("governance config: adjustment floor %.1f exceeds ceiling %.1f",
			c.AdjustmentFloor, c.AdjustmentCeiling)
	}
	for category, dim := range c.Routing {
		switch dim {
		case DimensionMethodology, DimensionCompleteness, DimensionBiasDetection:
			// Adjustable dimensions may receive routed findings.
		case DimensionEvidenceIntegrity:
			return fmt.Errorf("governance config: category %q routes to evidence_integrity, which accepts no evaluator findings", category)
		default:
			return fmt.Errorf("governance config: category %q routes to unknown dimension %q", category, dim)
		}
	}
	return nil
}

// Tier maps a confidence score to its trust tier.
func (c Config) Tier(score int) TrustTier {
	switch {
	case score >= c.AuditorVerifiedThreshold:
		return TierAuditorVerified
	case score >= c.AIVerifiedThreshold:
		return TierAIVerified
	default:
		return TierSelfAssessed
	}
}
