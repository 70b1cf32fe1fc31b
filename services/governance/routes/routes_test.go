// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianAudit/services/governance"
)

// ============================================================================
// Test Setup
// ============================================================================

func init() {
	// Set Gin to test mode to reduce noise in test output
	gin.SetMode(gin.TestMode)
}

// mockEngine is a minimal mock for the combined Engine surface.
type mockEngine struct{}

func (m *mockEngine) Review(_ context.Context, _ governance.ReviewInput) (*governance.Report, error) {
	return &governance.Report{ID: "mock-report"}, nil
}

func (m *mockEngine) VerifyLogs(_ context.Context, names []string) ([]governance.LogReview, error) {
	reviews := make([]governance.LogReview, 0, len(names))
	for _, n := range names {
		reviews = append(reviews, governance.LogReview{Name: n})
	}
	return reviews, nil
}

// ============================================================================
// RegisterRoutes Tests
// ============================================================================

func TestRegisterRoutes(t *testing.T) {
	router := gin.New()
	v1 := router.Group("/v1")

	// Should not panic when no readiness store is configured
	RegisterRoutes(v1, &mockEngine{}, nil)

	expected := []struct {
		method string
		path   string
	}{
		{"POST", "/v1/governance/reviews"},
		{"POST", "/v1/governance/evidence/verify"},
		{"GET", "/v1/governance/health"},
		{"GET", "/v1/governance/ready"},
	}

	routes := router.Routes()
	for _, want := range expected {
		found := false
		for _, r := range routes {
			if r.Method == want.method && r.Path == want.path {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected route %s %s not found", want.method, want.path)
		}
	}
}

func TestRegisterRoutes_HealthServes(t *testing.T) {
	router := gin.New()
	RegisterRoutes(router.Group("/v1"), &mockEngine{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/governance/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /v1/governance/health = %d, want 200", w.Code)
	}
}

func TestRegisterRoutes_ReadyWithoutStoreServes(t *testing.T) {
	router := gin.New()
	RegisterRoutes(router.Group("/v1"), &mockEngine{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/governance/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /v1/governance/ready = %d, want 200 when no store is configured", w.Code)
	}
}
