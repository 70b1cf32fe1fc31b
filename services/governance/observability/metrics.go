// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the governance API.
//
// # Description
//
// This package implements Prometheus metrics for monitoring the HTTP
// surface of the governance service. Metrics include:
//   - Request counters (by endpoint, status)
//   - Request latency histograms
//   - Review outcomes (by mode and trust tier)
//   - Error counters (by endpoint, error type)
//   - In-flight request gauges
//
// The engine itself reports its internals (scores, findings, enhancement
// failures) through OpenTelemetry; this package covers the API edge.
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "aleutian"

// Subsystem for governance API metrics
const governanceSubsystem = "governance_api"

// APIMetrics holds all Prometheus metrics for the governance HTTP API.
//
// # Description
//
// Provides counters, histograms, and gauges for monitoring request volume,
// latency, and review outcomes. Initialize once at startup via InitMetrics().
//
// # Fields
//
//   - RequestsTotal: Counter of API requests by endpoint and status code
//   - RequestDurationSeconds: Histogram of request latency
//   - ReviewsTotal: Counter of finished reviews by mode and trust tier
//   - ConfidenceScore: Histogram of confidence scores per review mode
//   - ErrorsTotal: Counter of errors by endpoint and type
//   - InFlightRequests: Gauge of requests currently being served
//
// # Thread Safety
//
// All operations are thread-safe.
type APIMetrics struct {
	// RequestsTotal counts API requests by endpoint and HTTP status.
	// Labels: endpoint (review, verify, health, ready), status (200, 400, ...)
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures request latency.
	// Labels: endpoint, status
	RequestDurationSeconds *prometheus.HistogramVec

	// ReviewsTotal counts finished reviews by mode and resulting tier.
	// Labels: mode (pipeline, document), tier (auditor-verified, ...)
	ReviewsTotal *prometheus.CounterVec

	// ConfidenceScore tracks the distribution of confidence scores.
	// Labels: mode (pipeline, document)
	ConfidenceScore *prometheus.HistogramVec

	// ErrorsTotal counts errors by type and endpoint.
	// Labels: endpoint, error_code (validation, no_source, internal, ...)
	ErrorsTotal *prometheus.CounterVec

	// InFlightRequests tracks requests currently being served.
	// Labels: endpoint
	InFlightRequests *prometheus.GaugeVec
}

// DefaultMetrics is the singleton instance of APIMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *APIMetrics

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics. Should be called once
// at application startup, after the Prometheus registry is available.
//
// # Outputs
//
//   - *APIMetrics: The initialized metrics instance.
//
// # Examples
//
//	func main() {
//	    observability.InitMetrics()
//	    // ... start server ...
//	}
//
// # Limitations
//
//   - Panics if called twice (duplicate registration).
//
// # Assumptions
//
//   - Prometheus default registry is available.
func InitMetrics() *APIMetrics {
	DefaultMetrics = &APIMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: governanceSubsystem,
				Name:      "requests_total",
				Help:      "Total number of API requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		RequestDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: governanceSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Request latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
			},
			[]string{"endpoint", "status"},
		),

		ReviewsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: governanceSubsystem,
				Name:      "reviews_total",
				Help:      "Total finished reviews by mode and trust tier",
			},
			[]string{"mode", "tier"},
		),

		ConfidenceScore: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: governanceSubsystem,
				Name:      "confidence_score",
				Help:      "Distribution of review confidence scores",
				Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
			[]string{"mode"},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: governanceSubsystem,
				Name:      "errors_total",
				Help:      "Total API errors by type and endpoint",
			},
			[]string{"endpoint", "error_code"},
		),

		InFlightRequests: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: governanceSubsystem,
				Name:      "in_flight_requests",
				Help:      "Number of requests currently being served",
			},
			[]string{"endpoint"},
		),
	}

	return DefaultMetrics
}

// =============================================================================
// Error Codes
// =============================================================================

// ErrorCode represents a categorized error type for metrics.
type ErrorCode string

const (
	// ErrorCodeValidation indicates request validation failure.
	ErrorCodeValidation ErrorCode = "validation"

	// ErrorCodeForbidden indicates an authorization rejection.
	ErrorCodeForbidden ErrorCode = "forbidden"

	// ErrorCodeNoSource indicates the evidence store is unavailable.
	ErrorCodeNoSource ErrorCode = "no_source"

	// ErrorCodeTimeout indicates operation timeout.
	ErrorCodeTimeout ErrorCode = "timeout"

	// ErrorCodeInternal indicates internal server error.
	ErrorCodeInternal ErrorCode = "internal"
)

// =============================================================================
// Endpoint Names
// =============================================================================

// Endpoint represents an API endpoint for metrics labeling.
type Endpoint string

const (
	// EndpointReview is the review submission endpoint.
	EndpointReview Endpoint = "review"

	// EndpointVerify is the evidence verification endpoint.
	EndpointVerify Endpoint = "verify"

	// EndpointHealth covers the health and readiness endpoints.
	EndpointHealth Endpoint = "health"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordRequest records a completed API request.
//
// # Inputs
//
//   - endpoint: The endpoint that handled the request.
//   - status: The HTTP status code returned.
//   - seconds: Wall-clock duration of the request.
func (m *APIMetrics) RecordRequest(endpoint Endpoint, status int, seconds float64) {
	code := strconv.Itoa(status)
	m.RequestsTotal.WithLabelValues(string(endpoint), code).Inc()
	m.RequestDurationSeconds.WithLabelValues(string(endpoint), code).Observe(seconds)
}

// RecordReview records a finished review.
//
// # Inputs
//
//   - mode: The review mode (pipeline or document).
//   - tier: The trust tier the review landed in.
//   - confidence: The aggregate confidence score.
func (m *APIMetrics) RecordReview(mode, tier string, confidence int) {
	m.ReviewsTotal.WithLabelValues(mode, tier).Inc()
	m.ConfidenceScore.WithLabelValues(mode).Observe(float64(confidence))
}

// RecordError records an API error.
//
// # Inputs
//
//   - endpoint: The endpoint where the error occurred.
//   - code: The error type code.
func (m *APIMetrics) RecordError(endpoint Endpoint, code ErrorCode) {
	m.ErrorsTotal.WithLabelValues(string(endpoint), string(code)).Inc()
}

// RequestStarted increments the in-flight gauge.
func (m *APIMetrics) RequestStarted(endpoint Endpoint) {
	m.InFlightRequests.WithLabelValues(string(endpoint)).Inc()
}

// RequestEnded decrements the in-flight gauge.
func (m *APIMetrics) RequestEnded(endpoint Endpoint) {
	m.InFlightRequests.WithLabelValues(string(endpoint)).Dec()
}

// =============================================================================
// Gin Middleware
// =============================================================================

// Middleware returns a Gin middleware that records request metrics for
// one endpoint. No-op when InitMetrics has not been called.
//
// # Example
//
//	gov.POST("/reviews",
//	    observability.Middleware(observability.EndpointReview),
//	    handlers.SubmitReview(engine))
func Middleware(endpoint Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := DefaultMetrics
		if m == nil {
			c.Next()
			return
		}
		m.RequestStarted(endpoint)
		start := time.Now()

		c.Next()

		m.RequestEnded(endpoint)
		m.RecordRequest(endpoint, c.Writer.Status(), time.Since(start).Seconds())
	}
}
