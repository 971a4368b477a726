// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package metrics exposes Kinoscope's Prometheus instrumentation:
// recommendation throughput and latency per strategy, index rebuild
// activity, rating ingestion, and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendRequests counts recommendation queries by strategy and
	// outcome ("ok", "not_found", "invalid", "insufficient_data",
	// "error").
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoscope_recommend_requests_total",
			Help: "Total recommendation requests by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	// RecommendDuration tracks recommendation latency per strategy.
	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kinoscope_recommend_duration_seconds",
			Help:    "Recommendation query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"strategy"},
	)

	// IndexRebuilds counts similarity index rebuilds by outcome.
	IndexRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoscope_index_rebuilds_total",
			Help: "Total similarity index rebuilds by outcome",
		},
		[]string{"outcome"},
	)

	// IndexRebuildDuration tracks full rebuild latency, catalog fetch
	// included.
	IndexRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kinoscope_index_rebuild_duration_seconds",
			Help:    "Similarity index rebuild duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	// IndexMovies gauges the size of the published index snapshot.
	IndexMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kinoscope_index_movies",
			Help: "Movies in the current similarity index snapshot",
		},
	)

	// RatingsIngested counts accepted rating upserts.
	RatingsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kinoscope_ratings_ingested_total",
			Help: "Total rating upserts accepted",
		},
	)

	// HTTPRequests counts API traffic.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoscope_http_requests_total",
			Help: "Total HTTP requests by method, route, and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration tracks API latency per route.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kinoscope_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)
)

// ObserveRecommend records one recommendation query.
func ObserveRecommend(strategy, outcome string, elapsed time.Duration) {
	RecommendRequests.WithLabelValues(strategy, outcome).Inc()
	RecommendDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// ObserveRebuild records one index rebuild.
func ObserveRebuild(err error, elapsed time.Duration, indexSize int) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	IndexRebuilds.WithLabelValues(outcome).Inc()
	IndexRebuildDuration.Observe(elapsed.Seconds())
	if err == nil {
		IndexMovies.Set(float64(indexSize))
	}
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
