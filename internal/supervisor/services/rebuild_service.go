// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kinoscope/kinoscope/internal/metrics"
)

// IndexRebuilder is the slice of the recommendation service the rebuild
// loop needs.
type IndexRebuilder interface {
	RebuildIndex(ctx context.Context) error
	IndexSize() int
}

// RebuildService refreshes the similarity index on a fixed interval so
// catalog changes reach recommendations without a restart. A failed
// rebuild leaves the previous index published and retries on the next
// tick.
type RebuildService struct {
	rebuilder IndexRebuilder
	interval  time.Duration
	logger    zerolog.Logger
	name      string
}

// NewRebuildService creates the periodic rebuild loop.
func NewRebuildService(rebuilder IndexRebuilder, interval time.Duration, logger zerolog.Logger) *RebuildService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RebuildService{
		rebuilder: rebuilder,
		interval:  interval,
		logger:    logger.With().Str("service", "index-rebuild").Logger(),
		name:      "index-rebuild",
	}
}

// Serve implements suture.Service. The initial build happens during
// application startup, so the loop only handles refreshes.
func (s *RebuildService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("index rebuild loop running")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("index rebuild loop shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.rebuild(ctx)
		}
	}
}

func (s *RebuildService) rebuild(ctx context.Context) {
	start := time.Now()
	err := s.rebuilder.RebuildIndex(ctx)
	metrics.ObserveRebuild(err, time.Since(start), s.rebuilder.IndexSize())
	if err != nil {
		s.logger.Warn().Err(err).Msg("scheduled index rebuild failed")
		return
	}
	s.logger.Debug().
		Int("movies", s.rebuilder.IndexSize()).
		Dur("elapsed", time.Since(start)).
		Msg("scheduled index rebuild complete")
}

// String identifies the service in supervisor logs.
func (s *RebuildService) String() string {
	return s.name
}
