// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Service is the facade over the three recommendation strategies. It owns
// the shared index and rating matrix, validates requests, and keeps the
// derived artifacts fresh. One Service instance is shared by every caller.
type Service struct {
	cfg    Config
	logger zerolog.Logger

	catalog CatalogSource
	ratings RatingSource

	matrix        *MatrixStore
	index         *Index
	content       *ContentRecommender
	rating        *RatingRecommender
	collaborative *CollaborativeRecommender

	rebuilds singleflight.Group
}

// NewService validates cfg and wires the strategies around a fresh matrix
// and index. Call Start before serving requests.
func NewService(cfg Config, catalog CatalogSource, ratings RatingSource, logger zerolog.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("recommend config: %w", err)
	}
	matrix := NewMatrixStore(cfg.MinRating, cfg.MaxRating)
	index := NewIndex(cfg.MaxNeighbors)
	return &Service{
		cfg:           cfg,
		logger:        logger.With().Str("component", "recommend").Logger(),
		catalog:       catalog,
		ratings:       ratings,
		matrix:        matrix,
		index:         index,
		content:       NewContentRecommender(index),
		rating:        NewRatingRecommender(index, matrix, cfg),
		collaborative: NewCollaborativeRecommender(matrix, cfg),
	}, nil
}

// Start loads the persisted ratings into the matrix and performs the
// initial index build. It is not safe to call concurrently with itself.
func (s *Service) Start(ctx context.Context) error {
	entries, err := s.ratings.FetchRatings(ctx)
	if err != nil {
		return fmt.Errorf("fetch ratings: %w", err)
	}
	if err := s.matrix.Load(entries); err != nil {
		return fmt.Errorf("load rating matrix: %w", err)
	}
	s.logger.Info().Int("ratings", len(entries)).Msg("rating matrix loaded")

	if err := s.RebuildIndex(ctx); err != nil {
		return err
	}
	return nil
}

// RebuildIndex fetches the current catalog, vectorizes it, and atomically
// publishes a new similarity index. Concurrent callers are coalesced onto
// one build and all receive its result.
func (s *Service) RebuildIndex(ctx context.Context) error {
	_, err, shared := s.rebuilds.Do("rebuild", func() (interface{}, error) {
		start := time.Now()
		movies, err := s.catalog.FetchCatalog(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch catalog: %w", err)
		}
		vectors, err := Vectorize(movies)
		if err != nil {
			return nil, err
		}
		s.index.Rebuild(vectors)
		s.logger.Info().
			Int("movies", len(movies)).
			Dur("elapsed", time.Since(start)).
			Msg("similarity index rebuilt")
		return nil, nil
	})
	if shared {
		s.logger.Debug().Msg("index rebuild coalesced with in-flight build")
	}
	return err
}

// IndexReady reports whether the similarity index has been built at least
// once. Health checks use this to distinguish "warming up" from "broken".
func (s *Service) IndexReady() bool {
	return s.index.Ready()
}

// IndexSize returns the number of movies in the current index snapshot.
func (s *Service) IndexSize() int {
	return s.index.Size()
}

// ValidateRating checks a rating against the configured scale without
// recording it, so callers can vet input before persisting anywhere.
func (s *Service) ValidateRating(rating float64) error {
	return s.matrix.validate(rating)
}

// UpsertRating records one rating in the in-memory matrix. The caller is
// responsible for persisting it; the core only mirrors durable state.
func (s *Service) UpsertRating(userID, movieID int64, rating float64) error {
	return s.matrix.Upsert(userID, movieID, rating)
}

// Recommend validates and dispatches a request to the strategy it names.
// The result is deduplicated, ordered, and at most the clamped count long.
func (s *Service) Recommend(ctx context.Context, req Request) ([]int64, error) {
	count, err := s.clampCount(req.Count)
	if err != nil {
		return nil, err
	}

	var ids []int64
	switch req.Strategy {
	case StrategyContent:
		ids, err = s.content.Recommend(req.SubjectID, count)
	case StrategyRating:
		ids, err = s.rating.Recommend(req.SubjectID, count)
	case StrategyCollaborative:
		ids, err = s.collaborative.Recommend(req.SubjectID, count)
	default:
		return nil, &ValidationError{Field: "strategy", Reason: fmt.Sprintf("unknown strategy %d", req.Strategy)}
	}
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("strategy", req.Strategy.String()).
			Int64("subject", req.SubjectID).
			Msg("recommendation failed")
		return nil, err
	}
	return dedupe(ids), nil
}

// clampCount applies the default for zero, rejects negatives, and clamps
// to the configured ceiling. Oversized requests are served at the ceiling
// rather than rejected.
func (s *Service) clampCount(count int) (int, error) {
	switch {
	case count < 0:
		return 0, &ValidationError{Field: "count", Reason: fmt.Sprintf("%d is negative", count)}
	case count == 0:
		return s.cfg.DefaultK, nil
	case count > s.cfg.MaxK:
		return s.cfg.MaxK, nil
	default:
		return count, nil
	}
}

// dedupe removes repeated IDs keeping the first occurrence, preserving
// rank order.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
