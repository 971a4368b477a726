// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package recommend

import (
	"context"
	"strings"
)

// Movie is the catalog metadata the core derives feature vectors from.
// It deliberately carries no rating information; ratings live in the
// MatrixStore and are keyed by (user, movie).
type Movie struct {
	ID        int64
	Title     string
	Genres    []string
	Keywords  []string
	Cast      []string
	Directors []string
	Overview  string
	Year      int
}

// RatingEntry is one cell of the user-movie rating matrix.
type RatingEntry struct {
	UserID  int64
	MovieID int64
	Rating  float64
}

// FeatureVector is a dense L2-normalized TF-IDF vector over the vocabulary
// of one catalog snapshot. Vectors from different snapshots are not
// comparable.
type FeatureVector []float64

// Neighbor is one entry of a precomputed similarity list.
type Neighbor struct {
	MovieID int64
	Score   float64
}

// NeighborList holds the nearest neighbors of one movie, ordered by score
// descending with ties broken by ascending movie ID.
type NeighborList []Neighbor

// Strategy selects which recommender answers a request. The set is closed;
// Service.Recommend rejects values outside it.
type Strategy int

const (
	// StrategyContent ranks by metadata similarity alone.
	StrategyContent Strategy = iota
	// StrategyRating blends metadata similarity with Bayesian-adjusted
	// community ratings.
	StrategyRating
	// StrategyCollaborative ranks by user-based collaborative filtering.
	StrategyCollaborative
)

func (s Strategy) String() string {
	switch s {
	case StrategyContent:
		return "content"
	case StrategyRating:
		return "rating"
	case StrategyCollaborative:
		return "collaborative"
	default:
		return "unknown"
	}
}

// ParseStrategy maps the wire name of a strategy to its value. Unknown
// names yield a ValidationError.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "content":
		return StrategyContent, nil
	case "rating":
		return StrategyRating, nil
	case "collaborative":
		return StrategyCollaborative, nil
	default:
		return 0, &ValidationError{Field: "strategy", Reason: "unknown strategy " + name}
	}
}

// Request is one recommendation query. SubjectID is a movie ID for the
// content and rating strategies and a user ID for collaborative. A Count of
// zero means "use the configured default".
type Request struct {
	Strategy  Strategy
	SubjectID int64
	Count     int
}

// CatalogSource supplies the movie catalog the index is built from. The
// returned slice is a snapshot owned by the caller.
type CatalogSource interface {
	FetchCatalog(ctx context.Context) ([]Movie, error)
}

// RatingSource supplies the initial rating matrix contents at startup.
// Incremental updates flow through Service.UpsertRating instead.
type RatingSource interface {
	FetchRatings(ctx context.Context) ([]RatingEntry, error)
}
