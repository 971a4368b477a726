// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package recommend

import "fmt"

// Config holds the tunables of the recommendation core. Use DefaultConfig
// as the base and override selectively; a zero Config fails Validate.
type Config struct {
	// SimilarityWeight is the blend weight of the content-similarity
	// component in the rating strategy. Default: 0.5.
	SimilarityWeight float64 `koanf:"similarity_weight"`

	// RatingWeight is the blend weight of the Bayesian rating component in
	// the rating strategy. Default: 0.5.
	RatingWeight float64 `koanf:"rating_weight"`

	// BayesPriorWeight is the pseudo-count of prior observations pulling a
	// movie's mean toward the catalog mean. Higher values need more real
	// ratings to escape the prior. Default: 50.
	BayesPriorWeight float64 `koanf:"bayes_prior_weight"`

	// Oversample is the multiple of the requested count taken from the
	// similarity index before the rating strategy re-ranks. Default: 3.
	Oversample int `koanf:"oversample"`

	// MinCoRated is the minimum number of co-rated movies two users must
	// share before their similarity counts. Default: 3.
	MinCoRated int `koanf:"min_co_rated"`

	// UserSimilarity selects the user-user similarity measure for the
	// collaborative strategy: "pearson" or "cosine". Default: "pearson".
	UserSimilarity string `koanf:"user_similarity"`

	// MaxNeighbors caps the precomputed neighbor list stored per movie.
	// Requests larger than this fall back to an on-demand scan. Default: 100.
	MaxNeighbors int `koanf:"max_neighbors"`

	// DefaultK is the result count used when a request leaves Count zero.
	// Default: 15.
	DefaultK int `koanf:"default_k"`

	// MaxK is the hard ceiling on result counts; larger requests are
	// clamped, not rejected. Default: 100.
	MaxK int `koanf:"max_k"`

	// MinRating and MaxRating bound the accepted rating scale. Ratings must
	// also fall on half-point steps. Defaults: 0.5 and 5.0.
	MinRating float64 `koanf:"min_rating"`
	MaxRating float64 `koanf:"max_rating"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SimilarityWeight: 0.5,
		RatingWeight:     0.5,
		BayesPriorWeight: 50,
		Oversample:       3,
		MinCoRated:       3,
		UserSimilarity:   "pearson",
		MaxNeighbors:     100,
		DefaultK:         15,
		MaxK:             100,
		MinRating:        0.5,
		MaxRating:        5.0,
	}
}

// Validate checks internal consistency. It is called once at service
// construction so the hot paths can trust the values.
func (c Config) Validate() error {
	if c.SimilarityWeight < 0 || c.RatingWeight < 0 {
		return fmt.Errorf("blend weights must be non-negative, got %.2f/%.2f", c.SimilarityWeight, c.RatingWeight)
	}
	if c.SimilarityWeight+c.RatingWeight <= 0 {
		return fmt.Errorf("blend weights must not both be zero")
	}
	// Zero would make BayesianAverage divide by zero for unrated movies.
	if c.BayesPriorWeight <= 0 {
		return fmt.Errorf("bayes_prior_weight must be positive, got %.2f", c.BayesPriorWeight)
	}
	if c.Oversample < 1 {
		return fmt.Errorf("oversample must be at least 1, got %d", c.Oversample)
	}
	if c.MinCoRated < 1 {
		return fmt.Errorf("min_co_rated must be at least 1, got %d", c.MinCoRated)
	}
	switch c.UserSimilarity {
	case "pearson", "cosine":
	default:
		return fmt.Errorf("user_similarity must be pearson or cosine, got %q", c.UserSimilarity)
	}
	if c.MaxNeighbors < 1 {
		return fmt.Errorf("max_neighbors must be at least 1, got %d", c.MaxNeighbors)
	}
	if c.DefaultK < 1 {
		return fmt.Errorf("default_k must be at least 1, got %d", c.DefaultK)
	}
	if c.MaxK < c.DefaultK {
		return fmt.Errorf("max_k (%d) must be at least default_k (%d)", c.MaxK, c.DefaultK)
	}
	if c.MinRating <= 0 || c.MaxRating <= c.MinRating {
		return fmt.Errorf("rating scale [%.1f, %.1f] is invalid", c.MinRating, c.MaxRating)
	}
	return nil
}
