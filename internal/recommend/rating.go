// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package recommend

import "sort"

// RatingRecommender re-ranks content-similar candidates by blending
// similarity with the community's Bayesian-adjusted opinion. It
// oversamples the similarity index so a well-rated movie just outside the
// raw top-k can still make the final cut.
type RatingRecommender struct {
	index  *Index
	matrix *MatrixStore
	cfg    Config
}

// NewRatingRecommender wires the recommender to the shared index and
// rating matrix.
func NewRatingRecommender(index *Index, matrix *MatrixStore, cfg Config) *RatingRecommender {
	return &RatingRecommender{index: index, matrix: matrix, cfg: cfg}
}

// Recommend returns up to count movie IDs similar to movieID, ordered by
// the blended score
//
//	similarity*W1 + (bayesianAverage/maxRating)*W2
//
// with ties broken by ascending ID. The Bayesian term is scaled into
// [0, 1] so the two components blend on comparable footing.
func (r *RatingRecommender) Recommend(movieID int64, count int) ([]int64, error) {
	pool := count * r.cfg.Oversample
	neighbors, err := r.index.TopK(movieID, pool)
	if err != nil {
		return nil, err
	}

	type blended struct {
		id    int64
		score float64
	}
	cands := make([]blended, len(neighbors))
	for i, n := range neighbors {
		bayes := r.matrix.BayesianAverage(n.MovieID, r.cfg.BayesPriorWeight)
		cands[i] = blended{
			id:    n.MovieID,
			score: n.Score*r.cfg.SimilarityWeight + (bayes/r.cfg.MaxRating)*r.cfg.RatingWeight,
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].id < cands[j].id
	})

	if count > len(cands) {
		count = len(cands)
	}
	out := make([]int64, count)
	for i := 0; i < count; i++ {
		out[i] = cands[i].id
	}
	return out, nil
}
