// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package recommend

import (
	"math"
	"sort"
)

// CollaborativeRecommender implements user-based neighborhood
// collaborative filtering: find users whose rating history overlaps the
// subject's, weight their opinions by similarity, and rank the movies the
// subject has not seen. A user with no ratings falls back to the
// popularity ranking.
type CollaborativeRecommender struct {
	matrix *MatrixStore
	cfg    Config
}

// NewCollaborativeRecommender wires the recommender to the shared rating
// matrix.
func NewCollaborativeRecommender(matrix *MatrixStore, cfg Config) *CollaborativeRecommender {
	return &CollaborativeRecommender{matrix: matrix, cfg: cfg}
}

// Recommend returns up to count movie IDs predicted to appeal to userID,
// excluding everything the user has already rated. Cold-start users get
// the catalog's Bayesian popularity ranking instead; if the whole matrix
// is empty too, the user is effectively unknown to the system and a
// NotFoundError is returned.
func (r *CollaborativeRecommender) Recommend(userID int64, count int) ([]int64, error) {
	mine := r.matrix.RatingsForUser(userID)
	if len(mine) == 0 {
		ranked := r.matrix.RankByBayesianAverage(r.cfg.BayesPriorWeight)
		if len(ranked) == 0 {
			return nil, &NotFoundError{Kind: "user", ID: userID}
		}
		if count > len(ranked) {
			count = len(ranked)
		}
		out := make([]int64, count)
		copy(out, ranked[:count])
		return out, nil
	}

	// Similarity to every other user with enough co-rated movies.
	type neighbor struct {
		id  int64
		sim float64
	}
	var neighbors []neighbor
	for _, other := range r.matrix.UserIDs() {
		if other == userID {
			continue
		}
		theirs := r.matrix.RatingsForUser(other)
		sim, cooRated := r.similarity(mine, theirs)
		if cooRated < r.cfg.MinCoRated || sim <= 0 {
			continue
		}
		neighbors = append(neighbors, neighbor{id: other, sim: sim})
	}

	// Predicted score per unseen movie: similarity-weighted average of
	// neighbor ratings.
	type prediction struct {
		num float64
		den float64
	}
	preds := make(map[int64]*prediction)
	for _, nb := range neighbors {
		for movieID, rating := range r.matrix.RatingsForUser(nb.id) {
			if _, seen := mine[movieID]; seen {
				continue
			}
			p, ok := preds[movieID]
			if !ok {
				p = &prediction{}
				preds[movieID] = p
			}
			p.num += nb.sim * rating
			p.den += nb.sim
		}
	}

	type scored struct {
		id    int64
		score float64
	}
	ranked := make([]scored, 0, len(preds))
	for id, p := range preds {
		if p.den == 0 {
			continue
		}
		ranked = append(ranked, scored{id: id, score: p.num / p.den})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})

	if count > len(ranked) {
		count = len(ranked)
	}
	out := make([]int64, count)
	for i := 0; i < count; i++ {
		out[i] = ranked[i].id
	}
	return out, nil
}

// similarity computes the configured user-user similarity over the movies
// both users rated, returning the score and the co-rated count. Fewer than
// two common movies always yields zero.
func (r *CollaborativeRecommender) similarity(a, b map[int64]float64) (float64, int) {
	var common []int64
	for id := range a {
		if _, ok := b[id]; ok {
			common = append(common, id)
		}
	}
	if len(common) < 2 {
		return 0, len(common)
	}

	switch r.cfg.UserSimilarity {
	case "cosine":
		var num, denA, denB float64
		for _, id := range common {
			num += a[id] * b[id]
			denA += a[id] * a[id]
			denB += b[id] * b[id]
		}
		if denA == 0 || denB == 0 {
			return 0, len(common)
		}
		return num / (math.Sqrt(denA) * math.Sqrt(denB)), len(common)
	default: // pearson
		n := float64(len(common))
		var meanA, meanB float64
		for _, id := range common {
			meanA += a[id]
			meanB += b[id]
		}
		meanA /= n
		meanB /= n

		var num, denA, denB float64
		for _, id := range common {
			da, db := a[id]-meanA, b[id]-meanB
			num += da * db
			denA += da * da
			denB += db * db
		}
		if denA == 0 || denB == 0 {
			// Flat rating pattern carries no correlation signal.
			return 0, len(common)
		}
		return num / (math.Sqrt(denA) * math.Sqrt(denB)), len(common)
	}
}
