// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package recommend

// ContentRecommender ranks movies purely by metadata similarity to a
// subject movie. It reads the live index snapshot; ratings never
// influence its ordering.
type ContentRecommender struct {
	index *Index
}

// NewContentRecommender wires the recommender to a shared similarity index.
func NewContentRecommender(index *Index) *ContentRecommender {
	return &ContentRecommender{index: index}
}

// Recommend returns up to count movie IDs most similar to movieID, never
// including movieID itself. Fewer than count results means the catalog is
// simply that small.
func (r *ContentRecommender) Recommend(movieID int64, count int) ([]int64, error) {
	neighbors, err := r.index.TopK(movieID, count)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(neighbors))
	for i, n := range neighbors {
		out[i] = n.MovieID
	}
	return out, nil
}
