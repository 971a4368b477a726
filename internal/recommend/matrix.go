// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package recommend

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// MatrixStore holds the sparse user-movie rating matrix in memory with
// both orientations indexed, so user-row and movie-column lookups are both
// O(1). All read methods return copies; mutating a returned map never
// affects the store.
type MatrixStore struct {
	minRating float64
	maxRating float64

	mu      sync.RWMutex
	byUser  map[int64]map[int64]float64
	byMovie map[int64]map[int64]float64
	sum     float64
	count   int
}

// NewMatrixStore returns an empty matrix accepting ratings on half-point
// steps within [minRating, maxRating].
func NewMatrixStore(minRating, maxRating float64) *MatrixStore {
	return &MatrixStore{
		minRating: minRating,
		maxRating: maxRating,
		byUser:    make(map[int64]map[int64]float64),
		byMovie:   make(map[int64]map[int64]float64),
	}
}

// Upsert records or overwrites one user's rating of one movie. Re-rating
// replaces the previous value; a user holds at most one rating per movie.
func (s *MatrixStore) Upsert(userID, movieID int64, rating float64) error {
	if err := s.validate(rating); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.byUser[userID]
	if !ok {
		row = make(map[int64]float64)
		s.byUser[userID] = row
	}
	if prev, exists := row[movieID]; exists {
		s.sum -= prev
		s.count--
	}
	row[movieID] = rating

	col, ok := s.byMovie[movieID]
	if !ok {
		col = make(map[int64]float64)
		s.byMovie[movieID] = col
	}
	col[userID] = rating

	s.sum += rating
	s.count++
	return nil
}

// Load bulk-inserts entries, typically the persisted ratings at startup.
// It stops at the first invalid entry.
func (s *MatrixStore) Load(entries []RatingEntry) error {
	for _, e := range entries {
		if err := s.Upsert(e.UserID, e.MovieID, e.Rating); err != nil {
			return fmt.Errorf("load rating user=%d movie=%d: %w", e.UserID, e.MovieID, err)
		}
	}
	return nil
}

func (s *MatrixStore) validate(rating float64) error {
	if rating < s.minRating || rating > s.maxRating {
		return &ValidationError{
			Field:  "rating",
			Reason: fmt.Sprintf("%.2f outside [%.1f, %.1f]", rating, s.minRating, s.maxRating),
		}
	}
	if math.Abs(rating*2-math.Round(rating*2)) > 1e-9 {
		return &ValidationError{
			Field:  "rating",
			Reason: fmt.Sprintf("%.2f not on a half-point step", rating),
		}
	}
	return nil
}

// RatingsForUser returns a copy of one user's row: movie ID to rating.
// Unknown users get an empty map, not an error; presence checks belong to
// the caller.
func (s *MatrixStore) RatingsForUser(userID int64) map[int64]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRow(s.byUser[userID])
}

// RatingsForMovie returns a copy of one movie's column: user ID to rating.
func (s *MatrixStore) RatingsForMovie(movieID int64) map[int64]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRow(s.byMovie[movieID])
}

// UserIDs returns the users holding at least one rating, sorted ascending.
func (s *MatrixStore) UserIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.byUser)
}

// RatedMovieIDs returns the movies holding at least one rating, sorted
// ascending.
func (s *MatrixStore) RatedMovieIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.byMovie)
}

// RatingCount returns how many users rated movieID.
func (s *MatrixStore) RatingCount(movieID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byMovie[movieID])
}

// MeanRating returns movieID's plain mean rating, and false when nobody
// has rated it. Unlike BayesianAverage it applies no shrinkage.
func (s *MatrixStore) MeanRating(movieID int64) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col := s.byMovie[movieID]
	if len(col) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range col {
		sum += r
	}
	return sum / float64(len(col)), true
}

// GlobalMean returns the mean over every rating in the matrix, and false
// when the matrix is empty.
func (s *MatrixStore) GlobalMean() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.count == 0 {
		return 0, false
	}
	return s.sum / float64(s.count), true
}

// BayesianAverage returns movieID's mean rating shrunk toward the global
// mean by priorWeight pseudo-observations:
//
//	(C*m + sum(ratings)) / (C + n)
//
// A movie with no ratings returns the global mean itself, and 0 when the
// whole matrix is empty. The shrinkage keeps a single 5.0 from outranking
// a thousand 4.5s.
func (s *MatrixStore) BayesianAverage(movieID int64, priorWeight float64) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.count == 0 {
		return 0
	}
	global := s.sum / float64(s.count)
	col := s.byMovie[movieID]
	var sum float64
	for _, r := range col {
		sum += r
	}
	return (priorWeight*global + sum) / (priorWeight + float64(len(col)))
}

// RankByBayesianAverage returns every rated movie ordered by Bayesian
// average descending, ties broken by ascending ID. This is the popularity
// ranking the collaborative strategy falls back to for cold-start users.
func (s *MatrixStore) RankByBayesianAverage(priorWeight float64) []int64 {
	s.mu.RLock()
	ids := sortedKeys(s.byMovie)
	scores := make(map[int64]float64, len(ids))
	if s.count > 0 {
		global := s.sum / float64(s.count)
		for _, id := range ids {
			var sum float64
			col := s.byMovie[id]
			for _, r := range col {
				sum += r
			}
			scores[id] = (priorWeight*global + sum) / (priorWeight + float64(len(col)))
		}
	}
	s.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool {
		si, sj := scores[ids[i]], scores[ids[j]]
		if si != sj {
			return si > sj
		}
		return ids[i] < ids[j]
	})
	return ids
}

func copyRow(row map[int64]float64) map[int64]float64 {
	out := make(map[int64]float64, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[int64]map[int64]float64) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
