// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package recommend

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Index answers movie-to-movie similarity queries against an immutable
// snapshot of precomputed neighbor lists. Rebuild constructs a complete new
// snapshot off to the side and publishes it with a single atomic pointer
// swap, so readers are never blocked and never see partial state.
type Index struct {
	maxNeighbors int
	snap         atomic.Pointer[indexSnapshot]
	buildMu      sync.Mutex
}

type indexSnapshot struct {
	vectors   map[int64]FeatureVector
	neighbors map[int64]NeighborList
	ids       []int64
}

// NewIndex returns an empty index. Queries against it fail with
// InsufficientDataError until the first Rebuild completes.
func NewIndex(maxNeighbors int) *Index {
	if maxNeighbors < 1 {
		maxNeighbors = 1
	}
	return &Index{maxNeighbors: maxNeighbors}
}

// Rebuild computes pairwise cosine similarities over the given vectors and
// atomically publishes the result. The build is serialized: a second caller
// blocks until the running build finishes, then builds again. Callers that
// want coalescing instead of queueing wrap Rebuild in a singleflight group,
// which Service does.
func (ix *Index) Rebuild(vectors map[int64]FeatureVector) {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	ids := make([]int64, 0, len(vectors))
	for id := range vectors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	snap := &indexSnapshot{
		vectors:   vectors,
		neighbors: make(map[int64]NeighborList, len(ids)),
		ids:       ids,
	}
	for _, id := range ids {
		list := make(NeighborList, 0, len(ids)-1)
		for _, other := range ids {
			if other == id {
				continue
			}
			list = append(list, Neighbor{MovieID: other, Score: dot(vectors[id], vectors[other])})
		}
		sortNeighbors(list)
		if len(list) > ix.maxNeighbors {
			list = list[:ix.maxNeighbors]
		}
		snap.neighbors[id] = list
	}
	ix.snap.Store(snap)
}

// Ready reports whether at least one Rebuild has been published.
func (ix *Index) Ready() bool {
	return ix.snap.Load() != nil
}

// Size returns the number of movies in the current snapshot.
func (ix *Index) Size() int {
	snap := ix.snap.Load()
	if snap == nil {
		return 0
	}
	return len(snap.ids)
}

// TopK returns up to k neighbors of movieID ordered by similarity
// descending, ties broken by ascending movie ID. The subject itself is
// never included. The returned slice is owned by the caller.
func (ix *Index) TopK(movieID int64, k int) (NeighborList, error) {
	snap := ix.snap.Load()
	if snap == nil {
		return nil, &InsufficientDataError{Reason: "similarity index not built"}
	}
	precomputed, ok := snap.neighbors[movieID]
	if !ok {
		return nil, &NotFoundError{Kind: "movie", ID: movieID}
	}
	if k <= 0 {
		return NeighborList{}, nil
	}

	// Requests beyond the precomputed cap fall back to a full scan. This is
	// rare: the cap is sized above MaxK times the oversampling factor in
	// any sane configuration.
	if k > len(precomputed) && len(snap.ids)-1 > len(precomputed) {
		subject := snap.vectors[movieID]
		full := make(NeighborList, 0, len(snap.ids)-1)
		for _, other := range snap.ids {
			if other == movieID {
				continue
			}
			full = append(full, Neighbor{MovieID: other, Score: dot(subject, snap.vectors[other])})
		}
		sortNeighbors(full)
		precomputed = full
	}

	if k > len(precomputed) {
		k = len(precomputed)
	}
	out := make(NeighborList, k)
	copy(out, precomputed[:k])
	return out, nil
}

// Score returns the cosine similarity between two movies in the current
// snapshot. It exists for diagnostics and tests; the ranking paths use the
// precomputed lists.
func (ix *Index) Score(a, b int64) (float64, error) {
	snap := ix.snap.Load()
	if snap == nil {
		return 0, &InsufficientDataError{Reason: "similarity index not built"}
	}
	va, ok := snap.vectors[a]
	if !ok {
		return 0, &NotFoundError{Kind: "movie", ID: a}
	}
	vb, ok := snap.vectors[b]
	if !ok {
		return 0, &NotFoundError{Kind: "movie", ID: b}
	}
	return dot(va, vb), nil
}

// Contains reports whether movieID is present in the current snapshot.
func (ix *Index) Contains(movieID int64) bool {
	snap := ix.snap.Load()
	if snap == nil {
		return false
	}
	_, ok := snap.neighbors[movieID]
	return ok
}

func sortNeighbors(list NeighborList) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		return list[i].MovieID < list[j].MovieID
	})
}

// dot assumes both vectors are L2-normalized, making this the cosine
// similarity. Mismatched lengths cannot happen within one snapshot.
func dot(a, b FeatureVector) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
