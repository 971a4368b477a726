// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package recommend

import (
	"math"
	"testing"
)

func TestVectorizeEmptyCatalog(t *testing.T) {
	t.Parallel()

	_, err := Vectorize(nil)
	if !IsInsufficientData(err) {
		t.Fatalf("want InsufficientDataError, got %v", err)
	}
}

func TestVectorizeDeterministic(t *testing.T) {
	t.Parallel()

	catalog := testCatalog()
	first, err := Vectorize(catalog)
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}

	// Same movies, reversed input order.
	reversed := make([]Movie, len(catalog))
	for i, m := range catalog {
		reversed[len(catalog)-1-i] = m
	}
	second, err := Vectorize(reversed)
	if err != nil {
		t.Fatalf("Vectorize reversed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("vector counts differ: %d vs %d", len(first), len(second))
	}
	for id, vec := range first {
		other := second[id]
		if len(vec) != len(other) {
			t.Fatalf("movie %d: dimensions differ: %d vs %d", id, len(vec), len(other))
		}
		for i := range vec {
			if vec[i] != other[i] {
				t.Fatalf("movie %d dim %d: %v vs %v", id, i, vec[i], other[i])
			}
		}
	}
}

func TestVectorizeSharedVocabulary(t *testing.T) {
	t.Parallel()

	vectors, err := Vectorize(testCatalog())
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}

	var dim int
	for _, vec := range vectors {
		if dim == 0 {
			dim = len(vec)
		}
		if len(vec) != dim {
			t.Fatalf("mixed dimensions: %d and %d", dim, len(vec))
		}
	}
	if dim == 0 {
		t.Fatal("vocabulary is empty")
	}
}

func TestVectorizeUnitLength(t *testing.T) {
	t.Parallel()

	vectors, err := Vectorize(testCatalog())
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}
	for id, vec := range vectors {
		var sum float64
		for _, v := range vec {
			sum += v * v
		}
		if math.Abs(math.Sqrt(sum)-1) > 1e-9 {
			t.Errorf("movie %d: norm %v, want 1", id, math.Sqrt(sum))
		}
	}
}

func TestVectorizeEmptyMetadata(t *testing.T) {
	t.Parallel()

	catalog := append(testCatalog(), Movie{ID: 99, Title: "Untitled"})
	vectors, err := Vectorize(catalog)
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}
	for _, v := range vectors[99] {
		if v != 0 {
			t.Fatal("movie without metadata should have a zero vector")
		}
	}
}

func TestVectorizeFieldPrefixes(t *testing.T) {
	t.Parallel()

	// "Drama" as a genre and "drama" in an overview must not collide.
	catalog := []Movie{
		{ID: 1, Genres: []string{"Drama"}},
		{ID: 2, Overview: "a courtroom drama unfolds"},
	}
	vectors, err := Vectorize(catalog)
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}
	if sim := dot(vectors[1], vectors[2]); sim != 0 {
		t.Fatalf("genre and overview tokens collided, similarity %v", sim)
	}
}

func TestVectorizeSimilarMoviesScoreHigher(t *testing.T) {
	t.Parallel()

	vectors, err := Vectorize(testCatalog())
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}
	crime := dot(vectors[1], vectors[2])
	cross := dot(vectors[1], vectors[5])
	if crime <= cross {
		t.Fatalf("crime pair %v should outscore crime/animation pair %v", crime, cross)
	}
}
