// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package recommend

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// testCatalog is a small fixture with deliberate metadata structure:
// 1, 2, 3 are crime films sharing cast, 4 is a space drama, 5 is an
// animated family film with nothing in common with the others.
func testCatalog() []Movie {
	return []Movie{
		{
			ID: 1, Title: "The Long Heist", Year: 1995,
			Genres:    []string{"Crime", "Thriller"},
			Keywords:  []string{"heist", "betrayal"},
			Cast:      []string{"M. Keaton", "A. Torres"},
			Directors: []string{"S. Lund"},
			Overview:  "A veteran thief plans one final heist against a rival syndicate.",
		},
		{
			ID: 2, Title: "City of Glass", Year: 1997,
			Genres:    []string{"Crime", "Thriller"},
			Keywords:  []string{"heist", "undercover"},
			Cast:      []string{"M. Keaton", "J. Okafor"},
			Directors: []string{"S. Lund"},
			Overview:  "An undercover detective infiltrates the syndicate behind a diamond heist.",
		},
		{
			ID: 3, Title: "Night Collector", Year: 2001,
			Genres:    []string{"Crime", "Drama"},
			Keywords:  []string{"betrayal"},
			Cast:      []string{"A. Torres"},
			Directors: []string{"P. Moreau"},
			Overview:  "A debt collector is drawn into the syndicate he once escaped.",
		},
		{
			ID: 4, Title: "Farther Suns", Year: 2014,
			Genres:    []string{"Science Fiction", "Drama"},
			Keywords:  []string{"space", "isolation"},
			Cast:      []string{"R. Chen"},
			Directors: []string{"I. Novak"},
			Overview:  "A lone astronaut drifts toward a dying star and an impossible choice.",
		},
		{
			ID: 5, Title: "Pip and the Paper Boat", Year: 2019,
			Genres:    []string{"Animation", "Family"},
			Keywords:  []string{"friendship"},
			Cast:      []string{"voice ensemble"},
			Directors: []string{"T. Abe"},
			Overview:  "A paper boat carries a mouse across the pond to find a lost friend.",
		},
	}
}

// builtIndex vectorizes the catalog and returns a published index.
func builtIndex(t interface{ Fatalf(string, ...interface{}) }, catalog []Movie, maxNeighbors int) *Index {
	vectors, err := Vectorize(catalog)
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}
	ix := NewIndex(maxNeighbors)
	ix.Rebuild(vectors)
	return ix
}

type mockCatalog struct {
	movies []Movie
	err    error
	calls  atomic.Int64
}

func (m *mockCatalog) FetchCatalog(_ context.Context) ([]Movie, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.movies, nil
}

type mockRatings struct {
	entries []RatingEntry
	err     error
}

func (m *mockRatings) FetchRatings(_ context.Context) ([]RatingEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
