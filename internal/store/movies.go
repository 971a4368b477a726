// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kinoscope/kinoscope/internal/recommend"
)

// RatedMovie pairs catalog metadata with the requesting user's own rating,
// nil when the user has not rated the movie. Listings for anonymous
// callers always carry nil.
type RatedMovie struct {
	recommend.Movie
	UserRating *float64
}

const movieColumns = `m.id, m.title, m.genres, m.keywords, m.cast_list, m.directors, m.overview, m.year`

// InsertMovie adds or replaces one catalog entry. Catalog writes are
// administrative; the similarity index picks them up on the next rebuild.
func (s *Store) InsertMovie(ctx context.Context, m recommend.Movie) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO movies (id, title, genres, keywords, cast_list, directors, overview, year)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			genres = excluded.genres,
			keywords = excluded.keywords,
			cast_list = excluded.cast_list,
			directors = excluded.directors,
			overview = excluded.overview,
			year = excluded.year`,
		m.ID, m.Title, joinList(m.Genres), joinList(m.Keywords),
		joinList(m.Cast), joinList(m.Directors), m.Overview, m.Year,
	)
	if err != nil {
		return fmt.Errorf("insert movie %d: %w", m.ID, err)
	}
	return nil
}

// GetMovie returns one movie with userID's rating attached. Pass userID 0
// for anonymous access.
func (s *Store) GetMovie(ctx context.Context, movieID, userID int64) (RatedMovie, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+movieColumns+`, r.rating
		FROM movies m
		LEFT JOIN ratings r ON r.movie_id = m.id AND r.user_id = ?
		WHERE m.id = ?`,
		userID, movieID,
	)
	m, err := scanRatedMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RatedMovie{}, &recommend.NotFoundError{Kind: "movie", ID: movieID}
	}
	if err != nil {
		return RatedMovie{}, fmt.Errorf("get movie %d: %w", movieID, err)
	}
	return m, nil
}

// GetMoviesByIDs resolves metadata for ids, preserving the input order.
// IDs absent from the catalog are skipped; recommendation results may
// momentarily reference movies deleted since the last index rebuild.
func (s *Store) GetMoviesByIDs(ctx context.Context, ids []int64, userID int64) ([]RatedMovie, error) {
	if len(ids) == 0 {
		return []RatedMovie{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+movieColumns+`, r.rating
		FROM movies m
		LEFT JOIN ratings r ON r.movie_id = m.id AND r.user_id = ?
		WHERE m.id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("get movies by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]RatedMovie, len(ids))
	for rows.Next() {
		m, err := scanRatedMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		byID[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}

	out := make([]RatedMovie, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// ListMovies pages through the catalog ordered by ID.
func (s *Store) ListMovies(ctx context.Context, limit, offset int, userID int64) ([]RatedMovie, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+movieColumns+`, r.rating
		FROM movies m
		LEFT JOIN ratings r ON r.movie_id = m.id AND r.user_id = ?
		ORDER BY m.id
		LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()
	return collectRatedMovies(rows)
}

// SearchByTitle returns movies whose title contains the query,
// case-insensitively, ordered by ID.
func (s *Store) SearchByTitle(ctx context.Context, query string, limit int, userID int64) ([]RatedMovie, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+movieColumns+`, r.rating
		FROM movies m
		LEFT JOIN ratings r ON r.movie_id = m.id AND r.user_id = ?
		WHERE m.title ILIKE '%' || ? || '%'
		ORDER BY m.id
		LIMIT ?`,
		userID, query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search movies %q: %w", query, err)
	}
	defer rows.Close()
	return collectRatedMovies(rows)
}

// MovieExists reports whether movieID is in the catalog.
func (s *Store) MovieExists(ctx context.Context, movieID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, movieID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("movie exists %d: %w", movieID, err)
	}
	return true, nil
}

// FetchCatalog implements recommend.CatalogSource. The whole catalog is
// returned; the core snapshots it during vectorization.
func (s *Store) FetchCatalog(ctx context.Context) ([]recommend.Movie, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, genres, keywords, cast_list, directors, overview, year
		FROM movies ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer rows.Close()

	var out []recommend.Movie
	for rows.Next() {
		var m recommend.Movie
		var genres, keywords, cast, directors string
		if err := rows.Scan(&m.ID, &m.Title, &genres, &keywords, &cast, &directors, &m.Overview, &m.Year); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		m.Genres = splitList(genres)
		m.Keywords = splitList(keywords)
		m.Cast = splitList(cast)
		m.Directors = splitList(directors)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRatedMovie(row rowScanner) (RatedMovie, error) {
	var m RatedMovie
	var genres, keywords, cast, directors string
	var rating sql.NullFloat64
	if err := row.Scan(&m.ID, &m.Title, &genres, &keywords, &cast, &directors, &m.Overview, &m.Year, &rating); err != nil {
		return RatedMovie{}, err
	}
	m.Genres = splitList(genres)
	m.Keywords = splitList(keywords)
	m.Cast = splitList(cast)
	m.Directors = splitList(directors)
	if rating.Valid {
		m.UserRating = &rating.Float64
	}
	return m, nil
}

func collectRatedMovies(rows *sql.Rows) ([]RatedMovie, error) {
	out := []RatedMovie{}
	for rows.Next() {
		m, err := scanRatedMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return out, nil
}
