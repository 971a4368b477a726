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

	"github.com/kinoscope/kinoscope/internal/recommend"
)

// UpsertRating persists one rating, replacing any previous rating by the
// same user for the same movie. Scale validation happens in the core; the
// store only checks referential targets exist.
func (s *Store) UpsertRating(ctx context.Context, userID, movieID int64, rating float64) error {
	exists, err := s.MovieExists(ctx, movieID)
	if err != nil {
		return err
	}
	if !exists {
		return &recommend.NotFoundError{Kind: "movie", ID: movieID}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ratings (user_id, movie_id, rating)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			rating = excluded.rating,
			rated_at = current_timestamp`,
		userID, movieID, rating,
	)
	if err != nil {
		return fmt.Errorf("upsert rating user=%d movie=%d: %w", userID, movieID, err)
	}
	return nil
}

// FetchRatings implements recommend.RatingSource, returning every
// persisted rating for the matrix warm-up at startup.
func (s *Store) FetchRatings(ctx context.Context) ([]recommend.RatingEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, movie_id, rating FROM ratings`)
	if err != nil {
		return nil, fmt.Errorf("fetch ratings: %w", err)
	}
	defer rows.Close()

	var out []recommend.RatingEntry
	for rows.Next() {
		var e recommend.RatingEntry
		if err := rows.Scan(&e.UserID, &e.MovieID, &e.Rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return out, nil
}

// LatestRatedMovieID returns the movie the user rated most recently,
// which anchors the "more like my last movie" recommendation endpoints.
func (s *Store) LatestRatedMovieID(ctx context.Context, userID int64) (int64, error) {
	var movieID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT movie_id FROM ratings
		WHERE user_id = ?
		ORDER BY rated_at DESC, movie_id DESC
		LIMIT 1`,
		userID,
	).Scan(&movieID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &recommend.NotFoundError{Kind: "user", ID: userID}
	}
	if err != nil {
		return 0, fmt.Errorf("latest rated movie for user %d: %w", userID, err)
	}
	return movieID, nil
}
