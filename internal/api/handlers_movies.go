// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kinoscope/kinoscope/internal/metrics"
	"github.com/kinoscope/kinoscope/internal/recommend"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListMovies pages through the catalog with the caller's ratings joined in.
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := getIntParam(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	movies, err := h.store.ListMovies(r.Context(), limit, offset, userID(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "listing failed", err)
		return
	}
	respondJSON(w, http.StatusOK, toMovieResponses(movies), len(movies))
}

// GetMovie returns one catalog entry with the caller's rating joined in.
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "movie ID must be an integer", nil)
		return
	}

	movie, err := h.store.GetMovie(r.Context(), movieID, userID(r))
	if err != nil {
		respondRecommendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toMovieResponse(movie), 1)
}

// SearchMovies matches titles case-insensitively against the q parameter.
func (h *Handler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "query parameter q is required", nil)
		return
	}
	limit := getIntParam(r, "limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	movies, err := h.store.SearchByTitle(r.Context(), query, limit, userID(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "search failed", err)
		return
	}
	respondJSON(w, http.StatusOK, toMovieResponses(movies), len(movies))
}

type rateRequest struct {
	MovieID int64   `json:"movie_id" validate:"required"`
	Rating  float64 `json:"rating" validate:"required"`
}

// RateMovie persists the caller's rating and mirrors it into the live
// rating matrix so the collaborative strategy sees it immediately.
func (h *Handler) RateMovie(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body", err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	uid := userID(r)

	// Check the target and the value before writing anywhere, then
	// persist before mirroring into the matrix. A failed database write
	// must leave the matrix untouched: the matrix is rebuilt from the
	// database at startup, so it may only ever hold persisted ratings.
	exists, err := h.store.MovieExists(r.Context(), req.MovieID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "rating not saved", err)
		return
	}
	if !exists {
		respondRecommendError(w, &recommend.NotFoundError{Kind: "movie", ID: req.MovieID})
		return
	}
	if err := h.svc.ValidateRating(req.Rating); err != nil {
		respondRecommendError(w, err)
		return
	}
	if err := h.store.UpsertRating(r.Context(), uid, req.MovieID, req.Rating); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "rating not saved", err)
		return
	}
	if err := h.svc.UpsertRating(uid, req.MovieID, req.Rating); err != nil {
		// Validation already passed, so this cannot fail; surface it
		// rather than silently desynchronizing.
		respondError(w, http.StatusInternalServerError, "INTERNAL", "rating not mirrored", err)
		return
	}

	metrics.RatingsIngested.Inc()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"movie_id": req.MovieID,
		"rating":   req.Rating,
	}, 1)
}
