// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kinoscope/kinoscope/internal/logging"
	"github.com/kinoscope/kinoscope/internal/metrics"
	"github.com/kinoscope/kinoscope/internal/recommend"
)

// RecommendContent returns metadata-similar movies for the movie in the
// path.
func (h *Handler) RecommendContent(w http.ResponseWriter, r *http.Request) {
	h.recommendForMovie(w, r, recommend.StrategyContent)
}

// RecommendRating returns similar movies re-ranked by community rating.
func (h *Handler) RecommendRating(w http.ResponseWriter, r *http.Request) {
	h.recommendForMovie(w, r, recommend.StrategyRating)
}

// RecommendContentLast anchors a content recommendation on the caller's
// most recently rated movie.
func (h *Handler) RecommendContentLast(w http.ResponseWriter, r *http.Request) {
	h.recommendForLast(w, r, recommend.StrategyContent)
}

// RecommendRatingLast anchors a rating-weighted recommendation on the
// caller's most recently rated movie.
func (h *Handler) RecommendRatingLast(w http.ResponseWriter, r *http.Request) {
	h.recommendForLast(w, r, recommend.StrategyRating)
}

// RecommendCollaborative recommends for the authenticated user via
// user-based collaborative filtering.
func (h *Handler) RecommendCollaborative(w http.ResponseWriter, r *http.Request) {
	h.serveRecommendation(w, r, recommend.Request{
		Strategy:  recommend.StrategyCollaborative,
		SubjectID: userID(r),
		Count:     getIntParam(r, "count", 0),
	})
}

// RebuildIndex triggers a similarity index rebuild. Concurrent triggers
// coalesce onto one build.
func (h *Handler) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	err := h.svc.RebuildIndex(r.Context())
	metrics.ObserveRebuild(err, time.Since(start), h.svc.IndexSize())
	if err != nil {
		if recommend.IsInsufficientData(err) {
			respondRecommendError(w, err)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL", "index rebuild failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"movies": h.svc.IndexSize(),
	}, 0)
}

func (h *Handler) recommendForMovie(w http.ResponseWriter, r *http.Request, strategy recommend.Strategy) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "movie ID must be an integer", nil)
		return
	}
	h.serveRecommendation(w, r, recommend.Request{
		Strategy:  strategy,
		SubjectID: movieID,
		Count:     getIntParam(r, "count", 0),
	})
}

// lastResponse pairs the anchor movie with its recommendations, the
// shape the "recommend for what I watched last" flow expects.
type lastResponse struct {
	LatestMovie     movieResponse   `json:"latest_movie"`
	Recommendations []movieResponse `json:"recommendations"`
}

func (h *Handler) recommendForLast(w http.ResponseWriter, r *http.Request, strategy recommend.Strategy) {
	movieID, err := h.store.LatestRatedMovieID(r.Context(), userID(r))
	if err != nil {
		if recommend.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "no rated movies yet", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL", "lookup failed", err)
		return
	}

	anchor, err := h.store.GetMovie(r.Context(), movieID, userID(r))
	if err != nil {
		respondRecommendError(w, err)
		return
	}
	movies, ok := h.fetchRecommendations(w, r, recommend.Request{
		Strategy:  strategy,
		SubjectID: movieID,
		Count:     getIntParam(r, "count", 0),
	})
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, lastResponse{
		LatestMovie:     toMovieResponse(anchor),
		Recommendations: movies,
	}, len(movies))
}

// serveRecommendation runs the query, resolves IDs to catalog metadata,
// and replies with full movie records in recommendation order.
func (h *Handler) serveRecommendation(w http.ResponseWriter, r *http.Request, req recommend.Request) {
	movies, ok := h.fetchRecommendations(w, r, req)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, movies, len(movies))
}

// fetchRecommendations runs the query and hydrates the resulting IDs.
// On failure it has already written the error response and reports false.
func (h *Handler) fetchRecommendations(w http.ResponseWriter, r *http.Request, req recommend.Request) ([]movieResponse, bool) {
	start := time.Now()
	ids, err := h.svc.Recommend(r.Context(), req)
	metrics.ObserveRecommend(req.Strategy.String(), outcomeLabel(err), time.Since(start))
	if err != nil {
		respondRecommendError(w, err)
		return nil, false
	}

	movies, err := h.store.GetMoviesByIDs(r.Context(), ids, userID(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "metadata lookup failed", err)
		return nil, false
	}
	logging.Debug().
		Str("strategy", req.Strategy.String()).
		Int64("subject", req.SubjectID).
		Int("results", len(movies)).
		Msg("recommendation served")
	return toMovieResponses(movies), true
}
