// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/kinoscope/kinoscope/internal/logging"
	"github.com/kinoscope/kinoscope/internal/recommend"
	"github.com/kinoscope/kinoscope/internal/store"
)

// APIResponse is the uniform envelope every endpoint returns.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response bookkeeping.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count,omitempty"`
}

// APIError is the machine-readable error body.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}, count int) {
	w.Header().Set("Content-Type", "application/json")
	body, err := json.Marshal(&APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: Metadata{Timestamp: time.Now(), Count: count},
	})
	if err != nil {
		logging.Error().Err(err).Msg("marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Error().Err(err).Msg("write response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil && status >= http.StatusInternalServerError {
		logging.Error().Err(err).Str("code", code).Msg("api error")
	}
	w.Header().Set("Content-Type", "application/json")
	body, merr := json.Marshal(&APIResponse{
		Status:   "error",
		Metadata: Metadata{Timestamp: time.Now()},
		Error:    &APIError{Code: code, Message: message},
	})
	if merr != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// respondRecommendError maps the core's error taxonomy onto HTTP.
func respondRecommendError(w http.ResponseWriter, err error) {
	switch {
	case recommend.IsNotFound(err):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), err)
	case recommend.IsValidation(err):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), err)
	case recommend.IsInsufficientData(err):
		respondError(w, http.StatusServiceUnavailable, "INSUFFICIENT_DATA", err.Error(), err)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal error", err)
	}
}

// outcomeLabel classifies an error for the recommendation metrics.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case recommend.IsNotFound(err):
		return "not_found"
	case recommend.IsValidation(err):
		return "invalid"
	case recommend.IsInsufficientData(err):
		return "insufficient_data"
	default:
		return "error"
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// movieResponse is the wire shape of a catalog entry. UserRating is null
// when the authenticated user has not rated the movie.
type movieResponse struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Genres     []string `json:"genres"`
	Keywords   []string `json:"keywords"`
	Cast       []string `json:"cast"`
	Directors  []string `json:"directors"`
	Overview   string   `json:"overview"`
	Year       int      `json:"year"`
	UserRating *float64 `json:"user_rating"`
}

func toMovieResponse(m store.RatedMovie) movieResponse {
	return movieResponse{
		ID:         m.ID,
		Title:      m.Title,
		Genres:     emptyIfNil(m.Genres),
		Keywords:   emptyIfNil(m.Keywords),
		Cast:       emptyIfNil(m.Cast),
		Directors:  emptyIfNil(m.Directors),
		Overview:   m.Overview,
		Year:       m.Year,
		UserRating: m.UserRating,
	}
}

func toMovieResponses(movies []store.RatedMovie) []movieResponse {
	out := make([]movieResponse, len(movies))
	for i, m := range movies {
		out[i] = toMovieResponse(m)
	}
	return out
}

// emptyIfNil keeps JSON arrays as [] instead of null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
