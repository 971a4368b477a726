// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package api provides the Kinoscope HTTP surface on the chi router:
// authentication, catalog browsing, rating submission, and the
// recommendation endpoints.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kinoscope/kinoscope/internal/auth"
	"github.com/kinoscope/kinoscope/internal/config"
	"github.com/kinoscope/kinoscope/internal/recommend"
	"github.com/kinoscope/kinoscope/internal/store"
)

// Handler bundles the dependencies the endpoints need.
type Handler struct {
	cfg   *config.Config
	store *store.Store
	svc   *recommend.Service
	jwt   *auth.JWTManager
}

// NewHandler wires the HTTP handlers.
func NewHandler(cfg *config.Config, st *store.Store, svc *recommend.Service, jwt *auth.JWTManager) *Handler {
	return &Handler{cfg: cfg, store: st, svc: svc, jwt: jwt}
}

// Router assembles the full route tree. Everything under /api/v1 except
// the auth endpoints requires a valid bearer token.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		// Tight limit on credential endpoints.
		r.Use(httprate.LimitByIP(10, h.cfg.Security.RateLimitWindow))
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(h.cfg.Security.RateLimitReqs, h.cfg.Security.RateLimitWindow))
		r.Use(httpMetrics)
		r.Use(h.authenticate)

		r.Get("/movies", h.ListMovies)
		r.Get("/movies/search", h.SearchMovies)
		r.Get("/movies/{movieID}", h.GetMovie)
		r.Post("/ratings", h.RateMovie)

		r.Route("/recommend", func(r chi.Router) {
			r.Get("/content/last", h.RecommendContentLast)
			r.Get("/content/{movieID}", h.RecommendContent)
			r.Get("/rating/last", h.RecommendRatingLast)
			r.Get("/rating/{movieID}", h.RecommendRating)
			r.Get("/collaborative", h.RecommendCollaborative)
			r.Post("/rebuild", h.RebuildIndex)
		})
	})

	return r
}
