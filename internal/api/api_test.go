// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/kinoscope/kinoscope/internal/auth"
	"github.com/kinoscope/kinoscope/internal/config"
	"github.com/kinoscope/kinoscope/internal/recommend"
	"github.com/kinoscope/kinoscope/internal/store"
)

type testEnv struct {
	handler http.Handler
	store   *store.Store
	jwt     *auth.JWTManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8460, Timeout: 30 * time.Second},
		Database: config.DatabaseConfig{
			Path: ":memory:",
		},
		Security: config.SecurityConfig{
			JWTSecret:       "0123456789abcdef0123456789abcdef",
			TokenTTL:        time.Hour,
			BcryptCost:      10, // keep tests fast
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Recommend: config.RecommendConfig{Core: recommend.DefaultConfig(), RebuildInterval: time.Hour},
	}

	st, err := store.Open(context.Background(), cfg.Database)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	seedCatalog(t, st)

	svc, err := recommend.NewService(cfg.Recommend.Core, st, st, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	jwt, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	return &testEnv{
		handler: NewHandler(cfg, st, svc, jwt).Router(),
		store:   st,
		jwt:     jwt,
	}
}

func seedCatalog(t *testing.T, st *store.Store) {
	t.Helper()
	movies := []recommend.Movie{
		{ID: 1, Title: "The Long Heist", Genres: []string{"Crime", "Thriller"}, Keywords: []string{"heist"}, Cast: []string{"M. Keaton"}, Directors: []string{"S. Lund"}, Overview: "a veteran thief plans one final heist", Year: 1995},
		{ID: 2, Title: "City of Glass", Genres: []string{"Crime", "Thriller"}, Keywords: []string{"heist"}, Cast: []string{"M. Keaton"}, Directors: []string{"S. Lund"}, Overview: "an undercover detective and a diamond heist", Year: 1997},
		{ID: 3, Title: "Night Collector", Genres: []string{"Crime", "Drama"}, Overview: "a debt collector returns to the syndicate", Year: 2001},
		{ID: 4, Title: "Farther Suns", Genres: []string{"Science Fiction"}, Overview: "a lone astronaut drifts toward a dying star", Year: 2014},
	}
	for _, m := range movies {
		if err := st.InsertMovie(context.Background(), m); err != nil {
			t.Fatalf("InsertMovie: %v", err)
		}
	}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("decode data: %v (%s)", err, envelope.Data)
		}
	}
}

func (env *testEnv) signup(t *testing.T, email string) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": email, "name": "Test User", "password": "hunter2hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decodeData(t, rec, &resp)
	return resp.Token
}

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "ana@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "hunter2hunter2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "wrong password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status %d, want 401", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "ana@example.com", "name": "Dup", "password": "hunter2hunter2",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup status %d, want 409", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	paths := []string{
		"/api/v1/movies",
		"/api/v1/movies/1",
		"/api/v1/recommend/content/1",
		"/api/v1/recommend/collaborative",
	}
	for _, path := range paths {
		rec := env.do(t, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: status %d, want 401", path, rec.Code)
		}
	}

	rec := env.do(t, http.MethodGet, "/api/v1/movies", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status %d, want 401", rec.Code)
	}
}

func TestMovieEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "ben@example.com")

	rec := env.do(t, http.MethodGet, "/api/v1/movies?limit=2", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status %d: %s", rec.Code, rec.Body.String())
	}
	var movies []movieResponse
	decodeData(t, rec, &movies)
	if len(movies) != 2 || movies[0].ID != 1 {
		t.Fatalf("list = %+v", movies)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/movies/404", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown movie status %d, want 404", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/movies/search?q=glass", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search status %d", rec.Code)
	}
	decodeData(t, rec, &movies)
	if len(movies) != 1 || movies[0].ID != 2 {
		t.Fatalf("search = %+v", movies)
	}
}

func TestRateAndReadBack(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "cara@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/ratings", token, map[string]interface{}{
		"movie_id": 1, "rating": 4.5,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rate status %d: %s", rec.Code, rec.Body.String())
	}

	var movie movieResponse
	rec = env.do(t, http.MethodGet, "/api/v1/movies/1", token, nil)
	decodeData(t, rec, &movie)
	if movie.UserRating == nil || *movie.UserRating != 4.5 {
		t.Fatalf("user rating = %v, want 4.5", movie.UserRating)
	}

	// Off-scale and off-step values are rejected before persisting.
	for _, bad := range []float64{0.0, 5.5, 3.7} {
		rec = env.do(t, http.MethodPost, "/api/v1/ratings", token, map[string]interface{}{
			"movie_id": 1, "rating": bad,
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("rating %v: status %d, want 400", bad, rec.Code)
		}
	}

	rec = env.do(t, http.MethodPost, "/api/v1/ratings", token, map[string]interface{}{
		"movie_id": 404, "rating": 3.0,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown movie rating status %d, want 404", rec.Code)
	}
}

func TestRecommendEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "dee@example.com")

	var movies []movieResponse
	rec := env.do(t, http.MethodGet, "/api/v1/recommend/content/1?count=2", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("content status %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &movies)
	if len(movies) != 2 {
		t.Fatalf("content results = %d, want 2", len(movies))
	}
	for _, m := range movies {
		if m.ID == 1 {
			t.Fatal("subject movie recommended to itself")
		}
	}

	rec = env.do(t, http.MethodGet, "/api/v1/recommend/rating/1?count=2", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("rating status %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/v1/recommend/content/999", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown subject status %d, want 404", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/recommend/content/1?count=-3", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative count status %d, want 400", rec.Code)
	}
}

func TestRecommendLastEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "eli@example.com")

	// No ratings yet: nothing to anchor on.
	rec := env.do(t, http.MethodGet, "/api/v1/recommend/content/last", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("no history status %d, want 404", rec.Code)
	}

	env.do(t, http.MethodPost, "/api/v1/ratings", token, map[string]interface{}{
		"movie_id": 1, "rating": 5.0,
	})

	rec = env.do(t, http.MethodGet, "/api/v1/recommend/content/last?count=2", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("content/last status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		LatestMovie     movieResponse   `json:"latest_movie"`
		Recommendations []movieResponse `json:"recommendations"`
	}
	decodeData(t, rec, &resp)
	if resp.LatestMovie.ID != 1 {
		t.Fatalf("latest_movie.id = %d, want 1", resp.LatestMovie.ID)
	}
	if resp.LatestMovie.UserRating == nil || *resp.LatestMovie.UserRating != 5.0 {
		t.Fatalf("latest_movie.user_rating = %v, want 5.0", resp.LatestMovie.UserRating)
	}
	for _, m := range resp.Recommendations {
		if m.ID == 1 {
			t.Fatal("anchor movie recommended to itself")
		}
	}

	rec = env.do(t, http.MethodGet, "/api/v1/recommend/rating/last?count=2", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("rating/last status %d: %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &resp)
	if resp.LatestMovie.ID != 1 {
		t.Fatalf("rating/last latest_movie.id = %d, want 1", resp.LatestMovie.ID)
	}
}

func TestCollaborativeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice@example.com")
	bob := env.signup(t, "bob@example.com")

	// Alice rates widely; Bob shares three of her movies, qualifying as a
	// neighbor, and is missing movie 4.
	for movieID, rating := range map[int]float64{1: 5.0, 2: 4.0, 3: 1.5, 4: 4.5} {
		env.do(t, http.MethodPost, "/api/v1/ratings", alice, map[string]interface{}{
			"movie_id": movieID, "rating": rating,
		})
	}
	for movieID, rating := range map[int]float64{1: 4.5, 2: 4.0, 3: 2.0} {
		env.do(t, http.MethodPost, "/api/v1/ratings", bob, map[string]interface{}{
			"movie_id": movieID, "rating": rating,
		})
	}

	rec := env.do(t, http.MethodGet, "/api/v1/recommend/collaborative?count=5", bob, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("collaborative status %d: %s", rec.Code, rec.Body.String())
	}
	var movies []movieResponse
	decodeData(t, rec, &movies)
	if len(movies) != 1 || movies[0].ID != 4 {
		t.Fatalf("collaborative = %+v, want movie 4", movies)
	}
}

func TestRebuildEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup(t, "ops@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/recommend/rebuild", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("rebuild status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Movies int `json:"movies"`
	}
	decodeData(t, rec, &resp)
	if resp.Movies != 4 {
		t.Fatalf("rebuilt index size = %d, want 4", resp.Movies)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status %d", rec.Code)
	}
	var resp struct {
		IndexReady bool `json:"index_ready"`
	}
	decodeData(t, rec, &resp)
	if !resp.IndexReady {
		t.Fatal("index_ready = false after Start")
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID not set")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Fatalf("client request ID not honored: %q", got)
	}
}
