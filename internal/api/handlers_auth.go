// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kinoscope/kinoscope/internal/auth"
	"github.com/kinoscope/kinoscope/internal/logging"
	"github.com/kinoscope/kinoscope/internal/store"
)

var validate = validator.New()

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

// Signup registers a new account and returns an access token.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body", err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.cfg.Security.BcryptCost)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	u, err := h.store.CreateUser(r.Context(), email, strings.TrimSpace(req.Name), hash)
	if errors.Is(err, store.ErrEmailTaken) {
		respondError(w, http.StatusConflict, "EMAIL_TAKEN", "email already registered", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "signup failed", err)
		return
	}

	logging.Info().Int64("user_id", u.ID).Msg("user registered")
	h.respondToken(w, http.StatusCreated, u)
}

// Login verifies credentials and returns an access token. Unknown email
// and wrong password are indistinguishable to the caller.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body", err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	u, err := h.store.GetUserByEmail(r.Context(), email)
	if errors.Is(err, store.ErrUserNotFound) || (err == nil && !auth.CheckPassword(u.PasswordHash, req.Password)) {
		respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "login failed", err)
		return
	}

	h.respondToken(w, http.StatusOK, u)
}

func (h *Handler) respondToken(w http.ResponseWriter, status int, u store.User) {
	token, err := h.jwt.GenerateToken(u.ID, u.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL", "token generation failed", err)
		return
	}
	resp := tokenResponse{Token: token}
	resp.User.ID = u.ID
	resp.User.Email = u.Email
	resp.User.Name = u.Name
	respondJSON(w, status, resp, 0)
}
