// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/kinoscope/kinoscope/internal/config"
)

func testManager(t *testing.T, ttl time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret: "0123456789abcdef0123456789abcdef",
		TokenTTL:  ttl,
	})
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	return m
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTManager(&config.SecurityConfig{}); err == nil {
		t.Fatal("empty secret accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	m := testManager(t, time.Hour)
	token, err := m.GenerateToken(42, "ana@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "ana@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestValidateTokenRejections(t *testing.T) {
	t.Parallel()

	m := testManager(t, time.Hour)
	good, err := m.GenerateToken(1, "x@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := testManager(t, time.Hour)
	other.secret = []byte("ffffffffffffffffffffffffffffffff")
	foreign, err := other.GenerateToken(1, "x@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	expired := testManager(t, -time.Minute)
	stale, err := expired.GenerateToken(1, "x@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"wrong secret", foreign},
		{"expired", stale},
		{"tampered", good + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.ValidateToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("want ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery", 10)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatal("wrong password accepted")
	}
}

func TestPasswordLengthBounds(t *testing.T) {
	t.Parallel()

	if _, err := HashPassword("short", 10); err == nil {
		t.Fatal("short password accepted")
	}
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := HashPassword(string(long), 10); err == nil {
		t.Fatal("over-length password accepted")
	}
}
