package auth

import (
	"strings"
	"testing"
	"time"
)

func TestNewTokenConfig(t *testing.T) {
	t.Run("seed is deterministic", func(t *testing.T) {
		a, err := NewTokenConfig("portal", "seed-1", time.Hour)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, _ := NewTokenConfig("portal", "seed-1", time.Hour)
		if !a.VerifyingKey.Equal(b.VerifyingKey) {
			t.Error("expected same key for same seed")
		}
	})

	t.Run("empty seed is random", func(t *testing.T) {
		a, _ := NewTokenConfig("portal", "", time.Hour)
		b, _ := NewTokenConfig("portal", "", time.Hour)
		if a.VerifyingKey.Equal(b.VerifyingKey) {
			t.Error("expected different keys")
		}
	})
}

func TestSignAndVerifyItem(t *testing.T) {
	config, _ := NewTokenConfig("test-issuer", "test-seed", time.Hour)

	t.Run("round trip", func(t *testing.T) {
		token, err := SignItem("isLoggedIn", "true", config)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		claims, err := VerifyItem(token, config)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claims.Key != "isLoggedIn" || claims.Value != "true" {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})

	t.Run("rejects tampered token", func(t *testing.T) {
		token, _ := SignItem("isLoggedIn", "true", config)
		parts := strings.Split(token, ".")
		parts[2] = strings.Repeat("A", len(parts[2]))
		if _, err := VerifyItem(strings.Join(parts, "."), config); err != ErrInvalidToken {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects token from another key", func(t *testing.T) {
		other, _ := NewTokenConfig("test-issuer", "other-seed", time.Hour)
		token, _ := SignItem("isLoggedIn", "true", other)
		if _, err := VerifyItem(token, config); err != ErrInvalidToken {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects token from another issuer", func(t *testing.T) {
		other := *config
		other.Issuer = "someone-else"
		token, _ := SignItem("isLoggedIn", "true", &other)
		if _, err := VerifyItem(token, config); err != ErrInvalidToken {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := *config
		expired.Expiry = -time.Minute
		token, _ := SignItem("isLoggedIn", "true", &expired)
		if _, err := VerifyItem(token, config); err != ErrExpiredToken {
			t.Errorf("expected ErrExpiredToken, got %v", err)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := VerifyItem("not-a-token", config); err != ErrInvalidToken {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
