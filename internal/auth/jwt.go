// Package auth signs and verifies the tokens that back cookie storage.
package auth

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// ItemClaims carries one storage item inside a JWT.
type ItemClaims struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	jwt.RegisteredClaims
}

// TokenConfig holds JWT configuration
type TokenConfig struct {
	Issuer       string
	Expiry       time.Duration
	SigningKey   ed25519.PrivateKey
	VerifyingKey ed25519.PublicKey
}

// NewTokenConfig derives an Ed25519 key pair from seed. An empty seed
// generates a random key, so tokens will not survive a restart.
func NewTokenConfig(issuer, seed string, expiry time.Duration) (*TokenConfig, error) {
	var (
		pub  ed25519.PublicKey
		priv ed25519.PrivateKey
	)
	if seed == "" {
		var err error
		pub, priv, err = ed25519.GenerateKey(nil)
		if err != nil {
			return nil, err
		}
	} else {
		sum := sha256.Sum256([]byte(seed))
		priv = ed25519.NewKeyFromSeed(sum[:])
		pub = priv.Public().(ed25519.PublicKey)
	}

	return &TokenConfig{
		Issuer:       issuer,
		Expiry:       expiry,
		SigningKey:   priv,
		VerifyingKey: pub,
	}, nil
}

// SignItem creates a JWT holding key and value.
func SignItem(key, value string, config *TokenConfig) (string, error) {
	now := time.Now()
	claims := ItemClaims{
		Key:   key,
		Value: value,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   config.Issuer,
			Subject:  key,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if config.Expiry != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(config.Expiry))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(config.SigningKey)
}

// VerifyItem verifies a JWT and returns the claims if valid
func VerifyItem(tokenString string, config *TokenConfig) (*ItemClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ItemClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, ErrInvalidToken
		}
		return config.VerifyingKey, nil
	}, jwt.WithIssuer(config.Issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*ItemClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
