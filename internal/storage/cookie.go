package storage

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lirancohen/portal/internal/auth"
	"github.com/lirancohen/portal/internal/session"
)

// CookieProvider keeps every storage item in its own signed cookie, so the
// browser itself holds the state.
type CookieProvider struct {
	tokens *auth.TokenConfig
	prefix string
	maxAge time.Duration
	secure bool
}

// CookieConfig contains configuration for the cookie provider.
type CookieConfig struct {
	Tokens *auth.TokenConfig
	Prefix string
	MaxAge time.Duration
	Secure bool // Set to true for HTTPS
}

// NewCookieProvider creates a cookie-backed provider.
func NewCookieProvider(cfg CookieConfig) *CookieProvider {
	if cfg.Prefix == "" {
		cfg.Prefix = "portal_"
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 30 * 24 * time.Hour
	}
	return &CookieProvider{
		tokens: cfg.Tokens,
		prefix: cfg.Prefix,
		maxAge: cfg.MaxAge,
		secure: cfg.Secure,
	}
}

// ForRequest returns the cookie storage of the requesting browser.
func (p *CookieProvider) ForRequest(c echo.Context) session.Storage {
	return &cookieStorage{
		provider: p,
		c:        c,
		pending:  make(map[string]*string),
	}
}

// cookieStorage reads request cookies and writes response cookies. Writes are
// remembered so reads later in the same request see them.
type cookieStorage struct {
	provider *CookieProvider
	c        echo.Context
	pending  map[string]*string
}

func (s *cookieStorage) GetItem(key string) (string, bool) {
	if v, ok := s.pending[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}

	cookie, err := s.c.Cookie(s.provider.prefix + key)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	claims, err := auth.VerifyItem(cookie.Value, s.provider.tokens)
	if err != nil || claims.Key != key {
		return "", false
	}
	return claims.Value, true
}

func (s *cookieStorage) SetItem(key, value string) error {
	token, err := auth.SignItem(key, value, s.provider.tokens)
	if err != nil {
		return err
	}
	s.c.SetCookie(&http.Cookie{
		Name:     s.provider.prefix + key,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.provider.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.provider.maxAge.Seconds()),
	})
	s.pending[key] = &value
	return nil
}

func (s *cookieStorage) RemoveItem(key string) error {
	s.c.SetCookie(&http.Cookie{
		Name:     s.provider.prefix + key,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.provider.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	s.pending[key] = nil
	return nil
}
