package storage

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/lirancohen/portal/internal/db"
	"github.com/lirancohen/portal/internal/session"
)

// BrowserCookie names the cookie identifying a browser to the SQLite backend.
const BrowserCookie = "portal_browser"

// SQLiteProvider keeps storage items in the database, keyed by a random
// browser ID handed to each browser in a cookie.
type SQLiteProvider struct {
	db     *db.DB
	secure bool
	logger *slog.Logger
}

// NewSQLiteProvider creates a database-backed provider.
func NewSQLiteProvider(database *db.DB, secure bool, logger *slog.Logger) *SQLiteProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteProvider{
		db:     database,
		secure: secure,
		logger: logger.With("component", "storage"),
	}
}

// ForRequest returns the storage of the requesting browser, issuing a new
// browser ID when the request has none.
func (p *SQLiteProvider) ForRequest(c echo.Context) session.Storage {
	return &sqliteStorage{
		db:        p.db,
		browserID: browserID(c, p.secure),
		logger:    p.logger,
	}
}

// browserID returns the browser ID cookie value, issuing a fresh one when the
// request carries none or a malformed one.
func browserID(c echo.Context, secure bool) string {
	if cookie, err := c.Cookie(BrowserCookie); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     BrowserCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((400 * 24 * time.Hour).Seconds()),
	})
	return id
}

type sqliteStorage struct {
	db        *db.DB
	browserID string
	logger    *slog.Logger
}

// GetItem treats a failed read as absent; the error is logged.
func (s *sqliteStorage) GetItem(key string) (string, bool) {
	value, ok, err := s.db.GetStorageItem(s.browserID, key)
	if err != nil {
		s.logger.Warn("storage read failed", "key", key, "error", err)
		return "", false
	}
	return value, ok
}

func (s *sqliteStorage) SetItem(key, value string) error {
	return s.db.SetStorageItem(s.browserID, key, value)
}

func (s *sqliteStorage) RemoveItem(key string) error {
	return s.db.RemoveStorageItem(s.browserID, key)
}
