package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

const (
	// FlagKey is the storage key holding the session flag.
	FlagKey = "isLoggedIn"
	// FlagValue is the only stored value that counts as logged in.
	FlagValue = "true"
	// LogoutParam is the query parameter that triggers a one-shot logout
	// when it equals "true".
	LogoutParam = "logout"
)

// Login outcome messages. Failures never say which field was wrong.
const (
	MessageLoginSuccess       = "login successful"
	MessageInvalidCredentials = "invalid username or password"
	MessageLoginError         = "an error occurred during login"
)

var errNoContext = errors.New("missing session context")

// Outcome is the result of a login attempt.
type Outcome struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	UserData map[string]any `json:"userData,omitempty"`
}

// Gate decides whether a browsing context is authenticated.
type Gate struct {
	validator Validator
	logger    *slog.Logger
}

// NewGate creates a gate backed by the given validator.
func NewGate(validator Validator, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		validator: validator,
		logger:    logger.With("component", "session"),
	}
}

// Login validates cred and, on an exact match, sets the session flag.
// It never panics or returns an error: unexpected failures are logged and
// reported as a generic failure outcome.
func (g *Gate) Login(ctx context.Context, sc *Context, cred Credential) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("login validation panicked", "panic", r)
			out = failure(MessageLoginError)
		}
	}()

	if sc == nil || sc.Storage == nil {
		g.logger.Error("login validation failed", "error", errNoContext)
		return failure(MessageLoginError)
	}

	ok, err := g.validator.Validate(ctx, cred)
	if err != nil {
		g.logger.Error("login validation failed", "error", err)
		return failure(MessageLoginError)
	}
	if !ok {
		return failure(MessageInvalidCredentials)
	}

	if err := sc.Storage.SetItem(FlagKey, FlagValue); err != nil {
		g.logger.Error("login validation failed", "error", fmt.Errorf("persist session flag: %w", err))
		return failure(MessageLoginError)
	}

	return Outcome{
		Success: true,
		Message: MessageLoginSuccess,
		UserData: map[string]any{
			"username": cred.Username,
		},
	}
}

// IsLoggedIn reports whether the browsing context is authenticated.
//
// A location carrying logout=true logs out first, has the parameter removed
// from the visible address and reports false.
func (g *Gate) IsLoggedIn(sc *Context) bool {
	if sc == nil {
		return false
	}

	if sc.Location != nil {
		u := sc.Location.URL()
		query := u.Query()
		if query.Get(LogoutParam) == "true" {
			g.Logout(sc)

			query.Del(LogoutParam)
			u.RawQuery = query.Encode()
			sc.Location.Replace(u)
			return false
		}
	}

	if sc.Storage == nil {
		return false
	}
	value, ok := sc.Storage.GetItem(FlagKey)
	return ok && value == FlagValue
}

// Logout clears the session flag. Calling it while logged out is a no-op.
func (g *Gate) Logout(sc *Context) {
	if sc == nil || sc.Storage == nil {
		return
	}
	if err := sc.Storage.RemoveItem(FlagKey); err != nil {
		g.logger.Warn("failed to clear session flag", "error", err)
	}
}

func failure(message string) Outcome {
	return Outcome{Success: false, Message: message}
}
