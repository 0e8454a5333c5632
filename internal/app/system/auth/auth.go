// Package auth issues and verifies the JWT that identifies a signed-in
// user, and provides the middleware that loads that user into the request
// context.
//
// The token is carried in an HTTP-only cookie set at login; API clients
// may send it as "Authorization: Bearer <token>" instead.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/timeouts"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MinSecretLen is the shortest JWT secret accepted in production.
const MinSecretLen = 32

// SessionUser is the authenticated caller injected into r.Context().
// It is rebuilt from the users collection on every request, so profile
// changes and disabled accounts take effect immediately.
type SessionUser struct {
	ID      string
	Name    string
	Email   string
	Picture string
}

// UserFetcher loads a fresh SessionUser by id. It returns nil when the
// user does not exist or may not sign in.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// SessionManager signs tokens and manages the session cookie.
type SessionManager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	domain     string
	secure     bool
	fetcher    UserFetcher
	logger     *zap.Logger
}

// NewSessionManager validates the secret and builds a manager. secure
// marks cookies Secure with SameSite=None (cross-site SPA over HTTPS);
// otherwise SameSite=Lax is used so cookies work on http://localhost.
func NewSessionManager(secret, cookieName, domain string, ttl time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty; provide ≥%d random chars", MinSecretLen)
	}
	if len(secret) < MinSecretLen {
		logger.Warn("jwt secret is short; 32+ chars recommended",
			zap.Int("length", len(secret)))
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	if cookieName == "" {
		cookieName = "token"
	}
	return &SessionManager{
		secret:     []byte(secret),
		ttl:        ttl,
		cookieName: cookieName,
		domain:     domain,
		secure:     secure,
		logger:     logger,
	}, nil
}

// SetUserFetcher installs the fetcher used by LoadUser.
func (m *SessionManager) SetUserFetcher(f UserFetcher) { m.fetcher = f }

// CookieName returns the session cookie name.
func (m *SessionManager) CookieName() string { return m.cookieName }

// Issue signs a token for userID and returns it with its expiry.
func (m *SessionManager) Issue(userID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Verify checks signature and expiry and returns the user id.
func (m *SessionManager) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// SetCookie writes the session cookie.
func (m *SessionManager) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, m.cookie(token, expires, int(time.Until(expires).Seconds())))
}

// ClearCookie expires the session cookie.
func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie("", time.Unix(0, 0), -1))
}

func (m *SessionManager) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		Domain:   m.domain,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if m.secure {
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

// tokenFrom returns the token from the cookie, falling back to a Bearer header.
func (m *SessionManager) tokenFrom(r *http.Request) string {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadUser injects the signed-in user into context when a valid token is
// present. Invalid or missing tokens leave the request anonymous.
func (m *SessionManager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := m.tokenFrom(r)
		if raw == "" || m.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := m.Verify(raw)
		if err != nil {
			m.logger.Debug("rejecting session token", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		u := m.fetcher.FetchUser(ctx, userID)
		cancel()
		if u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn answers 401 with the JSON envelope unless LoadUser found
// a user.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		apiresp.Fail(w, apperr.Unauthorized, "Not authorized, please sign in")
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u directly. Tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
