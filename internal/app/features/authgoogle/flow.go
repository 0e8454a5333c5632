// internal/app/features/authgoogle/flow.go
package authgoogle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/planora/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/planora/internal/app/store/users"
	"github.com/dalemusser/planora/internal/app/system/metrics"
	"github.com/dalemusser/planora/internal/app/system/timeouts"
	"github.com/dalemusser/planora/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Failure codes sent to the SPA as /login?error=<code>.
const (
	codeNotConfigured = "google_not_configured"
	codeDenied        = "google_denied"
	codeBadState      = "invalid_state"
	codeBadCode       = "invalid_code"
	codeExchange      = "token_exchange"
	codeProfile       = "user_info"
	codeDisabled      = "account_disabled"
	codeSession       = "session"
	codeInternal      = "internal"
)

// ServeStart handles GET /api/auth/google. The optional ?return= path is
// where the SPA should land after signing in.
func (h *Handler) ServeStart(w http.ResponseWriter, r *http.Request) {
	if !h.Enabled() {
		h.Log.Warn("google sign-in requested but not configured")
		h.toLogin(w, r, codeNotConfigured)
		return
	}

	p := oauthstate.Pending{
		State:     oauth2.GenerateVerifier(),
		Verifier:  oauth2.GenerateVerifier(),
		ReturnTo:  query.Get(r, "return"),
		ExpiresAt: time.Now().UTC().Add(pendingTTL),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if err := h.Pending.Put(ctx, p); err != nil {
		h.Log.Error("store pending google sign-in", zap.Error(err))
		h.toLogin(w, r, codeInternal)
		return
	}

	dest := h.config().AuthCodeURL(p.State, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(p.Verifier))
	http.Redirect(w, r, dest, http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /api/auth/google/callback.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, created, returnTo, code := h.complete(ctx, r)
	if code != "" {
		metrics.AuthAttempt(models.AuthGoogle, code)
		h.toLogin(w, r, code)
		return
	}

	token, exp, err := h.Sessions.Issue(u.ID.Hex())
	if err != nil {
		h.Log.Error("issue session token", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		h.toLogin(w, r, codeSession)
		return
	}
	h.Sessions.SetCookie(w, token, exp)

	if err := h.Logins.Record(ctx, r, u.ID, models.AuthGoogle); err != nil {
		h.Log.Warn("record login failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
	}
	if created {
		h.Audit.Registered(ctx, r, u.ID, models.AuthGoogle, u.Email)
	}
	h.Audit.LoginSuccess(ctx, r, u.ID, models.AuthGoogle, u.Email)
	metrics.AuthAttempt(models.AuthGoogle, "ok")
	h.Log.Info("google sign-in", zap.String("user_id", u.ID.Hex()), zap.Bool("created", created))

	http.Redirect(w, r, h.FrontendOrigin+urlutil.SafeReturn(returnTo, "", "/"), http.StatusSeeOther)
}

// complete checks the provider's answer, redeems the code and links or
// creates the account. A non-empty code means the sign-in failed.
func (h *Handler) complete(ctx context.Context, r *http.Request) (models.User, bool, string, string) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		h.Log.Warn("google returned an error", zap.String("error", e), zap.String("description", q.Get("error_description")))
		return models.User{}, false, "", codeDenied
	}

	p, ok, err := h.Pending.Take(ctx, q.Get("state"))
	switch {
	case err != nil:
		h.Log.Error("load pending google sign-in", zap.Error(err))
		return models.User{}, false, "", codeInternal
	case !ok:
		return models.User{}, false, "", codeBadState
	}

	authCode := q.Get("code")
	if authCode == "" {
		return models.User{}, false, "", codeBadCode
	}
	tok, err := h.config().Exchange(ctx, authCode, oauth2.VerifierOption(p.Verifier))
	if err != nil {
		h.Log.Error("google code exchange", zap.Error(err))
		return models.User{}, false, "", codeExchange
	}

	prof, err := h.profile(ctx, tok)
	if err != nil {
		h.Log.Error("google profile", zap.Error(err))
		return models.User{}, false, "", codeProfile
	}

	u, created, err := h.Users.UpsertGoogle(ctx, prof)
	if err != nil {
		h.Log.Error("link google account", zap.Error(err))
		return models.User{}, false, "", codeInternal
	}
	if u.Status == models.UserDisabled {
		h.Audit.LoginFailedUserDisabled(ctx, r, u.ID, u.Email)
		return models.User{}, false, "", codeDisabled
	}
	return u, created, p.ReturnTo, ""
}

var errIncompleteProfile = errors.New("profile has no id or email")

// profile reads the signed-in account from the userinfo endpoint.
func (h *Handler) profile(ctx context.Context, tok *oauth2.Token) (userstore.GoogleProfile, error) {
	resp, err := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok)).Get(h.UserInfoURL)
	if err != nil {
		return userstore.GoogleProfile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return userstore.GoogleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var body struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return userstore.GoogleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if body.ID == "" || body.Email == "" {
		return userstore.GoogleProfile{}, errIncompleteProfile
	}
	return userstore.GoogleProfile{Sub: body.ID, Email: body.Email, Name: body.Name, Picture: body.Picture}, nil
}
