// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	loginstore "github.com/dalemusser/planora/internal/app/store/logins"
	"github.com/dalemusser/planora/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/planora/internal/app/store/users"
	"github.com/dalemusser/planora/internal/app/system/auditlog"
	"github.com/dalemusser/planora/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	pendingTTL      = 10 * time.Minute
	googleUserInfo  = "https://www.googleapis.com/oauth2/v2/userinfo"
	callbackPath    = "/api/auth/google/callback"
	scopeEmail      = "https://www.googleapis.com/auth/userinfo.email"
	scopeProfile    = "https://www.googleapis.com/auth/userinfo.profile"
	loginErrorParam = "error"
)

// Handler runs the Google authorization-code flow for the SPA. Both ends
// of the flow answer with a redirect: to Google on start, and back to the
// frontend on completion, either signed in or at /login?error=<code>.
type Handler struct {
	Users    *userstore.Store
	Logins   *loginstore.Store
	Pending  *oauthstate.Store
	Sessions *auth.SessionManager
	Audit    *auditlog.Logger
	Log      *zap.Logger

	ClientID       string
	ClientSecret   string
	CallbackURL    string
	FrontendOrigin string

	// Endpoint and UserInfoURL point at Google unless a test overrides them.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

func NewHandler(
	db *mongo.Database,
	sessions *auth.SessionManager,
	audit *auditlog.Logger,
	clientID, clientSecret, baseURL, frontendOrigin string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:          userstore.New(db),
		Logins:         loginstore.New(db),
		Pending:        oauthstate.New(db),
		Sessions:       sessions,
		Audit:          audit,
		Log:            logger,
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		CallbackURL:    strings.TrimRight(baseURL, "/") + callbackPath,
		FrontendOrigin: strings.TrimRight(frontendOrigin, "/"),
		Endpoint:       google.Endpoint,
		UserInfoURL:    googleUserInfo,
	}
}

// Enabled reports whether client credentials are configured.
func (h *Handler) Enabled() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

func (h *Handler) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.CallbackURL,
		Scopes:       []string{"openid", scopeEmail, scopeProfile},
		Endpoint:     h.Endpoint,
	}
}

// toLogin lands the browser on the SPA login page with a code it can show.
func (h *Handler) toLogin(w http.ResponseWriter, r *http.Request, code string) {
	q := url.Values{loginErrorParam: {code}}
	http.Redirect(w, r, h.FrontendOrigin+"/login?"+q.Encode(), http.StatusSeeOther)
}
