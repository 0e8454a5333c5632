// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountfeature "github.com/dalemusser/planora/internal/app/features/account"
	authgooglefeature "github.com/dalemusser/planora/internal/app/features/authgoogle"
	bookingsfeature "github.com/dalemusser/planora/internal/app/features/bookings"
	healthfeature "github.com/dalemusser/planora/internal/app/features/health"
	moodboardsfeature "github.com/dalemusser/planora/internal/app/features/moodboards"
	postsfeature "github.com/dalemusser/planora/internal/app/features/posts"
	reviewsfeature "github.com/dalemusser/planora/internal/app/features/reviews"
	savedplacesfeature "github.com/dalemusser/planora/internal/app/features/savedplaces"
	tripsfeature "github.com/dalemusser/planora/internal/app/features/trips"
	"github.com/dalemusser/planora/internal/app/store/audit"
	userstore "github.com/dalemusser/planora/internal/app/store/users"
	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/apperr"
	"github.com/dalemusser/planora/internal/app/system/auditlog"
	"github.com/dalemusser/planora/internal/app/system/auth"
	"github.com/dalemusser/planora/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Every API route lives under /api and
// answers with the JSON envelope; /health and /metrics sit at the root.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.JWTSecret, appCfg.CookieName, appCfg.CookieDomain, appCfg.JWTTTL, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh user data on each request: disabled accounts and profile
	// changes take effect immediately.
	db := deps.MongoDatabase
	sessionMgr.SetUserFetcher(userstore.New(db))

	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:   appCfg.AuditLogAuth,
		Boards: appCfg.AuditLogBoards,
	})

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiresp.Recoverer(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{appCfg.FrontendOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(metrics.Middleware)

	// Loads the signed-in user (if any) into the request context.
	r.Use(sessionMgr.LoadUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		accountHandler := accountfeature.NewHandler(db, sessionMgr, rt.limiter, auditLog, logger)
		googleHandler := authgooglefeature.NewHandler(db, sessionMgr, auditLog,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, appCfg.FrontendOrigin, logger)

		api.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
		api.Mount("/auth", accountfeature.Routes(accountHandler, sessionMgr))

		boardsHandler := moodboardsfeature.NewHandler(deps.MongoClient, db, auditLog, logger)
		api.Mount("/moodboards", moodboardsfeature.Routes(boardsHandler, sessionMgr))

		api.Mount("/trips", tripsfeature.Routes(tripsfeature.NewHandler(db, logger), sessionMgr))
		api.Mount("/bookings", bookingsfeature.Routes(bookingsfeature.NewHandler(db, logger), sessionMgr))
		api.Mount("/saved-places", savedplacesfeature.Routes(savedplacesfeature.NewHandler(db, logger), sessionMgr))
		api.Mount("/posts", postsfeature.Routes(postsfeature.NewHandler(db, logger), sessionMgr))
		api.Mount("/reviews", reviewsfeature.Routes(reviewsfeature.NewHandler(db, logger), sessionMgr))

		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			apiresp.Fail(w, apperr.NotFound, "Route not found")
		})
	})

	return r, nil
}
