// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/planora/internal/app/store/oauthstate"
	"github.com/dalemusser/planora/internal/app/system/apiresp"
	"github.com/dalemusser/planora/internal/app/system/ratelimit"
	"github.com/dalemusser/planora/internal/app/system/timeouts"
	"github.com/dalemusser/planora/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// stateCleanupInterval is how often expired OAuth states are swept.
const stateCleanupInterval = time.Hour

// runtime holds process-wide components created in Startup, used by
// BuildHandler and released in Shutdown.
type runtime struct {
	limiter      *ratelimit.LoginLimiter
	stateCleanup *workers.StateCleanup
}

var rt runtime

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	cur := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium),
		zap.Duration("long", cur.Long))

	// Internal error details are only shown to developers.
	apiresp.ExposeInternalErrors(coreCfg.Env == "dev")

	rt = runtime{}
	if appCfg.LoginRateLimit > 0 {
		rt.limiter = ratelimit.NewLoginLimiter(appCfg.LoginRateLimit, appCfg.LoginRateWindow)
	} else {
		logger.Warn("login rate limiting disabled")
	}

	rt.stateCleanup = workers.NewStateCleanup(oauthstate.New(deps.MongoDatabase), logger, stateCleanupInterval)
	rt.stateCleanup.Start()
	return nil
}
