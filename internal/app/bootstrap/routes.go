// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	authgooglefeature "github.com/virtuhq/virtu/internal/app/features/authgoogle"
	dashboardfeature "github.com/virtuhq/virtu/internal/app/features/dashboard"
	errorsfeature "github.com/virtuhq/virtu/internal/app/features/errors"
	healthfeature "github.com/virtuhq/virtu/internal/app/features/health"
	homefeature "github.com/virtuhq/virtu/internal/app/features/home"
	logoutfeature "github.com/virtuhq/virtu/internal/app/features/logout"
	opportunitiesfeature "github.com/virtuhq/virtu/internal/app/features/opportunities"
	profilefeature "github.com/virtuhq/virtu/internal/app/features/profile"
	"github.com/virtuhq/virtu/internal/app/store/oauthstate"
	volunteerstore "github.com/virtuhq/virtu/internal/app/store/volunteers"
	"github.com/virtuhq/virtu/internal/app/system/auth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Virtu initializes the template engine,
// applies session middleware, and mounts the feature routers: home, Google
// auth, profile, dashboard, opportunities, logout, and health.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.VirtuMongoDatabase

	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName,
		appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fetch fresh volunteer data on each request so profile edits and
	// deletions take effect immediately.
	sessionMgr.SetProfileFetcher(volunteerstore.NewFetcher(db))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the volunteer into context if signed in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.VirtuMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Landing page
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Google OAuth register/sign-in
	authHandler := authgooglefeature.NewHandler(db, sessionMgr, oauthstate.New(db),
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(authHandler))

	// Volunteer profile: registration completion is public (the visitor is
	// mid-OAuth and has no session yet); editing and deletion require one.
	profileHandler := profilefeature.NewHandler(db, sessionMgr, errLog, logger)
	r.Get("/complete-profile", profileHandler.ServeCompleteProfile)
	r.Post("/complete-profile", profileHandler.HandleCompleteProfile)
	r.Group(func(pr chi.Router) {
		pr.Use(sessionMgr.RequireSignedIn)
		pr.Get("/edit-profile", profileHandler.ServeEditProfile)
		pr.Post("/edit-profile", profileHandler.HandleEditProfile)
		pr.Post("/delete-account", profileHandler.HandleDeleteAccount)
	})

	// Dashboard
	dashboardHandler := dashboardfeature.NewHandler(db, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Opportunity listing and management
	oppHandler := opportunitiesfeature.NewHandler(db, errLog, logger)
	r.Mount("/opportunities", opportunitiesfeature.Routes(oppHandler))

	// Logout
	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}
