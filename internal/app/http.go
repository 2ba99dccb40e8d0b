package app

import (
	"context"
	"net/http"

	"session-gatekeeper/internal/auth/handler"
	"session-gatekeeper/internal/auth/provider"
	"session-gatekeeper/internal/auth/provider/auth0"
	"session-gatekeeper/internal/auth/resolver"
	"session-gatekeeper/internal/config"
	"session-gatekeeper/internal/middleware"
	"session-gatekeeper/internal/session"
	"session-gatekeeper/internal/web"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the router needs. They are built once in
// setupHTTP and handed to handlers explicitly.
type Deps struct {
	Provider provider.OAuthProvider
	Sessions session.Store
	Resolver resolver.Resolver // optional
}

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	auth0Provider, err := auth0.New(
		ctx,
		cfg.Auth0Domain,
		cfg.Auth0ClientID,
		cfg.Auth0ClientSecret,
		cfg.CallbackURL(),
		cfg.Auth0Scopes,
	)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	deps := Deps{
		Provider: auth0Provider,
		Sessions: session.NewRedisStore(infra.Redis.Client),
	}
	if infra.DB != nil {
		deps.Resolver = resolver.NewDBResolver(infra.DB)
	}

	router, err := NewRouter(cfg, deps)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	return router, infra.Close, nil
}

// NewRouter assembles the HTTP surface.
func NewRouter(cfg config.Config, deps Deps) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	cookies := session.NewCookies(cfg.SecretKey, cfg.SessionTTL, session.CookieOptions{
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	authHandler := handler.NewHandler(
		deps.Provider,
		deps.Sessions,
		cookies,
		deps.Resolver,
		cfg.HomeURL(),
		cfg.SessionTTL,
	)

	authMiddleware := middleware.NewAuthMiddleware(deps.Sessions, cookies)
	authMiddleware.OnStoreError = func(w http.ResponseWriter, _ *http.Request, _ error) {
		web.WriteError(w, tmpl, http.StatusInternalServerError, "Your session could not be loaded.")
	}

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())
	router.SetHTMLTemplate(tmpl)

	router.NoRoute(func(c *gin.Context) {
		web.RenderError(c, http.StatusNotFound, "Page not found.")
	})

	// ----------------------------
	// Public Routes
	// ----------------------------

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	web.RegisterPublic(router)
	authHandler.RegisterRoutes(router)

	// ----------------------------
	// Protected Web Routes
	// ----------------------------

	protected := router.Group("/")
	protected.Use(middleware.GinRequireAuth(authMiddleware))
	web.RegisterProtected(protected)

	return router, nil
}
