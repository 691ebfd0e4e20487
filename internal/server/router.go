// Package server assembles the HTTP API from the domain packages.
package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pathfinder/internal/auth"
	"pathfinder/internal/colleges"
	"pathfinder/internal/events"
	"pathfinder/internal/httpx"
	"pathfinder/internal/profile"
	"pathfinder/internal/quiz"
	"pathfinder/internal/saved"
	"pathfinder/internal/timeline"
	"pathfinder/pkg/logger"
)

// Deps is everything the router needs. Remote and Index are optional.
type Deps struct {
	DB          *sql.DB
	Tokens      auth.TokenService
	Hub         *events.Hub
	Remote      colleges.Source
	Index       *saved.SlugIndex
	CORSOrigins []string
	Log         *logger.Logger
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Hub == nil {
		d.Hub = events.NewHub(d.Log)
	}

	router := gin.New()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})
	router.Use(
		httpx.RequestID(),
		httpx.RequestLogger(d.Log),
		httpx.CORS(d.CORSOrigins),
		gin.Recovery(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := d.Hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := d.DB.PingContext(ctx); err != nil {
			d.Log.Warn("readiness ping failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":         "not_ready",
				"db":             "unavailable",
				"ws_users":       stats.Users,
				"ws_connections": stats.Connections,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":         "ready",
			"db":             "ok",
			"ws_users":       stats.Users,
			"ws_connections": stats.Connections,
		})
	})

	api := router.Group("/api")

	// Auth
	authRepo := auth.NewRepo(d.DB)
	auth.NewHandler(authRepo, d.Tokens, d.Log).RegisterRoutes(api.Group("/auth"))
	requireAuth := auth.AuthMiddleware(d.Tokens, authRepo, d.Log)
	optionalAuth := auth.OptionalMiddleware(d.Tokens, authRepo, d.Log)

	// Colleges and timeline (public)
	collegeRepo := colleges.NewRepo(d.DB)
	colleges.NewHandler(collegeRepo, d.Remote, d.Log).RegisterRoutes(api.Group("/colleges"))
	timeline.NewHandler(timeline.NewRepo(d.DB), d.Log).RegisterRoutes(api.Group("/timeline"))

	// Quiz mixes public and protected routes
	quiz.NewHandler(quiz.NewRepo(d.DB), d.Log).RegisterRoutes(api, requireAuth, optionalAuth)

	// Protected routes
	protected := api.Group("")
	protected.Use(requireAuth)

	protected.GET("/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":    claims.UserID,
			"email": claims.Email,
		})
	})

	savedRepo := saved.NewRepo(d.DB)
	reconciler := saved.NewReconciler(savedRepo, collegeRepo, d.Index, d.Log)
	saved.NewHandler(reconciler, saved.NewMaterials(savedRepo), d.Hub, d.Log).RegisterRoutes(protected)

	profile.NewHandler(profile.NewRepo(d.DB), d.Log).RegisterRoutes(protected)

	// Saved-item notifications
	upgrader := events.NewUpgrader(d.CORSOrigins)
	router.GET("/ws", events.WSHandler(d.Hub, upgrader, auth.WSIdentity(d.Tokens, authRepo)))

	return router
}
