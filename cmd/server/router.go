package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/guestdesk/backend/internal/auth"
	"github.com/guestdesk/backend/internal/companies"
	"github.com/guestdesk/backend/internal/forms"
	"github.com/guestdesk/backend/internal/guestbook"
	"github.com/guestdesk/backend/internal/metrics"
	"github.com/guestdesk/backend/internal/middleware"
	"github.com/guestdesk/backend/pkg/response"
)

// routes groups everything the router needs.
type routes struct {
	apiKey      string
	corsOrigins string
	jwt         *auth.JWTService
	gatherer    prometheus.Gatherer
	auth        *auth.Handler
	forms       *forms.Handler
	companies   *companies.Handler
	guestBook   *guestbook.Handler
	logger      *zap.Logger
}

func newRouter(r routes) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(r.corsOrigins))
	router.Use(middleware.Logger(r.logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", metrics.Handler(r.gatherer))

	api := router.Group("")
	api.Use(middleware.APIKey(r.apiKey))

	jwt := middleware.JWT(r.jwt)
	admin := middleware.RequireAdmin()

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", r.auth.Login)
		authGroup.GET("/user", jwt, r.auth.Me)
		authGroup.PUT("/user", jwt, r.auth.EditUser)
		authGroup.POST("/change-password", jwt, r.auth.ChangePassword)
		authGroup.POST("/register", jwt, admin, r.auth.Register)
		authGroup.GET("/users", jwt, admin, r.auth.List)
		authGroup.POST("/reset-password", jwt, admin, r.auth.ResetPassword)
	}

	// Guest registration (kiosk; API key only)
	api.POST("/register", r.guestBook.Register)
	api.GET("/companies", r.companies.List)
	api.GET("/forms/resolve", r.forms.Resolve)

	// Administration
	adminGroup := api.Group("")
	adminGroup.Use(jwt, admin)
	{
		adminGroup.GET("/guest-book", r.guestBook.List)
		adminGroup.GET("/guest-book/:id/download", r.guestBook.Download)

		adminGroup.POST("/companies", r.companies.Create)
		adminGroup.DELETE("/companies/:id", r.companies.Delete)

		adminGroup.GET("/forms", r.forms.List)
		adminGroup.POST("/forms", r.forms.Create)
		adminGroup.PUT("/forms/:id", r.forms.Update)
		adminGroup.DELETE("/forms/:id", r.forms.Delete)
	}
	return router
}
