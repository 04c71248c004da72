package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/barnmonitor/internal/server/handlers"
	"github.com/mamadbah2/barnmonitor/internal/service/guard"
)

const requestIDHeader = "X-Request-ID"

// Handlers groups the HTTP adapters mounted by the router. Records is keyed by collection name.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Dashboard *handlers.DashboardHandler
	Records   map[string]*handlers.RecordsHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, g *guard.Guard, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/login", h.Auth.Login)
	r.POST("/signup", h.Auth.Signup)
	r.POST("/logout", h.Auth.Logout)
	r.GET("/session", h.Auth.Session)

	r.GET("/dashboard", guardMiddleware(g), h.Dashboard.Summary)

	api := r.Group("/api", guardMiddleware(g))
	api.GET("/dashboard", h.Dashboard.Summary)
	api.GET("/dashboard/history", h.Dashboard.History)
	api.GET("/profile", h.Dashboard.Profile)
	api.POST("/export", h.Dashboard.Export)

	for name, rh := range h.Records {
		res := api.Group("/" + name)
		res.GET("", rh.List)
		res.POST("", rh.Submit)
		res.GET("/:id", rh.Show)
		res.POST("/:id/edit", rh.Edit)
		res.DELETE("/edit", rh.Cancel)
		res.DELETE("/:id", rh.Delete)
	}

	if logger != nil {
		logger.Info("router initialized", zap.Int("collections", len(h.Records)))
	}

	return r
}

// guardMiddleware sends visitors without a session to the login page.
func guardMiddleware(g *guard.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		redirect, ok := g.Check(c.Request.URL.Path)
		if ok {
			c.Next()
			return
		}

		c.Header("Location", redirect)
		c.AbortWithStatusJSON(http.StatusSeeOther, gin.H{
			"error":    "Please log in to continue.",
			"redirect": redirect,
		})
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")))
	}
}
