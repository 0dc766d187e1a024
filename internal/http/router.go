package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/steveyiyo/tutor-relay/internal/config"
	"github.com/steveyiyo/tutor-relay/internal/core/session"
	"github.com/steveyiyo/tutor-relay/internal/http/handlers"
	"github.com/steveyiyo/tutor-relay/internal/observe"
	"github.com/steveyiyo/tutor-relay/internal/repo/memory"
	"github.com/steveyiyo/tutor-relay/pkg/ws"
)

type Deps struct {
	Config   config.Config
	Log      *zap.Logger
	Metrics  *observe.Metrics
	Repo     *memory.ConnectionRepo
	Sessions *session.Service
	Hub      *ws.Hub
	Relay    handlers.MessageHandler
	Version  string
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(requestLogger(log), gin.Recovery(), securityHeaders())

	info := handlers.NewInfoHandler(d.Repo, d.Version)
	chat := handlers.NewChatHandler(d.Hub, d.Sessions, d.Relay, log,
		handlers.OriginPolicy(d.Config.Production(), d.Config.DevOrigins))
	limiter := newRateLimiter(d.Config.RateLimitWindow, d.Config.RateLimitMax, d.Metrics)

	r.GET("/health", info.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/socket", chat.WS)

	api := r.Group("/api", limiter.middleware())
	api.GET("/models", info.Models)
	api.GET("/personalities", info.Personalities)

	if d.Config.StaticDir != "" {
		files := http.FileServer(http.Dir(d.Config.StaticDir))
		r.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
				c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
				return
			}
			files.ServeHTTP(c.Writer, c.Request)
		})
	}
	return r
}
