// Package router wires the HTTP surface: the health probe, the show
// catalogue, the snapshot endpoint and the plan websocket.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/stageset/stageset/internal/config"
	"github.com/stageset/stageset/internal/handler"
	"github.com/stageset/stageset/internal/hub"
	"github.com/stageset/stageset/internal/middleware"
	"github.com/stageset/stageset/internal/processor"
)

// Register mounts every route on the Echo instance.  When cfg.JWTSecret is
// empty the API is open, which is the normal mode for a single operator on
// a closed network; set the secret to require tokens.  The rate limiter is
// active only when Redis is reachable.
func Register(e *echo.Echo, cfg config.Config, proc *processor.Processor, h *hub.Hub, rdb *redis.Client) {
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	e.GET("/healthz", handler.Health)

	auth := middleware.JWTAuth(cfg.JWTSecret)

	api := e.Group("/api", auth)
	if rdb != nil {
		api.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}

	shows := handler.NewShowHandler(proc)
	api.GET("/shows", shows.List)
	api.POST("/shows", shows.Create)
	api.POST("/shows/select", shows.Select)
	api.DELETE("/shows/:name", shows.Delete)

	state := handler.NewStateHandler(proc)
	api.GET("/plan/state", state.Get)

	ws := handler.NewWSHandler(h, proc)
	e.GET("/ws", ws.Serve, auth)
}
