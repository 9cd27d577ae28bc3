package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/havenapp/haven/internal/adapters/signal"
	"github.com/havenapp/haven/internal/app"
	"github.com/havenapp/haven/internal/config"
	"github.com/havenapp/haven/internal/store"
	"github.com/rs/zerolog/log"
)

// ClientTokenMiddleware hands every browser a stable token cookie. The
// relay does not authenticate anything with it; it only keys logs and
// sessions.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// SetupRouter wires the WS endpoint, the collaborator CRUD surface, and
// the ops endpoints.
func SetupRouter(ctx context.Context, cfg *config.Config, relay *app.Relay, st store.Store) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cookieStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("HavenSessions", cookieStore))
	r.Use(ClientTokenMiddleware())

	h := &Handlers{Relay: relay, Store: st}

	r.GET("/health", h.Health)

	api := r.Group("/api")

	api.GET("/rooms", h.ListRooms)
	api.GET("/messages/:userId", h.MessagesForUser)
	api.GET("/echoes", h.RecentEchoes)
	api.POST("/echoes", h.CreateEcho)

	ctl := signal.NewController(relay, cfg)
	api.GET("/ws", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("ct", c.GetString("client_token")).Msg("ws endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	return r
}
