package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/avolkov/mucbridge/internal/auth"
	"github.com/avolkov/mucbridge/internal/config"
)

// NewServer builds the HTTP server carrying the REST auth surface and the
// websocket endpoint.
func NewServer(cfg config.Config, authService *auth.Service, factory SessionFactory, logger *zerolog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := NewAPIHandlers(authService, logger)
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.POST("/api/register", api.Register)
	router.POST("/api/login", api.Login)

	wsHandler := NewHandler(authService, factory, logger)
	router.GET("/ws", gin.WrapH(wsHandler))

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
