package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/NethermindEth/aigent-launchpad/config"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with the middleware chain and every route
func NewRouter(cfg config.ServerConfig, d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), logger.GinMiddleware())
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware())
	}
	router.Use(CORS(cfg.AllowedOrigins), NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())
	SetupRoutes(router, d)
	return router
}

// Server runs the REST API
type Server struct {
	http *http.Server
}

func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{http: &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}}
}

// Start blocks serving requests until Shutdown is called
func (s *Server) Start() error {
	logger.L().Info("API server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
