package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	shutdownTimeout = 5 * time.Second
	corsMaxAge      = 12 * time.Hour
)

type Server struct {
	logger *slog.Logger
	engine *gin.Engine
}

// New - builds the router: public auth routes and the token-protected game routes.
// Every route answers CORS requests from allowOrigins.
func New(logger *slog.Logger, allowOrigins []string, tokens tokenResolver, auth AuthHandler, game GameHandler) *Server {
	log := logger.With("component", "http")

	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))
	engine.Use(cors.New(corsConfig(allowOrigins)))

	engine.GET("/ping", pingHandler)

	authGroup := engine.Group("/api/auth")
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)

	gameGroup := engine.Group("/api/game")
	gameGroup.Use(requireAuth(log, tokens))
	gameGroup.POST("/start", game.Start)
	gameGroup.POST("/move/:gameId", game.MakeMove)
	gameGroup.GET("/history", game.History)
	gameGroup.GET("/:gameId", game.GetGame)
	gameGroup.POST("/rematch/:gameId", game.RequestRematch)
	gameGroup.POST("/rematch/accept/:gameId", game.AcceptRematch)
	gameGroup.GET("/rematch/status/:gameId", game.RematchStatus)

	return &Server{
		logger: log,
		engine: engine,
	}
}

func corsConfig(allowOrigins []string) cors.Config {
	conf := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Authorization", "Content-Type"},
		MaxAge:       corsMaxAge,
	}

	if len(allowOrigins) == 0 || slices.Contains(allowOrigins, "*") {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = allowOrigins
	}

	return conf
}

func (that *Server) Handler() http.Handler {
	return that.engine
}

// Start - serves until ctx is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
		that.logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	}
}
