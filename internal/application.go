package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-rematch/internal/config"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/service"
	"github.com/rocketscienceinc/tictactoe-rematch/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-rematch/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	if conf.Redis.Host == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedis(ctx, storage.RedisOptions{
		Addr:     conf.Redis.GetRedisAddr(),
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	gameRepo := repository.NewGameRepository(redisStorage)
	userRepo := repository.NewUserRepository(sqliteStorage.Connection)

	authService := service.NewAuthService(conf.JWT.SecretKey, conf.JWT.TokenTTL)
	passwordHasher := service.NewPasswordHasher(0)

	gameUseCase := usecase.NewGameUseCase(logger, gameRepo)
	userUseCase := usecase.NewUserUseCase(logger, userRepo, passwordHasher, authService)

	server := rest.New(
		logger,
		conf.CORS.AllowOrigins,
		authService,
		rest.NewAuthHandler(logger, userUseCase),
		rest.NewGameHandler(logger, gameUseCase),
	)

	log.Info("Starting HTTP server", "port", conf.HTTPPort)
	if err = server.Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
