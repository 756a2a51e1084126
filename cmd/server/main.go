package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hongminglow/jwt-auth-api/internal/config"
	"github.com/hongminglow/jwt-auth-api/internal/logging"
	"github.com/hongminglow/jwt-auth-api/internal/server"
	"github.com/hongminglow/jwt-auth-api/internal/storage"
	"github.com/hongminglow/jwt-auth-api/internal/storage/memory"
	postgres "github.com/hongminglow/jwt-auth-api/internal/storage/postgres"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "json").Fatal().Err(err).Msg("load config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		log.Debug().Msg("no .env file found; relying on existing environment")
	}

	ctx := context.Background()
	userStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("init store")
	}
	defer userStore.Close()

	srv := server.New(cfg, userStore, log)

	go func() {
		log.Info().Str("addr", cfg.HTTPAddress()).Str("driver", cfg.StorageDriver).Msg("auth API listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	log.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (storage.UserStore, error) {
	if cfg.StorageDriver == config.DriverMemory {
		log.Warn().Msg("using in-memory store; users are lost on restart")
		return memory.NewUserStore(), nil
	}
	return postgres.NewUserStore(ctx, cfg.DatabaseURL, log)
}
