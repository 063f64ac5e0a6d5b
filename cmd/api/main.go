package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"vidmorph/internal/adapter/repo"
	"vidmorph/internal/events"
	"vidmorph/internal/http/handlers"
	"vidmorph/internal/http/httpapi"
	"vidmorph/internal/idempotency"
	"vidmorph/internal/infra"
	"vidmorph/internal/providers/cloudinary"
	"vidmorph/internal/providers/fal"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	rdb, err := infra.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure redis")
	}
	if rdb == nil {
		logger.Warn().Msg("REDIS_URL not set, duplicate-submission guard disabled")
	} else {
		defer rdb.Close()
	}

	app := &handlers.App{
		Logger: logger,
		Videos: repo.NewVideoRepository(dbpool),
		Fal: fal.NewClient(fal.Options{
			BaseURL: cfg.FalBaseURL,
			APIKey:  cfg.FalAPIKey,
		}),
		Mirror: cloudinary.NewClient(cloudinary.Options{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
		}),
		Guard:         idempotency.NewGuard(rdb, cfg.SubmitDedupeTTL),
		Events:        events.NewBroker(),
		WebhookURL:    cfg.WebhookURL(),
		WebhookSecret: cfg.FalWebhookSecret,
	}

	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
