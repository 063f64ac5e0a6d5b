package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"vidmorph/internal/adapter/repo"
	"vidmorph/internal/infra"
)

const sweepInterval = time.Minute

// The provider gives no upper bound on callback delivery, so records whose
// callback never arrives would stay processing forever. This sweeper fails
// any record older than JOB_STALE_AFTER, giving the lifecycle its timeout
// path to the failed state.
func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("reaper: db connection failed")
	}
	defer pool.Close()

	videos := repo.NewVideoRepository(pool)
	logger.Info().Dur("stale_after", cfg.JobStaleAfter).Msg("reaper started")

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("reaper stopped")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-cfg.JobStaleAfter)
			n, err := videos.FailStale(ctx, cutoff)
			if err != nil {
				logger.Error().Err(err).Msg("reaper: sweep failed")
				continue
			}
			if n > 0 {
				logger.Info().Int64("failed", n).Time("cutoff", cutoff).Msg("reaper: stale jobs failed")
			}
		}
	}
}
