// Command prune deletes stored quiz results older than the retention period.
// It is intended to be invoked by an external cron job.
//
// Usage:
//
//	prune --retention=2160h
//
// Requires DATABASE_DSN. Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/myvocab-backend/internal/adapter/postgres"
	"github.com/heartmarshall/myvocab-backend/internal/adapter/postgres/result"
	"github.com/heartmarshall/myvocab-backend/internal/app"
	"github.com/heartmarshall/myvocab-backend/internal/config"
)

func main() {
	retention := flag.Duration("retention", 90*24*time.Hour, "keep results completed within this period")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	if !cfg.Database.Enabled() {
		logger.Error("DATABASE_DSN is required")
		os.Exit(1)
	}
	if *retention <= 0 {
		logger.Error("retention must be positive", slog.Duration("retention", *retention))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	threshold := time.Now().Add(-*retention)

	deleted, err := result.New(pool).DeleteBefore(ctx, threshold)
	if err != nil {
		logger.Error("prune failed",
			slog.String("error", err.Error()),
			slog.Time("threshold", threshold),
		)
		os.Exit(1)
	}

	logger.Info("prune completed",
		slog.Int64("deleted", deleted),
		slog.Time("threshold", threshold),
	)
}
