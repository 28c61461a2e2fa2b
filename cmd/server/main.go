package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/listabob/internal/config"
	"github.com/JonMunkholm/listabob/internal/core"
	"github.com/JonMunkholm/listabob/internal/logging"
	"github.com/JonMunkholm/listabob/internal/store"
	"github.com/JonMunkholm/listabob/internal/web"
)

func main() {
	// Overload lets .env win over variables already set in the shell.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database", "driver", db.Driver())

	service := core.NewService(db, core.Options{
		Preview: core.PreviewOptions{
			SampleRows:   cfg.Import.PreviewRows,
			SampleValues: cfg.Import.SampleValues,
			Infer:        core.InferOptions{CurrencySymbols: cfg.Inference.CurrencySymbols},
		},
		ImportTimeout: cfg.Import.Timeout,
		Limiter:       core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
	})

	server := web.NewServer(service, db, cfg)

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		slog.Error("failed to listen", "addr", cfg.Server.Addr(), "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go service.StartRecycleSweeper(ctx, core.SweepConfig{
		Retention: cfg.Recycle.Retention,
		Interval:  cfg.Recycle.SweepInterval,
	})

	drainImports := func(shutdownCtx context.Context) {
		limiter := service.Limiter()
		if active := limiter.Active(); active > 0 {
			slog.Info("waiting for imports to complete", "active", active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}
	}

	if err := server.Run(ctx, ln, drainImports); err != nil {
		slog.Error("server stopped", "error", err)
		stop()
		db.Close()
		os.Exit(1)
	}
	slog.Info("server stopped")
}
