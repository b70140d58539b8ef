package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/alovak/cardflow-bingen/generator"
	"github.com/alovak/cardflow-bingen/internal/logger"
)

func main() {
	// A missing .env is fine; the process environment and defaults still apply.
	_ = godotenv.Load()

	cfg, err := generator.LoadConfig(".")
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, os.Stdout)
	slog.SetDefault(log)

	app := generator.NewApp(log, cfg)
	if err := app.Start(); err != nil {
		log.Error("starting app", "err", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	app.Shutdown()
}
