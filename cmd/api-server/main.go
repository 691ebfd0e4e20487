package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pathfinder/internal/server"
	"pathfinder/pkg/logger"
	"pathfinder/pkg/utils"
)

func main() {
	cfg, err := utils.Load(os.Getenv("PATHFINDER_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, lg); err != nil {
		lg.Fatal("server stopped", "error", err)
	}
}
