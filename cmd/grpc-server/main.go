package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pathfinder/internal/grpcserver"
	"pathfinder/internal/server"
	"pathfinder/pkg/logger"
	"pathfinder/pkg/utils"
)

// Runs only the gRPC health service, for health checkers that sit beside the API.
func main() {
	cfg, err := utils.Load(os.Getenv("PATHFINDER_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.GRPC.Addr == "" {
		cfg.GRPC.Addr = ":9090"
	}

	lg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer lg.Sync()

	db, err := server.OpenDB(cfg)
	if err != nil {
		lg.Fatal("open database failed", "error", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := grpcserver.New(db, lg).Serve(ctx, cfg.GRPC.Addr); err != nil {
		lg.Fatal("grpc server stopped", "error", err)
	}
}
