package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/squarelan/verify-relay/internal/biz/usecase"
	"github.com/squarelan/verify-relay/internal/conf"
	"github.com/squarelan/verify-relay/internal/data"
	"github.com/squarelan/verify-relay/internal/mcp"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "v1.0.0"

// relay-mcp serves the operator's moderation commands over MCP stdio,
// sharing the store of a running relay.
func main() {
	// stdout carries the protocol, keep godotenv quiet about a missing file
	_ = godotenv.Load()

	cfg := conf.LoadFromEnv()
	if err := cfg.ValidateOperator(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := conf.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := data.NewKVRepo(ctx, cfg.ToStoreOptions())
	if err != nil {
		logger.Error("open store", "err", err)
		os.Exit(1)
	}
	defer kv.Close()

	server := mcp.NewModerationServer(
		usecase.NewModerationUsecase(kv, cfg.Telegram.OperatorID),
		usecase.NewRoutingUsecase(kv, cfg.RouteTTL()),
		version,
		logger,
	)

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("mcp server", "err", err)
		os.Exit(1)
	}
}
