package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/squarelan/verify-relay/internal/biz"
	"github.com/squarelan/verify-relay/internal/conf"
	"github.com/squarelan/verify-relay/internal/data"
	"github.com/squarelan/verify-relay/internal/infra/telegram"
	"github.com/squarelan/verify-relay/internal/metrics"
	"github.com/squarelan/verify-relay/internal/server"
	"github.com/squarelan/verify-relay/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := conf.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize clients
	tgClient, err := telegram.NewClient(cfg.Telegram.Token, cfg.HTTPTimeout())
	if err != nil {
		logger.Error("telegram client", "err", err)
		os.Exit(1)
	}
	logger.Info("connected to telegram", "bot", tgClient.Username())

	// Initialize repository layer
	repos, err := data.NewRepositories(ctx, tgClient, cfg.ToStoreOptions(), cfg.ToLookupOptions())
	if err != nil {
		logger.Error("create repositories", "err", err)
		os.Exit(1)
	}
	defer repos.KV.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize usecase layer
	operator := cfg.Telegram.OperatorID
	ucs := biz.NewUsecases(repos.KV, repos.Lookup, biz.Options{
		OperatorID: operator,
		GrantTTL:   cfg.GrantTTL(),
		RouteTTL:   cfg.RouteTTL(),
		Fraud:      cfg.ToFraudConfig(),
	}, logger)

	// Initialize service layer
	dispatcher := service.NewDispatcher(
		service.DispatcherConfig{
			OperatorID:  operator,
			Texts:       cfg.Texts,
			SendTimeout: cfg.HTTPTimeout(),
		},
		ucs.Verification, ucs.Routing, ucs.Moderation, ucs.Fraud,
		repos.Messenger, m, logger,
	)
	compactor := service.NewCompactor(repos.KV, cfg.CompactInterval(), m, logger)

	// Initialize server
	srv := server.NewWebhookServer(server.Config{
		Port:       cfg.Server.Port,
		Domain:     cfg.Server.Domain,
		Secret:     cfg.Telegram.WebhookSecret,
		OperatorID: operator,
	}, dispatcher, repos.Webhook, registry, logger)

	compactor.Start(ctx)
	defer compactor.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
