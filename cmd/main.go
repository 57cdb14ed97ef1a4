package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NethermindEth/aigent-launchpad/cmd/node"
	"github.com/NethermindEth/aigent-launchpad/config"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	apiPort := flag.Int("api-port", 0, "API server port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *apiPort != 0 {
		cfg.Server.Port = *apiPort
	}

	lg, err := logger.Init(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := node.NewNode(ctx, cfg, nil)
	if err != nil {
		lg.Fatal("failed to create node", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Start(ctx)
	}()
	lg.Info("launchpad started",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("network", cfg.Wallet.Network))

	select {
	case <-ctx.Done():
		lg.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			lg.Error("API server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := n.Stop(shutdownCtx); err != nil {
		lg.Error("shutdown failed", zap.Error(err))
	}
}
