// Package node assembles the launchpad services from a Config and runs them.
package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/NethermindEth/aigent-launchpad/agent"
	"github.com/NethermindEth/aigent-launchpad/ai"
	"github.com/NethermindEth/aigent-launchpad/aigent"
	"github.com/NethermindEth/aigent-launchpad/api"
	"github.com/NethermindEth/aigent-launchpad/blend"
	"github.com/NethermindEth/aigent-launchpad/communication"
	"github.com/NethermindEth/aigent-launchpad/config"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"github.com/NethermindEth/aigent-launchpad/metrics"
	"github.com/NethermindEth/aigent-launchpad/storage"
	"github.com/NethermindEth/aigent-launchpad/wallet"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Node owns every long lived component of a running launchpad
type Node struct {
	cfg      *config.Config
	store    *storage.Store
	hub      *communication.Hub
	broker   *communication.Broker
	provider ai.Provider
	server   *api.Server
	router   *gin.Engine

	// runCtx bounds the background loops; Stop cancels it
	runCtx context.Context
	cancel context.CancelFunc
}

// NewNode opens storage, connects the wallet backend and the LLM provider and
// builds the HTTP router. Nothing is served until Start.
func NewNode(ctx context.Context, cfg *config.Config, walletProvider wallet.Provider) (*Node, error) {
	store, err := storage.OpenStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	n := &Node{cfg: cfg, store: store, hub: communication.NewHub()}

	if walletProvider == nil {
		walletProvider, err = wallet.NewEthereumProvider(cfg.Wallet)
		if err != nil {
			store.Close()
			return nil, err
		}
	}
	wallets, err := wallet.NewManager(walletProvider, store.Wallets, cfg.Wallet.MasterKey, cfg.Wallet.CacheSize)
	if err != nil {
		store.Close()
		return nil, err
	}

	n.provider, err = ai.NewProvider(ctx, cfg.LLM)
	if errors.Is(err, ai.ErrNoProvider) {
		logger.L().Warn("llm disabled, agent calls will fail", zap.Error(err))
		n.provider = ai.Disabled()
	} else if err != nil {
		store.Close()
		return nil, err
	}

	n.broker, err = communication.NewBroker(cfg.NATS)
	if err != nil {
		logger.L().Warn("nats unavailable, events go to websocket clients only", zap.Error(err))
	}
	events := communication.NewEvents(n.hub, n.broker)

	toolkit := agent.NewToolkit(ai.NewSearcher(cfg.Search), cfg.Wallet.Workspace)
	deps := api.Deps{
		Aigent:  aigent.NewService(store, wallets, n.provider, toolkit, events, cfg.LLM.MaxTurns),
		Blend:   blend.NewManager(store, wallets, n.provider, events, cfg.LLM.MaxTurns),
		Hub:     n.hub,
		Metrics: metrics.New(),
		Health:  n.health,
	}
	if db := store.DB(); db != nil {
		deps.Metrics.WatchDB(db)
	}
	if b, ok := n.provider.(*ai.Breaker); ok {
		deps.Metrics.WatchBreaker(cfg.LLM.Provider, b.State)
	}

	n.router = api.NewRouter(cfg.Server, deps)
	n.server = api.NewServer(cfg.Server, n.router)
	n.runCtx, n.cancel = context.WithCancel(context.Background())
	return n, nil
}

func (n *Node) health() gin.H {
	body := gin.H{
		"storage":        n.store.Backend(),
		"network":        n.cfg.Wallet.Network,
		"llm":            n.cfg.LLM.Provider,
		"ws_clients":     n.hub.Clients(),
		"nats_connected": n.broker != nil && n.broker.Conn.IsConnected(),
	}
	if b, ok := n.provider.(*ai.Breaker); ok {
		body["llm_breaker"] = b.State()
	}
	return body
}

// Router exposes the HTTP handler, mainly for tests
func (n *Node) Router() *gin.Engine {
	return n.router
}

// Start runs the event hub and blocks serving the API until Stop.
// Cancelling ctx stops the hub as well.
func (n *Node) Start(ctx context.Context) error {
	go func() {
		select {
		case <-ctx.Done():
			n.cancel()
		case <-n.runCtx.Done():
		}
	}()
	go n.hub.Run(n.runCtx)
	return n.server.Start()
}

// Stop shuts the API down and releases the broker and the store
func (n *Node) Stop(ctx context.Context) error {
	err := n.server.Shutdown(ctx)
	n.cancel()
	n.broker.Close()
	if cerr := n.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (n *Node) Config() *config.Config {
	return n.cfg
}
