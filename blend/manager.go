// Package blend plans and runs wallet-backed web3 agents for web2 applications.
package blend

import (
	"context"
	"errors"
	"fmt"

	"github.com/NethermindEth/aigent-launchpad/agent"
	"github.com/NethermindEth/aigent-launchpad/ai"
	"github.com/NethermindEth/aigent-launchpad/core"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"github.com/NethermindEth/aigent-launchpad/storage"
	"github.com/NethermindEth/aigent-launchpad/wallet"
	"go.uber.org/zap"
)

var (
	ErrNoAgents = errors.New("no agents found for this user")
	// ErrNotOwner is returned when a run names a wallet outside the caller's agents
	ErrNotOwner = errors.New("wallet does not belong to this user's agents")
)

// Emitter receives manager events
type Emitter interface {
	Emit(eventType string, payload interface{})
}

type noopEmitter struct{}

func (noopEmitter) Emit(string, interface{}) {}

// Manager creates one agent per planned task and remembers them per user
type Manager struct {
	store     *storage.Store
	wallets   *wallet.Manager
	provider  ai.Provider
	converter *ai.Web3Converter
	events    Emitter
	maxTurns  int
}

func NewManager(store *storage.Store, wallets *wallet.Manager, provider ai.Provider, events Emitter, maxTurns int) *Manager {
	if events == nil {
		events = noopEmitter{}
	}
	return &Manager{
		store:     store,
		wallets:   wallets,
		provider:  provider,
		converter: ai.NewWeb3Converter(provider, agent.Web3Catalogue()),
		events:    events,
		maxTurns:  maxTurns,
	}
}

// CreateAgents plans the web3 tasks for prompt and gives each one its own
// wallet. The resulting list replaces whatever was stored for userID.
func (m *Manager) CreateAgents(ctx context.Context, userID, prompt string) (*core.CreateAgentsResponse, error) {
	userID = core.NormalizeUserID(userID)
	log := logger.L().With(zap.String("user_id", userID))

	groups, err := m.converter.Convert(ctx, prompt)
	if err != nil {
		return nil, err
	}
	log.Info("planned web3 tasks", zap.Int("tasks", len(groups)))

	agents := []core.BlendAgent{}
	for _, g := range groups {
		w, err := m.wallets.Create(ctx)
		if err != nil {
			log.Error("failed to create agent", zap.String("task", g.Task), zap.Error(err))
			continue
		}
		agents = append(agents, core.BlendAgent{
			Name:          fmt.Sprintf("agent%d", len(agents)+1),
			Functions:     g.Functions,
			WalletAddress: w.DefaultAddress(),
			WalletID:      w.ID(),
			UserID:        userID,
		})
	}

	if err := m.store.UserAgents.Save(userID, agents); err != nil {
		return nil, fmt.Errorf("failed to save agents: %w", err)
	}

	m.events.Emit(core.EventBlendAgents, map[string]interface{}{
		"user_id": userID,
		"agents":  agents,
	})
	return &core.CreateAgentsResponse{
		Success:    true,
		Message:    fmt.Sprintf("Created %d agents", len(agents)),
		AgentCount: len(agents),
		Agents:     agents,
	}, nil
}

// Agents returns the agents last created for userID
func (m *Manager) Agents(ctx context.Context, userID string) ([]core.BlendAgent, error) {
	agents, err := m.store.UserAgents.Get(core.NormalizeUserID(userID))
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrEmptyFile) {
		return nil, ErrNoAgents
	}
	if err != nil {
		return nil, err
	}
	return agents, nil
}

// RunAgent equips the wallet with the requested functions and runs prompt.
// The wallet must belong to one of userID's agents. Failures of the run
// itself are reported in the result text.
func (m *Manager) RunAgent(ctx context.Context, userID string, req core.RunAgentRequest) (*core.RunAgentResponse, error) {
	if err := m.checkOwner(ctx, userID, req.WalletID); err != nil {
		return nil, err
	}
	w, err := m.wallets.Load(ctx, req.WalletID)
	if err != nil {
		return nil, err
	}

	tools := agent.WalletTools(w).Select(req.Functions)
	result, err := m.run(ctx, w, tools, req.Prompt)
	if err != nil {
		logger.L().Warn("web3 agent run failed",
			zap.String("wallet_id", req.WalletID),
			zap.Int("agent_index", req.AgentIndex),
			zap.Error(err))
		result = fmt.Sprintf("Error running agent: %v", err)
	}

	m.events.Emit(core.EventBlendRun, map[string]interface{}{
		"user_id":     core.NormalizeUserID(userID),
		"wallet_id":   req.WalletID,
		"agent_index": req.AgentIndex,
		"functions":   req.Functions,
	})
	return &core.RunAgentResponse{Success: true, Result: result}, nil
}

func (m *Manager) checkOwner(ctx context.Context, userID, walletID string) error {
	agents, err := m.Agents(ctx, userID)
	if err != nil {
		return err
	}
	for _, a := range agents {
		if a.WalletID != "" && a.WalletID == walletID {
			return nil
		}
	}
	logger.L().Warn("rejected run on a wallet the user does not own",
		zap.String("user_id", core.NormalizeUserID(userID)),
		zap.String("wallet_id", walletID))
	return fmt.Errorf("%w: %s", ErrNotOwner, walletID)
}

func (m *Manager) run(ctx context.Context, w wallet.Wallet, tools []agent.Tool, prompt string) (string, error) {
	if len(tools) == 0 {
		return "", errors.New("agent not initialized with functions")
	}
	a := &agent.Agent{
		Description: fmt.Sprintf("You are an onchain agent operating the wallet %s on %s.", w.DefaultAddress(), w.NetworkID()),
		Instructions: []string{
			"Use the available functions to carry out the request.",
			"Report transaction hashes and contract addresses exactly as the functions return them.",
		},
		Tools:    tools,
		Provider: m.provider,
		MaxTurns: m.maxTurns,
	}
	return a.Run(ctx, prompt)
}
