package aigent

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/NethermindEth/aigent-launchpad/agent"
	"github.com/NethermindEth/aigent-launchpad/ai"
	"github.com/NethermindEth/aigent-launchpad/core"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"github.com/NethermindEth/aigent-launchpad/storage"
	"github.com/NethermindEth/aigent-launchpad/wallet"
	"go.uber.org/zap"
)

var (
	ErrUnknownNFT         = errors.New("NFT hash not found")
	ErrNotAuthorized      = errors.New("user not authorized for this agent")
	ErrAgentConfigMissing = errors.New("agent configuration not found")
)

const unknownAddress = "unknown"

// Emitter receives agent lifecycle events
type Emitter interface {
	Emit(eventType string, payload interface{})
}

type noopEmitter struct{}

func (noopEmitter) Emit(string, interface{}) {}

// Service provisions NFT-bound chat agents and routes prompts to them
type Service struct {
	store    *storage.Store
	wallets  *wallet.Manager
	provider ai.Provider
	analyzer *ai.ChatbotAnalyzer
	toolkit  *agent.Toolkit
	events   Emitter
	maxTurns int
}

func NewService(store *storage.Store, wallets *wallet.Manager, provider ai.Provider, toolkit *agent.Toolkit, events Emitter, maxTurns int) *Service {
	if events == nil {
		events = noopEmitter{}
	}
	return &Service{
		store:    store,
		wallets:  wallets,
		provider: provider,
		analyzer: ai.NewChatbotAnalyzer(provider, agent.ProvidedToolNames),
		toolkit:  toolkit,
		events:   events,
		maxTurns: maxTurns,
	}
}

// CreateAgent provisions a wallet and a personality for nftHash and makes
// userID its creator. It returns the wallet address.
func (s *Service) CreateAgent(ctx context.Context, userID, prompt, nftHash string) (string, error) {
	creator := core.NormalizeUserID(userID)

	existing, err := s.store.Authorizations.Get(nftHash)
	switch {
	case err == nil:
		if !existing.IsCreator(creator) {
			return "", fmt.Errorf("%w: NFT %s belongs to another creator", ErrNotAuthorized, nftHash)
		}
	case errors.Is(err, storage.ErrNotFound):
		existing = core.ChatAuthorization{Members: []string{}}
	default:
		return "", fmt.Errorf("failed to read authorization: %w", err)
	}

	cfg, err := s.analyzer.Analyze(ctx, prompt)
	if err != nil {
		return "", err
	}

	w, err := s.wallets.Create(ctx)
	if err != nil {
		return "", err
	}
	address := w.DefaultAddress()

	if err := s.store.AgentConfigs.Save(address, cfg); err != nil {
		return "", fmt.Errorf("failed to save agent config: %w", err)
	}
	if err := s.store.NFTs.Put(nftHash, w.ID()); err != nil {
		return "", fmt.Errorf("failed to store NFT mapping: %w", err)
	}
	auth := core.ChatAuthorization{Creator: creator, Members: existing.Members}
	if err := s.store.Authorizations.Put(nftHash, auth); err != nil {
		return "", fmt.Errorf("failed to store authorization: %w", err)
	}

	logger.L().Info("agent created",
		zap.String("nft_hash", nftHash),
		zap.String("wallet_id", w.ID()),
		zap.String("address", address),
		zap.String("creator", creator),
		zap.Strings("tools", cfg.Tools))
	s.events.Emit(core.EventAgentCreated, map[string]interface{}{
		"nft_hash":  nftHash,
		"wallet_id": w.ID(),
		"address":   address,
		"creator":   creator,
	})
	return address, nil
}

// authorize returns the NFT's authorization when userID may use it
func (s *Service) authorize(nftHash, userID string) (core.ChatAuthorization, error) {
	auth, err := s.store.Authorizations.Get(nftHash)
	if errors.Is(err, storage.ErrNotFound) {
		return auth, fmt.Errorf("%w: %s", ErrUnknownNFT, nftHash)
	}
	if err != nil {
		return auth, err
	}
	if !auth.Allows(userID) {
		return auth, ErrNotAuthorized
	}
	return auth, nil
}

// Interact runs prompt through the agent bound to nftHash. Authorization
// failures are returned as errors; everything after that is reported in the
// response text.
func (s *Service) Interact(ctx context.Context, nftHash, userID, prompt string) (*core.InteractResponse, error) {
	if _, err := s.authorize(nftHash, userID); err != nil {
		return nil, err
	}
	log := logger.L().With(zap.String("nft_hash", nftHash))

	walletID, err := s.store.NFTs.WalletID(nftHash)
	if err != nil {
		log.Warn("failed to resolve wallet for NFT", zap.Error(err))
		if errors.Is(err, storage.ErrEmptyFile) {
			return reply("Error: Empty file.", unknownAddress), nil
		}
		return reply("Error: NFT ID not found.", unknownAddress), nil
	}
	log = log.With(zap.String("wallet_id", walletID))

	convo, ok, err := s.store.Conversations.Last(walletID)
	if err != nil {
		log.Warn("failed to read last conversation", zap.Error(err))
	}
	if !ok {
		convo = core.FirstConversation
	}

	w, err := s.wallets.Load(ctx, walletID)
	if err != nil {
		log.Error("failed to load wallet", zap.Error(err))
		return reply(fmt.Sprintf("An unexpected error occurred: %v", err), unknownAddress), nil
	}
	address := w.DefaultAddress()

	cfg, err := s.loadConfig(address)
	if errors.Is(err, ErrAgentConfigMissing) {
		log.Warn("agent configuration missing", zap.String("address", address))
		return reply("Error: Agent configuration file not found.", address), nil
	}
	if err != nil {
		log.Error("failed to load agent configuration", zap.Error(err))
		return reply("Error: Failed to load agent configuration.", address), nil
	}

	a := s.chatAgent(w, cfg, convo)
	log.Info("running agent", zap.Int("tools", len(a.Tools)))
	answer, err := a.Run(ctx, prompt)
	if err != nil {
		log.Error("agent run failed", zap.Error(err))
		return reply(fmt.Sprintf("Error processing your request: %v", err), address), nil
	}

	if err := s.store.Conversations.Store(walletID, prompt, answer); err != nil {
		log.Error("failed to store conversation", zap.Error(err))
	}

	s.events.Emit(core.EventAgentInteraction, map[string]interface{}{
		"nft_hash":  nftHash,
		"wallet_id": walletID,
		"user_id":   core.NormalizeUserID(userID),
		"prompt":    prompt,
		"response":  answer,
	})
	return reply(answer, address), nil
}

func reply(text, address string) *core.InteractResponse {
	return &core.InteractResponse{Response: text, WalletAddress: address}
}

func (s *Service) loadConfig(address string) (core.AgentConfig, error) {
	cfg, err := s.store.AgentConfigs.Get(address)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrEmptyFile) {
		return cfg, fmt.Errorf("%w: %s", ErrAgentConfigMissing, address)
	}
	return cfg, err
}

// baseInstructions are given to every chat agent ahead of its own
var baseInstructions = []string{
	"Always display the balance when asked.",
	"As long as the prompt is not about transactions or balance, the answer should be long, thorough and based on the personality.",
	"Make sure that when you speak you are speaking according to your personality and as if you are in the middle of a conversation with the other person. Make sure there is a flow.",
	"Make the conversation as interactive and social as possible.",
	"Always search for real time data on the question asked and then answer.",
}

func (s *Service) chatAgent(w wallet.Wallet, cfg core.AgentConfig, convo string) *agent.Agent {
	tools := agent.WalletTools(w).Select([]string{agent.FuncGetBalance, agent.FuncTransferAsset})
	tools = append(tools, s.toolkit.Search())
	tools = append(tools, s.toolkit.Optional(cfg.Tools)...)

	instructions := append([]string{}, baseInstructions...)
	instructions = append(instructions,
		fmt.Sprintf("Your last conversation was %s.", convo),
		"Make sure you dont break the flow.")
	instructions = append(instructions, cfg.Instructions...)

	return &agent.Agent{
		Description:  cfg.Description(),
		Instructions: instructions,
		Tools:        tools,
		Provider:     s.provider,
		MaxTurns:     s.maxTurns,
	}
}

// WalletForNFT returns the wallet id mapped to nftHash
func (s *Service) WalletForNFT(ctx context.Context, nftHash string) (string, error) {
	walletID, err := s.store.NFTs.WalletID(nftHash)
	if errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrUnknownNFT, nftHash)
	}
	return walletID, err
}

// Mappings lists every NFT with its wallet, last conversation and personality
func (s *Service) Mappings(ctx context.Context) ([]core.AgentMapping, error) {
	nfts, err := s.store.NFTs.All()
	if err != nil {
		return nil, err
	}
	out := make([]core.AgentMapping, 0, len(nfts))
	for _, nftHash := range sortedKeys(nfts) {
		walletID := nfts[nftHash]
		entry := core.AgentMapping{
			NFTHash:      nftHash,
			WalletID:     walletID,
			Address:      s.address(walletID),
			Conversation: s.conversation(walletID),
		}
		if entry.Address != "" {
			if cfg, err := s.store.AgentConfigs.Get(entry.Address); err == nil {
				entry.Personality = &core.PersonalitySummary{Personality: cfg.Personality, Concepts: cfg.Concepts}
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// UserAgents lists the agents userID created or was added to
func (s *Service) UserAgents(ctx context.Context, userID string) (*core.UserAgentsResponse, error) {
	userID = core.NormalizeUserID(userID)
	auths, err := s.store.Authorizations.All()
	if err != nil {
		return nil, err
	}

	resp := &core.UserAgentsResponse{UserID: userID, Agents: []core.UserAgent{}}
	for _, nftHash := range sortedKeys(auths) {
		auth := auths[nftHash]
		if !auth.Allows(userID) {
			continue
		}
		walletID, err := s.store.NFTs.WalletID(nftHash)
		if err != nil {
			continue
		}
		entry := core.UserAgent{
			NFTHash:      nftHash,
			WalletID:     walletID,
			IsCreator:    auth.IsCreator(userID),
			Members:      auth.Members,
			Conversation: s.conversation(walletID),
			Address:      s.address(walletID),
		}
		entry.Personality = s.personality(entry.Address)
		entry.ParsedConversation = core.ParseConversation(entry.Conversation)
		if entry.ParsedConversation == nil {
			entry.ParsedConversation = []core.Turn{}
		}
		resp.Agents = append(resp.Agents, entry)
	}
	return resp, nil
}

// History returns the stored turns of an NFT's agent, paginated
func (s *Service) History(ctx context.Context, nftHash, userID string, limit, offset int) (*core.ConversationHistory, error) {
	auth, err := s.authorize(nftHash, userID)
	if err != nil {
		return nil, err
	}
	walletID, err := s.WalletForNFT(ctx, nftHash)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var turns []core.Turn
	stored, ok, err := s.store.Conversations.Last(walletID)
	if err != nil {
		return nil, fmt.Errorf("error parsing conversations: %w", err)
	}
	if ok {
		turns = core.ParseConversation(stored)
	}

	page := []core.Turn{}
	if offset < len(turns) {
		end := offset + limit
		if end > len(turns) {
			end = len(turns)
		}
		page = turns[offset:end]
	}

	address := s.address(walletID)
	return &core.ConversationHistory{
		NFTHash:            nftHash,
		WalletID:           walletID,
		WalletAddress:      address,
		Creator:            auth.Creator,
		Members:            auth.Members,
		Personality:        s.personality(address),
		TotalConversations: len(turns),
		Offset:             offset,
		Limit:              limit,
		Conversations:      page,
	}, nil
}

// AddMember lets the creator of nftHash grant memberID access
func (s *Service) AddMember(ctx context.Context, nftHash, creatorID, memberID string) (core.ChatAuthorization, error) {
	auth, err := s.store.Authorizations.Get(nftHash)
	if errors.Is(err, storage.ErrNotFound) {
		return auth, fmt.Errorf("%w: %s", ErrUnknownNFT, nftHash)
	}
	if err != nil {
		return auth, err
	}
	if !auth.IsCreator(creatorID) {
		return auth, fmt.Errorf("%w: only the creator can add members", ErrNotAuthorized)
	}
	updated, err := s.store.Authorizations.AddMember(nftHash, memberID)
	if err != nil {
		return auth, fmt.Errorf("failed to add member: %w", err)
	}
	logger.L().Info("member added", zap.String("nft_hash", nftHash), zap.String("member", core.NormalizeUserID(memberID)))
	s.events.Emit(core.EventMemberAdded, map[string]interface{}{
		"nft_hash": nftHash,
		"member":   core.NormalizeUserID(memberID),
	})
	return updated, nil
}

func (s *Service) address(walletID string) string {
	address, err := s.wallets.Address(walletID)
	if err != nil {
		return ""
	}
	return address
}

func (s *Service) conversation(walletID string) string {
	convo, ok, err := s.store.Conversations.Last(walletID)
	if err != nil || !ok {
		return core.NoConversation
	}
	return convo
}

func (s *Service) personality(address string) core.PersonalityDetail {
	if address == "" {
		return core.PersonalityDetail{}
	}
	cfg, err := s.store.AgentConfigs.Get(address)
	if err != nil {
		return core.PersonalityDetail{}
	}
	return core.PersonalityDetail{Description: cfg.Personality, Concepts: cfg.Concepts, Tools: cfg.Tools}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
