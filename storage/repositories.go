package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NethermindEth/aigent-launchpad/core"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"go.uber.org/zap"
)

// NFTRepository maps NFT hashes to wallet ids
type NFTRepository struct {
	b Bucket
}

func NewNFTRepository(b Bucket) *NFTRepository {
	return &NFTRepository{b: b}
}

func (r *NFTRepository) Put(nftHash, walletID string) error {
	return putJSON(r.b, nftHash, walletID)
}

// WalletID returns ErrNotFound for unknown NFTs
func (r *NFTRepository) WalletID(nftHash string) (string, error) {
	var walletID string
	if err := getJSON(r.b, nftHash, &walletID); err != nil {
		return "", err
	}
	return walletID, nil
}

func (r *NFTRepository) All() (map[string]string, error) {
	return decodeStrings(r.b)
}

// ConversationRepository keeps the latest turn per wallet id
type ConversationRepository struct {
	b Bucket
}

func NewConversationRepository(b Bucket) *ConversationRepository {
	return &ConversationRepository{b: b}
}

// Store overwrites whatever was stored for walletID
func (r *ConversationRepository) Store(walletID, prompt, response string) error {
	return putJSON(r.b, walletID, core.FormatTurn(prompt, response))
}

// Last returns the stored turn and whether one exists
func (r *ConversationRepository) Last(walletID string) (string, bool, error) {
	var convo string
	err := getJSON(r.b, walletID, &convo)
	switch {
	case err == nil:
		return convo, true, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrEmptyFile):
		return "", false, nil
	default:
		return "", false, err
	}
}

func (r *ConversationRepository) All() (map[string]string, error) {
	return decodeStrings(r.b)
}

// AgentConfigRepository stores personalities keyed by wallet address
type AgentConfigRepository struct {
	b Bucket
}

func NewAgentConfigRepository(b Bucket) *AgentConfigRepository {
	return &AgentConfigRepository{b: b}
}

func (r *AgentConfigRepository) Save(address string, cfg core.AgentConfig) error {
	return putJSON(r.b, address, cfg)
}

func (r *AgentConfigRepository) Get(address string) (core.AgentConfig, error) {
	var cfg core.AgentConfig
	err := getJSON(r.b, address, &cfg)
	return cfg, err
}

func (r *AgentConfigRepository) All() (map[string]core.AgentConfig, error) {
	raw, err := r.b.All()
	if err != nil {
		return nil, err
	}
	out := make(map[string]core.AgentConfig, len(raw))
	for address, v := range raw {
		var cfg core.AgentConfig
		if err := json.Unmarshal(v, &cfg); err != nil {
			logger.L().Warn("skipping malformed agent config", zap.String("address", address), zap.Error(err))
			continue
		}
		out[address] = cfg
	}
	return out, nil
}

// WalletRepository stores wallet records, their encrypted seeds and the id registry
type WalletRepository struct {
	records  Bucket
	seeds    Bucket
	registry Registry
}

func NewWalletRepository(records, seeds Bucket, registry Registry) *WalletRepository {
	return &WalletRepository{records: records, seeds: seeds, registry: registry}
}

// Save writes the record and registers its id
func (r *WalletRepository) Save(record core.WalletRecord) error {
	if record.WalletID == "" {
		return fmt.Errorf("%w: empty wallet id", ErrInvalidKey)
	}
	if err := putJSON(r.records, record.WalletID, record); err != nil {
		return err
	}
	return r.registry.Add(record.WalletID)
}

func (r *WalletRepository) Get(walletID string) (core.WalletRecord, error) {
	var record core.WalletRecord
	err := getJSON(r.records, walletID, &record)
	return record, err
}

// SaveSeed stores the encrypted seed document for a wallet
func (r *WalletRepository) SaveSeed(walletID string, sealed []byte) error {
	return r.seeds.Put(walletID, sealed)
}

func (r *WalletRepository) Seed(walletID string) ([]byte, error) {
	return r.seeds.Get(walletID)
}

func (r *WalletRepository) IDs() ([]string, error) {
	return r.registry.List()
}

func (r *WalletRepository) Registered(walletID string) (bool, error) {
	return r.registry.Contains(walletID)
}

// AuthorizationRepository persists who may talk to each NFT's agent
type AuthorizationRepository struct {
	b Bucket
}

func NewAuthorizationRepository(b Bucket) *AuthorizationRepository {
	return &AuthorizationRepository{b: b}
}

func (r *AuthorizationRepository) Put(nftHash string, auth core.ChatAuthorization) error {
	if auth.Members == nil {
		auth.Members = []string{}
	}
	return putJSON(r.b, nftHash, auth)
}

func (r *AuthorizationRepository) Get(nftHash string) (core.ChatAuthorization, error) {
	var auth core.ChatAuthorization
	err := getJSON(r.b, nftHash, &auth)
	if errors.Is(err, ErrEmptyFile) {
		err = ErrNotFound
	}
	return auth, err
}

// AddMember appends member to the NFT's member list. Adding an existing member is a no-op.
func (r *AuthorizationRepository) AddMember(nftHash, member string) (core.ChatAuthorization, error) {
	var updated core.ChatAuthorization
	err := r.b.Update(nftHash, func(old []byte) ([]byte, error) {
		if old == nil {
			return nil, ErrNotFound
		}
		if err := json.Unmarshal(old, &updated); err != nil {
			return nil, err
		}
		if !updated.IsCreator(member) && !updated.HasMember(member) {
			updated.Members = append(updated.Members, core.NormalizeUserID(member))
		}
		return json.Marshal(updated)
	})
	return updated, err
}

func (r *AuthorizationRepository) All() (map[string]core.ChatAuthorization, error) {
	raw, err := r.b.All()
	if err != nil {
		return nil, err
	}
	out := make(map[string]core.ChatAuthorization, len(raw))
	for nft, v := range raw {
		var auth core.ChatAuthorization
		if err := json.Unmarshal(v, &auth); err != nil {
			logger.L().Warn("skipping malformed authorization", zap.String("nft_hash", nft), zap.Error(err))
			continue
		}
		out[nft] = auth
	}
	return out, nil
}

// UserAgentsRepository stores the web3 manager agents created per user
type UserAgentsRepository struct {
	b Bucket
}

func NewUserAgentsRepository(b Bucket) *UserAgentsRepository {
	return &UserAgentsRepository{b: b}
}

func (r *UserAgentsRepository) Save(userID string, agents []core.BlendAgent) error {
	if agents == nil {
		agents = []core.BlendAgent{}
	}
	return putJSON(r.b, userID, agents)
}

func (r *UserAgentsRepository) Get(userID string) ([]core.BlendAgent, error) {
	var agents []core.BlendAgent
	err := getJSON(r.b, userID, &agents)
	return agents, err
}

func decodeStrings(b Bucket) (map[string]string, error) {
	raw, err := b.All()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			logger.L().Warn("skipping non-string value", zap.String("key", k), zap.Error(err))
			continue
		}
		out[k] = s
	}
	return out, nil
}
