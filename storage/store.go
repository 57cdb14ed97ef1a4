package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/NethermindEth/aigent-launchpad/config"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"go.uber.org/zap"
)

// Legacy file layout, relative to the data directory
const (
	mapFile            = "map.json"
	conversationsFile  = "conversations.json"
	authorizationsFile = "authorizations.json"
	walletDir          = "wallet_storage"
	walletRegistryFile = "wallet_registry.txt"
	seedSuffix         = "_seed.json"
	agentConfigDir     = "DB"
	userDataDir        = "user_data"
)

// Store bundles every repository the service needs over one backend
type Store struct {
	NFTs           *NFTRepository
	Conversations  *ConversationRepository
	AgentConfigs   *AgentConfigRepository
	Wallets        *WalletRepository
	Authorizations *AuthorizationRepository
	UserAgents     *UserAgentsRepository

	backend string
	db      *DBStorage
	set     bucketSet
}

type bucketSet struct {
	nfts, conversations, agentConfigs, walletRecords, seeds, authorizations, userAgents Bucket
	registry                                                                          Registry
}

// OpenStore opens the backend named in cfg
func OpenStore(cfg config.StorageConfig) (*Store, error) {
	switch cfg.Backend {
	case "badger", "":
		db, err := OpenDBStorage(BadgerConfigFor(cfg))
		if err != nil {
			return nil, err
		}
		s := newStore("badger", badgerBuckets(db))
		s.db = db
		return s, nil
	case "file":
		return newStore("file", fileBuckets(cfg.DataDir)), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func badgerBuckets(db *DBStorage) bucketSet {
	return bucketSet{
		nfts:           db.Bucket("nft"),
		conversations:  db.Bucket("conversation"),
		agentConfigs:   db.Bucket("agent_config"),
		walletRecords:  db.Bucket("wallet"),
		seeds:          db.Bucket("wallet_seed"),
		authorizations: db.Bucket("authorization"),
		userAgents:     db.Bucket("user_agents"),
		registry:       &bucketRegistry{b: db.Bucket("wallet_registry")},
	}
}

func fileBuckets(dir string) bucketSet {
	wallets := filepath.Join(dir, walletDir)
	return bucketSet{
		nfts:           NewObjectFile(filepath.Join(dir, mapFile)),
		conversations:  NewObjectFile(filepath.Join(dir, conversationsFile)),
		agentConfigs:   NewDirBucket(filepath.Join(dir, agentConfigDir), ".json"),
		walletRecords:  NewDirBucket(wallets, ".json", seedSuffix),
		seeds:          NewDirBucket(wallets, seedSuffix),
		authorizations: NewObjectFile(filepath.Join(dir, authorizationsFile)),
		userAgents:     NewDirBucket(filepath.Join(dir, userDataDir), ".json"),
		registry:       NewLineRegistry(filepath.Join(wallets, walletRegistryFile)),
	}
}

func newStore(backend string, set bucketSet) *Store {
	return &Store{
		NFTs:           NewNFTRepository(set.nfts),
		Conversations:  NewConversationRepository(set.conversations),
		AgentConfigs:   NewAgentConfigRepository(set.agentConfigs),
		Wallets:        NewWalletRepository(set.walletRecords, set.seeds, set.registry),
		Authorizations: NewAuthorizationRepository(set.authorizations),
		UserAgents:     NewUserAgentsRepository(set.userAgents),
		backend:        backend,
		set:            set,
	}
}

func (s *Store) Backend() string {
	return s.backend
}

// DB returns the badger handle, nil for the file backend
func (s *Store) DB() *DBStorage {
	return s.db
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ImportStats counts the records copied by ImportLegacy
type ImportStats struct {
	NFTs           int `json:"nfts"`
	Conversations  int `json:"conversations"`
	AgentConfigs   int `json:"agent_configs"`
	Wallets        int `json:"wallets"`
	Seeds          int `json:"seeds"`
	Authorizations int `json:"authorizations"`
	UserAgents     int `json:"user_agents"`
}

// ImportLegacy copies a legacy JSON file tree rooted at dir into this store.
// Existing keys are overwritten.
func (s *Store) ImportLegacy(dir string) (ImportStats, error) {
	var stats ImportStats
	src := fileBuckets(dir)

	copies := []struct {
		name     string
		from, to Bucket
		count    *int
	}{
		{"nfts", src.nfts, s.set.nfts, &stats.NFTs},
		{"conversations", src.conversations, s.set.conversations, &stats.Conversations},
		{"agent_configs", src.agentConfigs, s.set.agentConfigs, &stats.AgentConfigs},
		{"wallets", src.walletRecords, s.set.walletRecords, &stats.Wallets},
		{"seeds", src.seeds, s.set.seeds, &stats.Seeds},
		{"authorizations", src.authorizations, s.set.authorizations, &stats.Authorizations},
		{"user_agents", src.userAgents, s.set.userAgents, &stats.UserAgents},
	}
	for _, c := range copies {
		n, err := copyBucket(c.from, c.to)
		*c.count = n
		if err != nil {
			return stats, fmt.Errorf("import %s: %w", c.name, err)
		}
	}

	ids, err := src.registry.List()
	if err != nil {
		return stats, fmt.Errorf("import wallet registry: %w", err)
	}
	records, err := src.walletRecords.All()
	if err != nil {
		return stats, err
	}
	for id := range records {
		ids = append(ids, id)
	}
	for _, id := range ids {
		if err := s.set.registry.Add(id); err != nil {
			return stats, fmt.Errorf("import wallet registry: %w", err)
		}
	}

	logger.L().Info("imported legacy data", zap.String("dir", dir), zap.Any("stats", stats))
	return stats, nil
}

func copyBucket(from, to Bucket) (int, error) {
	all, err := from.All()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for k, v := range all {
		if err := to.Put(k, v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
