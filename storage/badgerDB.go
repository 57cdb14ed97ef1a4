package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NethermindEth/aigent-launchpad/config"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// BadgerDBConfig holds the settings OpenDBStorage needs
type BadgerDBConfig struct {
	DataDir    string
	Quiet      bool // drop badger's own log output
	InMemory   bool
	SyncWrites bool
	GCInterval time.Duration // 0 disables value log GC
}

// BadgerConfigFor derives badger settings from the storage section.
// In-memory databases are always quiet and never run value log GC.
func BadgerConfigFor(cfg config.StorageConfig) BadgerDBConfig {
	c := BadgerDBConfig{
		DataDir:    cfg.DataDir,
		InMemory:   cfg.InMemory,
		SyncWrites: cfg.SyncWrites,
		GCInterval: time.Duration(cfg.GCInterval) * time.Second,
	}
	if cfg.InMemory {
		c.Quiet = true
		c.GCInterval = 0
	}
	return c
}

type DBMetrics struct {
	PutCount         int64
	GetCount         int64
	DeleteCount      int64
	GetByPrefixCount int64
	Errors           int64
}

// DBStorage represents a persistent storage using BadgerDB
type DBStorage struct {
	db      *badger.DB
	mu      sync.Mutex // serializes writers so read-modify-write never conflicts
	config  BadgerDBConfig
	metrics DBMetrics
	stop    chan struct{}
	closed  sync.Once
}

// OpenDBStorage opens (or creates) the badger database under config.DataDir/badgerdb
func OpenDBStorage(config BadgerDBConfig) (*DBStorage, error) {
	dbPath := filepath.Join(config.DataDir, "badgerdb")
	if config.InMemory {
		dbPath = ""
	}

	opts := badger.DefaultOptions(dbPath)
	if config.Quiet {
		opts.Logger = nil
	} else {
		opts.Logger = newBadgerLogger(logger.L())
	}
	opts.InMemory = config.InMemory
	opts.SyncWrites = config.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}

	s := &DBStorage{
		db:     db,
		config: config,
		stop:   make(chan struct{}),
	}
	if config.GCInterval > 0 && !config.InMemory {
		go s.startGCRoutine(config.GCInterval)
	}
	return s, nil
}

func (s *DBStorage) startGCRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.RunGC(); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				logger.L().Warn("BadgerDB GC failed", zap.Error(err))
			}
		}
	}
}

// Close stops the GC routine and closes the database
func (s *DBStorage) Close() error {
	var err error
	s.closed.Do(func() {
		close(s.stop)
		if s.db != nil {
			err = s.db.Close()
		}
	})
	return err
}

func (s *DBStorage) logOperation(op string, key string, err error) {
	if err != nil && !errors.Is(err, ErrNotFound) {
		logger.L().Error("BadgerDB operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
		atomic.AddInt64(&s.metrics.Errors, 1)
	}
}

// Metrics returns a snapshot of the operation counters
func (s *DBStorage) Metrics() DBMetrics {
	return DBMetrics{
		PutCount:         atomic.LoadInt64(&s.metrics.PutCount),
		GetCount:         atomic.LoadInt64(&s.metrics.GetCount),
		DeleteCount:      atomic.LoadInt64(&s.metrics.DeleteCount),
		GetByPrefixCount: atomic.LoadInt64(&s.metrics.GetByPrefixCount),
		Errors:           atomic.LoadInt64(&s.metrics.Errors),
	}
}

// Put stores a key-value pair in the database
func (s *DBStorage) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	atomic.AddInt64(&s.metrics.PutCount, 1)

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	s.logOperation("put", key, err)
	return err
}

// Get retrieves a value from the database by key. A missing key is ErrNotFound.
func (s *DBStorage) Get(key string) ([]byte, error) {
	atomic.AddInt64(&s.metrics.GetCount, 1)

	var valCopy []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		valCopy, err = item.ValueCopy(nil)
		return err
	})
	s.logOperation("get", key, err)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get value: %w", err)
	}
	return valCopy, nil
}

// Delete removes a key-value pair from the database
func (s *DBStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	atomic.AddInt64(&s.metrics.DeleteCount, 1)

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	s.logOperation("delete", key, err)
	return err
}

// Update runs fn on the current value of key (nil when missing) and stores
// the result, all inside one transaction.
func (s *DBStorage) Update(key string, fn func(old []byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	atomic.AddInt64(&s.metrics.PutCount, 1)

	err := s.db.Update(func(txn *badger.Txn) error {
		var old []byte
		item, err := txn.Get([]byte(key))
		switch {
		case err == nil:
			if old, err = item.ValueCopy(nil); err != nil {
				return err
			}
		case errors.Is(err, badger.ErrKeyNotFound):
		default:
			return err
		}

		value, err := fn(old)
		if err != nil {
			return err
		}
		return txn.Set([]byte(key), value)
	})
	s.logOperation("update", key, err)
	return err
}

// GetByPrefix retrieves all key-value pairs with a given prefix
func (s *DBStorage) GetByPrefix(prefix string) (map[string][]byte, error) {
	atomic.AddInt64(&s.metrics.GetByPrefixCount, 1)

	result := make(map[string][]byte)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[string(item.KeyCopy(nil))] = v
		}
		return nil
	})
	s.logOperation("get_by_prefix", prefix, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get values by prefix: %w", err)
	}
	return result, nil
}

// DeleteByPrefix deletes all key-value pairs with a given prefix
func (s *DBStorage) DeleteByPrefix(prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.DropPrefix([]byte(prefix))
	s.logOperation("delete_by_prefix", prefix, err)
	return err
}

// PutObject serializes and stores an object in the database
func (s *DBStorage) PutObject(key string, obj interface{}) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal object: %w", err)
	}
	return s.Put(key, data)
}

// GetObject retrieves and deserializes an object from the database
func (s *DBStorage) GetObject(key string, obj interface{}) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, obj); err != nil {
		return fmt.Errorf("failed to unmarshal object: %w", err)
	}
	return nil
}

// RunGC runs garbage collection on the database
func (s *DBStorage) RunGC() error {
	return s.db.RunValueLogGC(0.5) // Clean up if at least 50% can be discarded
}

// Bucket returns a view of the keys stored under "name:"
func (s *DBStorage) Bucket(name string) Bucket {
	return &prefixBucket{db: s, prefix: name + ":"}
}

type prefixBucket struct {
	db     *DBStorage
	prefix string
}

func (b *prefixBucket) Get(key string) ([]byte, error) {
	return b.db.Get(b.prefix + key)
}

func (b *prefixBucket) Put(key string, value []byte) error {
	return b.db.Put(b.prefix+key, value)
}

func (b *prefixBucket) Delete(key string) error {
	return b.db.Delete(b.prefix + key)
}

func (b *prefixBucket) Update(key string, fn func(old []byte) ([]byte, error)) error {
	return b.db.Update(b.prefix+key, fn)
}

func (b *prefixBucket) All() (map[string][]byte, error) {
	raw, err := b.db.GetByPrefix(b.prefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(raw))
	for k, v := range raw {
		out[strings.TrimPrefix(k, b.prefix)] = v
	}
	return out, nil
}
