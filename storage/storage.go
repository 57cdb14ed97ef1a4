package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNotFound is returned when a key is not present
	ErrNotFound = errors.New("not found")
	// ErrEmptyFile is returned when reading a key from an object file that is empty
	ErrEmptyFile = errors.New("empty file")
	// ErrInvalidKey is returned for keys that cannot be used as file names
	ErrInvalidKey = errors.New("invalid key")
)

// Bucket is a flat key-value namespace. Values are JSON documents.
type Bucket interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	// Update applies fn to the current value (nil when missing) and stores the result atomically
	Update(key string, fn func(old []byte) ([]byte, error)) error
	All() (map[string][]byte, error)
}

// Registry is an ordered, duplicate free list of ids
type Registry interface {
	Add(id string) error
	Contains(id string) (bool, error)
	List() ([]string, error)
}

func getJSON(b Bucket, key string, v interface{}) error {
	data, err := b.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return nil
}

func putJSON(b Bucket, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return b.Put(key, data)
}

// bucketRegistry keeps a registry inside a bucket, one key per id
type bucketRegistry struct {
	b Bucket
}

func (r *bucketRegistry) Add(id string) error {
	return r.b.Update(id, func(old []byte) ([]byte, error) {
		if old != nil {
			return old, nil
		}
		return []byte("true"), nil
	})
}

func (r *bucketRegistry) Contains(id string) (bool, error) {
	_, err := r.b.Get(id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *bucketRegistry) List() ([]string, error) {
	all, err := r.b.All()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
