package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/NethermindEth/aigent-launchpad/logger"
	"github.com/NethermindEth/aigent-launchpad/utils"
	"go.uber.org/zap"
)

// ObjectFile is a bucket backed by a single JSON object file, e.g. map.json.
// Every write rewrites the whole file atomically.
type ObjectFile struct {
	path string
	mu   sync.Mutex
}

func NewObjectFile(path string) *ObjectFile {
	return &ObjectFile{path: path}
}

// load reads the object. Unparsable content is logged and replaced with {} on disk.
func (f *ObjectFile) load() (map[string]json.RawMessage, bool, error) {
	data := map[string]json.RawMessage{}

	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return data, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	raw = bytes.TrimSpace(utils.StripBOM(raw))
	if len(raw) == 0 {
		return data, true, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.L().Warn("could not parse object file, resetting to empty object",
			zap.String("path", f.path), zap.Error(err))
		data = map[string]json.RawMessage{}
		if err := f.save(data); err != nil {
			return nil, false, err
		}
		return data, false, nil
	}
	return data, false, nil
}

func (f *ObjectFile) save(data map[string]json.RawMessage) error {
	out, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", f.path, err)
	}
	return utils.WriteFileAtomic(f.path, out, 0o644)
}

func (f *ObjectFile) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, empty, err := f.load()
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, ErrEmptyFile
	}
	v, ok := data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

func (f *ObjectFile) Put(key string, value []byte) error {
	return f.Update(key, func([]byte) ([]byte, error) { return value, nil })
}

func (f *ObjectFile) Update(key string, fn func(old []byte) ([]byte, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, _, err := f.load()
	if err != nil {
		return err
	}
	var old []byte
	if v, ok := data[key]; ok {
		old = []byte(v)
	}
	value, err := fn(old)
	if err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}
	data[key] = json.RawMessage(value)
	return f.save(data)
}

func (f *ObjectFile) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, _, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.save(data)
}

func (f *ObjectFile) All() (map[string][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, _, err := f.load()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(data))
	for k, v := range data {
		out[k] = []byte(v)
	}
	return out, nil
}

// DirBucket stores one JSON file per key, e.g. wallet_storage/<id>.json
type DirBucket struct {
	dir     string
	suffix  string
	exclude []string
	mu      sync.Mutex
}

// NewDirBucket stores keys as dir/<key><suffix>. Files matching any of the
// exclude suffixes are ignored by All.
func NewDirBucket(dir, suffix string, exclude ...string) *DirBucket {
	return &DirBucket{dir: dir, suffix: suffix, exclude: exclude}
}

func (d *DirBucket) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(d.dir, key+d.suffix), nil
}

func (d *DirBucket) read(key string) ([]byte, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	raw = bytes.TrimSpace(utils.StripBOM(raw))
	if !json.Valid(raw) {
		return nil, fmt.Errorf("corrupt JSON in %s", p)
	}
	return raw, nil
}

func (d *DirBucket) Get(key string) ([]byte, error) {
	return d.read(key)
}

func (d *DirBucket) Put(key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.write(key, value)
}

func (d *DirBucket) write(key string, value []byte) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(p, value, 0o600)
}

func (d *DirBucket) Update(key string, fn func(old []byte) ([]byte, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	old, err := d.read(key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	value, err := fn(old)
	if err != nil {
		return err
	}
	return d.write(key, value)
}

func (d *DirBucket) Delete(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (d *DirBucket) All() (map[string][]byte, error) {
	entries, err := os.ReadDir(d.dir)
	if errors.Is(err, os.ErrNotExist) {
		return map[string][]byte{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, d.suffix) || d.excluded(name) {
			continue
		}
		key := strings.TrimSuffix(name, d.suffix)
		v, err := d.read(key)
		if err != nil {
			logger.L().Warn("skipping unreadable record", zap.String("dir", d.dir), zap.String("key", key), zap.Error(err))
			continue
		}
		out[key] = v
	}
	return out, nil
}

func (d *DirBucket) excluded(name string) bool {
	for _, s := range d.exclude {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// LineRegistry is a text file with one id per line, e.g. wallet_registry.txt
type LineRegistry struct {
	path string
	mu   sync.Mutex
}

func NewLineRegistry(path string) *LineRegistry {
	return &LineRegistry{path: path}
}

func (r *LineRegistry) List() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list()
}

func (r *LineRegistry) list() ([]string, error) {
	file, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var ids []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			ids = append(ids, line)
		}
	}
	return ids, scanner.Err()
}

func (r *LineRegistry) Contains(id string) (bool, error) {
	ids, err := r.List()
	if err != nil {
		return false, err
	}
	for _, existing := range ids {
		if existing == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *LineRegistry) Add(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := r.list()
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = fmt.Fprintln(file, id)
	return err
}
