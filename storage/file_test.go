package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectFileCorruptResetsToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	writeFile(t, path, `{"nft-1": "wallet-1",`)

	f := NewObjectFile(path)
	_, err := f.Get("nft-1")
	assert.ErrorIs(t, err, ErrNotFound)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	all, err := f.All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestObjectFileEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	writeFile(t, path, "  \n")

	f := NewObjectFile(path)
	_, err := f.Get("nft-1")
	assert.ErrorIs(t, err, ErrEmptyFile)

	all, err := f.All()
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, f.Put("nft-1", []byte(`"wallet-1"`)))
	v, err := f.Get("nft-1")
	require.NoError(t, err)
	assert.Equal(t, `"wallet-1"`, string(v))
}

func TestObjectFileStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	writeFile(t, path, "\xEF\xBB\xBF{\"nft-1\": \"wallet-1\"}")

	v, err := NewObjectFile(path).Get("nft-1")
	require.NoError(t, err)
	assert.Equal(t, `"wallet-1"`, string(v))
}

func TestObjectFileRejectsInvalidJSON(t *testing.T) {
	f := NewObjectFile(filepath.Join(t.TempDir(), "map.json"))
	assert.Error(t, f.Put("k", []byte("not json")))
}

func TestObjectFileDelete(t *testing.T) {
	f := NewObjectFile(filepath.Join(t.TempDir(), "map.json"))
	require.NoError(t, f.Put("a", []byte(`1`)))
	require.NoError(t, f.Put("b", []byte(`2`)))
	require.NoError(t, f.Delete("a"))
	require.NoError(t, f.Delete("missing"))

	all, err := f.All()
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"b": []byte(`2`)}, all)
}

func TestDirBucket(t *testing.T) {
	dir := t.TempDir()
	b := NewDirBucket(dir, ".json")

	_, err := b.Get("../escape")
	assert.ErrorIs(t, err, ErrInvalidKey)

	require.NoError(t, b.Put("good", []byte(`{"a":1}`)))
	writeFile(t, filepath.Join(dir, "broken.json"), `{"a":`)
	writeFile(t, filepath.Join(dir, "notes.txt"), `ignored`)

	_, err = b.Get("broken")
	assert.Error(t, err)

	all, err := b.All()
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"good": []byte(`{"a":1}`)}, all)

	require.NoError(t, b.Delete("good"))
	_, err = b.Get("good")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirBucketMissingDir(t *testing.T) {
	all, err := NewDirBucket(filepath.Join(t.TempDir(), "nope"), ".json").All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLineRegistry(t *testing.T) {
	r := NewLineRegistry(filepath.Join(t.TempDir(), "wallet_storage", "wallet_registry.txt"))

	ids, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, r.Add("w1"))
	require.NoError(t, r.Add("w2"))
	require.NoError(t, r.Add("w1"))

	ids, err = r.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w2"}, ids)

	ok, err := r.Contains("w3")
	require.NoError(t, err)
	assert.False(t, ok)
}
