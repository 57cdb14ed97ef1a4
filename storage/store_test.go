package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/NethermindEth/aigent-launchpad/config"
	"github.com/NethermindEth/aigent-launchpad/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBackends(t *testing.T) map[string]*Store {
	t.Helper()

	badgerStore, err := OpenStore(config.StorageConfig{Backend: "badger", InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { badgerStore.Close() })

	fileStore, err := OpenStore(config.StorageConfig{Backend: "file", DataDir: t.TempDir()})
	require.NoError(t, err)

	return map[string]*Store{"badger": badgerStore, "file": fileStore}
}

func TestRoundTrip(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.NFTs.Put("nft-1", "wallet-1"))
			walletID, err := s.NFTs.WalletID("nft-1")
			require.NoError(t, err)
			assert.Equal(t, "wallet-1", walletID)

			cfg := core.AgentConfig{
				Personality: "Cheerful pirate. ",
				Concepts:    core.StringList{"sailing", "defi"},
				Tools:       []string{"Calculator"},
			}
			require.NoError(t, s.AgentConfigs.Save("0xabc", cfg))
			got, err := s.AgentConfigs.Get("0xabc")
			require.NoError(t, err)
			assert.Equal(t, cfg, got)

			record := core.WalletRecord{
				WalletID:         "wallet-1",
				NetworkID:        "base-sepolia",
				DefaultAddressID: "0xabc",
				Addresses:        []core.AddressRecord{{AddressID: "0xabc"}},
			}
			require.NoError(t, s.Wallets.Save(record))
			gotRecord, err := s.Wallets.Get("wallet-1")
			require.NoError(t, err)
			assert.Equal(t, record, gotRecord)

			require.NoError(t, s.Wallets.SaveSeed("wallet-1", []byte(`{"crypto":{}}`)))
			seed, err := s.Wallets.Seed("wallet-1")
			require.NoError(t, err)
			assert.JSONEq(t, `{"crypto":{}}`, string(seed))

			agents := []core.BlendAgent{{Name: "agent1", Functions: []string{"get_balance"}, WalletAddress: "0xabc", WalletID: "wallet-1", UserID: "u"}}
			require.NoError(t, s.UserAgents.Save("u", agents))
			gotAgents, err := s.UserAgents.Get("u")
			require.NoError(t, err)
			assert.Equal(t, agents, gotAgents)
		})
	}
}

func TestMissingKeyIsNotFound(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.NFTs.WalletID("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.AgentConfigs.Get("0xmissing")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.Wallets.Get("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.Authorizations.Get("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.UserAgents.Get("nobody")
			assert.ErrorIs(t, err, ErrNotFound)

			convo, ok, err := s.Conversations.Last("missing")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, convo)
		})
	}
}

func TestDistinctNFTsNeverCollide(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for _, pair := range [][2]string{{"nft-a", "wallet-a"}, {"nft-b", "wallet-b"}} {
				wg.Add(1)
				go func(nft, wallet string) {
					defer wg.Done()
					assert.NoError(t, s.NFTs.Put(nft, wallet))
				}(pair[0], pair[1])
			}
			wg.Wait()

			all, err := s.NFTs.All()
			require.NoError(t, err)
			assert.Equal(t, map[string]string{"nft-a": "wallet-a", "nft-b": "wallet-b"}, all)
		})
	}
}

func TestConversationOverwrite(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Conversations.Store("wallet-1", "first?", "one"))
			require.NoError(t, s.Conversations.Store("wallet-1", "second?", "two"))

			convo, ok, err := s.Conversations.Last("wallet-1")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "Question:second?,answer: two", convo)
			assert.NotContains(t, convo, "first?")
		})
	}
}

func TestAuthorizationAddMember(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Authorizations.AddMember("nft-1", "0xmember")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Authorizations.Put("nft-1", core.ChatAuthorization{Creator: "0xcreator"}))
			auth, err := s.Authorizations.AddMember("nft-1", "0xMEMBER")
			require.NoError(t, err)
			assert.Equal(t, []string{"0xmember"}, auth.Members)

			// duplicates and the creator are not added again
			_, err = s.Authorizations.AddMember("nft-1", "0xmember")
			require.NoError(t, err)
			auth, err = s.Authorizations.AddMember("nft-1", "0xcreator")
			require.NoError(t, err)
			assert.Equal(t, []string{"0xmember"}, auth.Members)

			stored, err := s.Authorizations.Get("nft-1")
			require.NoError(t, err)
			assert.True(t, stored.Allows("0xmember"))
		})
	}
}

func TestWalletRegistry(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"w1", "w2", "w1"} {
				require.NoError(t, s.Wallets.Save(core.WalletRecord{WalletID: id, NetworkID: "base-sepolia"}))
			}
			ids, err := s.Wallets.IDs()
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"w1", "w2"}, ids)

			ok, err := s.Wallets.Registered("w2")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestFileLayoutMatchesLegacy(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenStore(config.StorageConfig{Backend: "file", DataDir: dir})
	require.NoError(t, err)

	require.NoError(t, s.NFTs.Put("nft-1", "wallet-1"))
	require.NoError(t, s.Wallets.Save(core.WalletRecord{WalletID: "wallet-1", NetworkID: "base-sepolia"}))
	require.NoError(t, s.Wallets.SaveSeed("wallet-1", []byte(`{}`)))
	require.NoError(t, s.AgentConfigs.Save("0xabc", core.AgentConfig{Personality: "p"}))

	for _, p := range []string{
		"map.json",
		"wallet_storage/wallet-1.json",
		"wallet_storage/wallet-1_seed.json",
		"wallet_storage/wallet_registry.txt",
		"DB/0xabc.json",
	} {
		assert.FileExists(t, filepath.Join(dir, p))
	}

	// seed files are not listed as wallet records
	ids, err := s.set.walletRecords.All()
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestImportLegacy(t *testing.T) {
	legacy := t.TempDir()
	writeFile(t, filepath.Join(legacy, "map.json"), `{"nft-1": "wallet-1"}`)
	writeFile(t, filepath.Join(legacy, "conversations.json"), `{"wallet-1": "Question:hi,answer: hello"}`)
	writeFile(t, filepath.Join(legacy, "wallet_storage", "wallet-1.json"),
		`{"wallet_id":"wallet-1","seed":"abcd","network_id":"base-sepolia","default_address_id":"0xabc","addresses":[{"address_id":"0xabc"}]}`)
	writeFile(t, filepath.Join(legacy, "wallet_storage", "wallet_registry.txt"), "wallet-1\n")
	writeFile(t, filepath.Join(legacy, "DB", "0xabc.json"), `{"Personality":"Calm. ","Concepts":["art"],"Tools":["Calculator"],"Instructions":["Be kind."]}`)
	writeFile(t, filepath.Join(legacy, "user_data", "0xuser.json"), `[{"name":"agent1","functions":["get_balance"],"wallet_address":"0xdef","wallet_id":"wallet-2","user_id":"0xuser"}]`)

	s, err := OpenStore(config.StorageConfig{Backend: "badger", InMemory: true})
	require.NoError(t, err)
	defer s.Close()

	stats, err := s.ImportLegacy(legacy)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{NFTs: 1, Conversations: 1, AgentConfigs: 1, Wallets: 1, UserAgents: 1}, stats)

	walletID, err := s.NFTs.WalletID("nft-1")
	require.NoError(t, err)
	assert.Equal(t, "wallet-1", walletID)

	record, err := s.Wallets.Get("wallet-1")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", record.Address())
	assert.Equal(t, "abcd", record.Seed)

	cfg, err := s.AgentConfigs.Get("0xabc")
	require.NoError(t, err)
	assert.Equal(t, core.StringList{"Be kind."}, cfg.Instructions)

	ids, err := s.Wallets.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"wallet-1"}, ids)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
