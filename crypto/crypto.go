package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashData creates a SHA256 hash of the input data
func HashData(data string) string {
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// SeedPassphrase derives the passphrase that encrypts one wallet's seed file
func SeedPassphrase(masterKey, walletID string) string {
	mac := hmac.New(sha256.New, []byte(masterKey))
	mac.Write([]byte(walletID))
	return hex.EncodeToString(mac.Sum(nil))
}

// ShortID returns a short stable fingerprint used in log lines instead of raw ids
func ShortID(id string) string {
	return HashData(id)[:12]
}

// NewMasterKey returns 32 random bytes hex encoded, suitable for WALLET_MASTER_KEY
func NewMasterKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(key), nil
}
