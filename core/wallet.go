package core

// WalletRecord is the exported form of a wallet as persisted in the wallet store.
// Seed is only populated for records imported from the legacy layout; new
// records keep the seed in the encrypted seed store.
type WalletRecord struct {
	WalletID         string          `json:"wallet_id"`
	Seed             string          `json:"seed,omitempty"`
	NetworkID        string          `json:"network_id"`
	DefaultAddressID string          `json:"default_address_id,omitempty"`
	Addresses        []AddressRecord `json:"addresses,omitempty"`
}

type AddressRecord struct {
	AddressID string `json:"address_id"`
}

// Address returns the wallet's first address, falling back to the default address
func (r WalletRecord) Address() string {
	if len(r.Addresses) > 0 && r.Addresses[0].AddressID != "" {
		return r.Addresses[0].AddressID
	}
	return r.DefaultAddressID
}
