package core

import (
	"encoding/json"
	"strings"
)

// AgentConfig is the personality record stored per wallet address
type AgentConfig struct {
	Personality  string     `json:"Personality"`
	Concepts     StringList `json:"Concepts"`
	Tools        []string   `json:"Tools"`
	Instructions StringList `json:"Instructions,omitempty"`
}

// Description is the system description handed to the chat model
func (c AgentConfig) Description() string {
	return c.Personality + "You have very in depth knowledge in the fields of " + c.Concepts.String()
}

// StringList accepts either a JSON array of strings or a single string.
// Older records stored concepts as one comma separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = nil
	for _, part := range strings.Split(single, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

func (l StringList) String() string {
	return strings.Join(l, ", ")
}

// ChatAuthorization gates who may talk to an NFT's agent
type ChatAuthorization struct {
	Creator string   `json:"creator"`
	Members []string `json:"members"`
}

// Allows reports whether userID is the creator or a member. Ids are compared lowercased.
func (a ChatAuthorization) Allows(userID string) bool {
	return a.IsCreator(userID) || a.HasMember(userID)
}

func (a ChatAuthorization) IsCreator(userID string) bool {
	return a.Creator == NormalizeUserID(userID)
}

func (a ChatAuthorization) HasMember(userID string) bool {
	id := NormalizeUserID(userID)
	for _, m := range a.Members {
		if m == id {
			return true
		}
	}
	return false
}

// NormalizeUserID lowercases and trims a user id (usually a wallet address)
func NormalizeUserID(userID string) string {
	return strings.ToLower(strings.TrimSpace(userID))
}
