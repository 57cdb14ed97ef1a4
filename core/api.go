package core

// CreateAgentRequest is the body of POST /aigent/create-agent/:user_id
type CreateAgentRequest struct {
	Prompt  string `json:"prompt" binding:"required"`
	NFTHash string `json:"nftHash" binding:"required"`
}

type WalletAddressResponse struct {
	WalletAddress string `json:"walletAddress"`
}

// InteractRequest is the body of POST /aigent/agent-interact/:nft_hash/:user_id.
// The path parameters win over NFTHash and UserID.
type InteractRequest struct {
	Prompt  string `json:"prompt" binding:"required"`
	NFTHash string `json:"nftHash"`
	UserID  string `json:"userId"`
}

type InteractResponse struct {
	Response      string   `json:"response"`
	IsMetaMask    bool     `json:"isMetaMask"`
	WalletAddress string   `json:"walletAddress"`
	Value         *float64 `json:"value"`
	Responses     int      `json:"Responses"`
}

type AddMemberRequest struct {
	Member string `json:"member" binding:"required"`
}

// PersonalitySummary is the short personality shown in agent mappings
type PersonalitySummary struct {
	Personality string     `json:"personality"`
	Concepts    StringList `json:"concepts"`
}

// PersonalityDetail is the personality shown to users who can access an agent
type PersonalityDetail struct {
	Description string     `json:"description,omitempty"`
	Concepts    StringList `json:"concepts,omitempty"`
	Tools       []string   `json:"tools,omitempty"`
}

type AgentMapping struct {
	NFTHash      string              `json:"nft_hash"`
	WalletID     string              `json:"wallet_id"`
	Address      string              `json:"address"`
	Conversation string              `json:"conversation"`
	Personality  *PersonalitySummary `json:"personality,omitempty"`
}

type UserAgent struct {
	NFTHash            string            `json:"nft_hash"`
	WalletID           string            `json:"wallet_id"`
	IsCreator          bool              `json:"is_creator"`
	Members            []string          `json:"members"`
	Conversation       string            `json:"conversation"`
	Address            string            `json:"address"`
	Personality        PersonalityDetail `json:"personality"`
	ParsedConversation []Turn            `json:"parsed_conversation"`
}

type UserAgentsResponse struct {
	UserID string      `json:"user_id"`
	Agents []UserAgent `json:"agents"`
}

type ConversationHistory struct {
	NFTHash            string            `json:"nft_hash"`
	WalletID           string            `json:"wallet_id"`
	WalletAddress      string            `json:"wallet_address"`
	Creator            string            `json:"creator"`
	Members            []string          `json:"members"`
	Personality        PersonalityDetail `json:"personality"`
	TotalConversations int               `json:"total_conversations"`
	Offset             int               `json:"offset"`
	Limit              int               `json:"limit"`
	Conversations      []Turn            `json:"conversations"`
}

// BlendAgent is one web3 manager agent as stored per user
type BlendAgent struct {
	Name          string   `json:"name"`
	Functions     []string `json:"functions"`
	WalletAddress string   `json:"wallet_address"`
	WalletID      string   `json:"wallet_id,omitempty"`
	UserID        string   `json:"user_id"`
}

type PromptRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type CreateAgentsResponse struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	AgentCount int          `json:"agent_count"`
	Agents     []BlendAgent `json:"agents"`
}

type RunAgentRequest struct {
	AgentIndex int      `json:"agent_index"`
	Prompt     string   `json:"prompt" binding:"required"`
	WalletID   string   `json:"wallet_id" binding:"required"`
	Functions  []string `json:"functions"`
}

type RunAgentResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
}

// Event is published on the websocket hub and the broker
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	EventAgentCreated     = "AGENT_CREATED"
	EventAgentInteraction = "AGENT_INTERACTION"
	EventMemberAdded      = "MEMBER_ADDED"
	EventBlendAgents      = "BLEND_AGENTS_CREATED"
	EventBlendRun         = "BLEND_AGENT_RUN"
)
