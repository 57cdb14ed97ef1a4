package handlers

import (
	"net/http"
	"strconv"

	"github.com/NethermindEth/aigent-launchpad/aigent"
	"github.com/NethermindEth/aigent-launchpad/core"
	"github.com/gin-gonic/gin"
)

// AigentHandler serves the NFT-bound chat agent routes
type AigentHandler struct {
	svc *aigent.Service
}

func NewAigentHandler(svc *aigent.Service) *AigentHandler {
	return &AigentHandler{svc: svc}
}

// CreateAgent provisions a wallet and personality for an NFT
func (h *AigentHandler) CreateAgent(c *gin.Context) {
	var req core.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	address, err := h.svc.CreateAgent(c.Request.Context(), c.Param("user_id"), req.Prompt, req.NFTHash)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, core.WalletAddressResponse{WalletAddress: address})
}

// Interact sends a prompt to the agent of an NFT
func (h *AigentHandler) Interact(c *gin.Context) {
	var req core.InteractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.svc.Interact(c.Request.Context(), c.Param("nft_hash"), c.Param("user_id"), req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AigentHandler) FetchAgentMappings(c *gin.Context) {
	mappings, err := h.svc.Mappings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mappings)
}

func (h *AigentHandler) TestGetWallet(c *gin.Context) {
	nftHash := c.Param("nft_hash")
	walletID, err := h.svc.WalletForNFT(c.Request.Context(), nftHash)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nft_hash": nftHash, "wallet_id": walletID})
}

func (h *AigentHandler) UserAgents(c *gin.Context) {
	resp, err := h.svc.UserAgents(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConversationHistory returns stored turns, paginated by limit and offset
func (h *AigentHandler) ConversationHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}

	history, err := h.svc.History(c.Request.Context(), c.Param("nft_hash"), c.Param("user_id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// AddMember lets the creator in the path grant another user access
func (h *AigentHandler) AddMember(c *gin.Context) {
	var req core.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	nftHash := c.Param("nft_hash")
	auth, err := h.svc.AddMember(c.Request.Context(), nftHash, c.Param("user_id"), req.Member)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"nft_hash": nftHash,
		"creator":  auth.Creator,
		"members":  auth.Members,
	})
}
