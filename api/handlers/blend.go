package handlers

import (
	"errors"
	"net/http"

	"github.com/NethermindEth/aigent-launchpad/blend"
	"github.com/NethermindEth/aigent-launchpad/core"
	"github.com/gin-gonic/gin"
)

// BlendHandler serves the web3 manager routes
type BlendHandler struct {
	mgr *blend.Manager
}

func NewBlendHandler(mgr *blend.Manager) *BlendHandler {
	return &BlendHandler{mgr: mgr}
}

func (h *BlendHandler) CreateAgents(c *gin.Context) {
	var req core.PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.mgr.CreateAgents(c.Request.Context(), c.Param("user_id"), req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BlendHandler) Agents(c *gin.Context) {
	agents, err := h.mgr.Agents(c.Request.Context(), c.Param("user_id"))
	if errors.Is(err, blend.ErrNoAgents) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No agents found for this user."})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agents)
}

func (h *BlendHandler) RunAgent(c *gin.Context) {
	var req core.RunAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.mgr.RunAgent(c.Request.Context(), c.Param("user_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
