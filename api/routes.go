package api

import (
	"net/http"

	"github.com/NethermindEth/aigent-launchpad/aigent"
	"github.com/NethermindEth/aigent-launchpad/api/handlers"
	"github.com/NethermindEth/aigent-launchpad/blend"
	"github.com/NethermindEth/aigent-launchpad/communication"
	"github.com/NethermindEth/aigent-launchpad/metrics"
	"github.com/gin-gonic/gin"
)

// Deps are the services the routes are served from. Hub and Metrics are optional.
type Deps struct {
	Aigent  *aigent.Service
	Blend   *blend.Manager
	Hub     *communication.Hub
	Metrics *metrics.Metrics
	// Health adds fields to the /healthz body
	Health func() gin.H
}

// SetupRoutes initializes all API endpoints
func SetupRoutes(router *gin.Engine, d Deps) {
	router.GET("/healthz", func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if d.Health != nil {
			for k, v := range d.Health() {
				body[k] = v
			}
		}
		c.JSON(http.StatusOK, body)
	})
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	chat := handlers.NewAigentHandler(d.Aigent)
	aigentGroup := router.Group("/aigent")
	{
		aigentGroup.POST("/create-agent/:user_id", chat.CreateAgent)
		aigentGroup.POST("/agent-interact/:nft_hash/:user_id", chat.Interact)
		aigentGroup.GET("/fetch-agent-mappings", chat.FetchAgentMappings)
		aigentGroup.GET("/test-get-wallet/:nft_hash", chat.TestGetWallet)
		aigentGroup.GET("/user-agents/:user_id", chat.UserAgents)
		aigentGroup.GET("/conversation-history/:nft_hash/:user_id", chat.ConversationHistory)
		aigentGroup.POST("/members/:nft_hash/:user_id", chat.AddMember)
		if d.Hub != nil {
			aigentGroup.GET("/ws", handlers.HandleWebSocket(d.Hub))
		}
	}

	web3 := handlers.NewBlendHandler(d.Blend)
	blendGroup := router.Group("/blend/web3_manager/:user_id")
	{
		blendGroup.POST("/create-agents", web3.CreateAgents)
		blendGroup.GET("/agents", web3.Agents)
		blendGroup.POST("/run-agent", web3.RunAgent)
	}
}
