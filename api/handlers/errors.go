package handlers

import (
	"errors"
	"net/http"

	"github.com/NethermindEth/aigent-launchpad/ai"
	"github.com/NethermindEth/aigent-launchpad/aigent"
	"github.com/NethermindEth/aigent-launchpad/blend"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"github.com/NethermindEth/aigent-launchpad/storage"
	"github.com/NethermindEth/aigent-launchpad/wallet"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusFor maps service errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, aigent.ErrUnknownNFT),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrEmptyFile),
		errors.Is(err, wallet.ErrWalletNotFound),
		errors.Is(err, blend.ErrNoAgents):
		return http.StatusNotFound
	case errors.Is(err, aigent.ErrNotAuthorized),
		errors.Is(err, blend.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrInvalidKey),
		errors.Is(err, wallet.ErrUnsupportedNetwork):
		return http.StatusBadRequest
	case errors.Is(err, ai.ErrCircuitOpen),
		errors.Is(err, ai.ErrNoProvider):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(logger.RequestIDKey)),
			zap.Error(err))
	}
	c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}
