// Package rest exposes the ledger over HTTP. Mutating endpoints require
// authentication; queries are public.
package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/lumenarts/mint-ledger/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler *Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	auth := middleware.Auth(authCfg)

	v1 := router.Group("/api/v1")
	{
		// Collection lifecycle (requires authentication)
		v1.POST("/collection", auth, handler.Instantiate)
		v1.PUT("/collection/config", auth, handler.UpdateConfig)
		v1.POST("/collection/freeze", auth, handler.Freeze)
		v1.POST("/collection/unfreeze", auth, handler.Unfreeze)
		v1.POST("/collection/pause", auth, handler.Pause)
		v1.POST("/collection/unpause", auth, handler.Unpause)
		v1.POST("/collection/migrate", auth, handler.Migrate)

		// Collection state (public read access)
		v1.GET("/collection", handler.GetState)

		// Inventory pre-allocation (requires authentication)
		v1.POST("/items", auth, handler.StoreItems)
		v1.POST("/items/template", auth, handler.StoreItemsFromTemplate)

		// Minting (requires authentication)
		v1.POST("/mint", auth, handler.Mint)
		v1.POST("/mint/remote", auth, handler.RemoteMint)

		// Pledge and burn (requires authentication)
		v1.POST("/pledges", auth, handler.Pledge)
		v1.POST("/burn", auth, handler.Burn)
		v1.POST("/burn/remote", auth, handler.RemoteBurn)

		// Transfer and approvals (requires authentication)
		v1.POST("/transfers", auth, handler.Transfer)
		v1.POST("/items/:token_number/approvals", auth, handler.Approve)
		v1.DELETE("/items/:token_number/approvals", auth, handler.Revoke)
		v1.POST("/operators", auth, handler.ApproveAll)
		v1.DELETE("/operators", auth, handler.RevokeAll)

		// Item queries (public read access)
		v1.GET("/items/:token_number", handler.GetItem)
		v1.GET("/items", handler.ListItems)
		v1.GET("/items/:token_number/pledge", handler.GetPledgeStatus)
		v1.GET("/owners/:address/items", handler.ListItemsByOwnerPath)
		v1.GET("/owners/:address/pledges", handler.GetPledgedBy)
		v1.GET("/owners/:address/burns", handler.GetBurns)
		v1.GET("/burns/status", handler.GetBurnedStatus)

		// Changes journal (public read access)
		v1.GET("/changes", handler.GetChanges)
	}
}
