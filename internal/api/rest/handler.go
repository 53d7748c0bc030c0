package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumenarts/mint-ledger/internal/api/middleware"
	"github.com/lumenarts/mint-ledger/internal/batch"
	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/ledger"
	"github.com/lumenarts/mint-ledger/internal/store/schema"
)

// Service is the ledger surface the REST handlers depend on.
// *ledger.Ledger satisfies it.
type Service interface {
	Instantiate(ctx context.Context, cfg *domain.Config, version string) error
	UpdateConfig(ctx context.Context, caller domain.Address, cfg *domain.Config) error
	Freeze(ctx context.Context, caller domain.Address) error
	Unfreeze(ctx context.Context, caller domain.Address) error
	Pause(ctx context.Context, caller domain.Address) error
	Unpause(ctx context.Context, caller domain.Address) error
	Migrate(ctx context.Context, caller domain.Address, version string, cfg *domain.Config, clearState bool) error

	StoreBatch(ctx context.Context, caller domain.Address, metadatas []*domain.Metadata) ([]string, error)
	StoreFromTemplate(ctx context.Context, caller domain.Address, rows [][]string) ([]string, error)

	MintBatch(ctx context.Context, caller domain.Address, amount uint64, funds domain.Funds) ([]string, error)
	RemoteMintBatch(ctx context.Context, caller, owner domain.Address, amount uint64, funds domain.Funds) ([]string, error)

	Pledge(ctx context.Context, caller domain.Address, tokenNumbers []string) (batch.Result, error)
	BurnBatch(ctx context.Context, caller domain.Address, tokenNumbers []string) (batch.Result, error)
	RemoteBurnBatch(ctx context.Context, caller, owner domain.Address, tokenNumbers []string) (batch.Result, error)

	TransferBatch(ctx context.Context, caller domain.Address, transfers []ledger.TransferInput) (batch.Result, error)
	Approve(ctx context.Context, caller domain.Address, tokenNumber string, spender domain.Address, expires *time.Time) error
	Revoke(ctx context.Context, caller domain.Address, tokenNumber string, spender domain.Address) error
	ApproveAll(ctx context.Context, caller, operator domain.Address, expires *time.Time) error
	RevokeAll(ctx context.Context, caller, operator domain.Address) error

	GetState(ctx context.Context) (*domain.CollectionState, error)
	GetItem(ctx context.Context, tokenNumber string) (*domain.Item, error)
	GetItems(ctx context.Context, tokenNumbers []string) ([]*domain.Item, error)
	ListItemsByOwner(ctx context.Context, owner domain.Address, limit, offset int) ([]*domain.Item, error)
	PledgedBy(ctx context.Context, owner domain.Address) ([]string, error)
	IsPledged(ctx context.Context, tokenNumber string) (bool, error)
	BurntAmount(ctx context.Context, address domain.Address) (uint64, error)
	BurntList(ctx context.Context, address domain.Address) ([]string, error)
	BurnedStatus(ctx context.Context, tokenNumbers []string) ([]domain.BurnedEntry, error)
	GetChanges(ctx context.Context, cursor int64, limit int) ([]*schema.ChangesJournal, error)
}

// Handler implements the REST endpoints on top of the ledger service
type Handler struct {
	service Service
}

// NewHandler creates a new REST API handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// caller resolves and validates the acting address for a mutating request
func caller(c *gin.Context, bodyCaller string) (domain.Address, bool) {
	addr, err := middleware.CallerAddress(c, bodyCaller)
	if err != nil {
		respondBadRequest(c, "Caller address is required", err.Error())
		return "", false
	}
	if !addr.Valid() {
		respondDomainError(c, domain.ErrInvalidAddress)
		return "", false
	}
	return addr, true
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Instantiate seeds a fresh collection
// POST /api/v1/collection
func (h *Handler) Instantiate(c *gin.Context) {
	var req instantiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	// Creator defaults to the authenticated caller
	if req.Config.Creator == "" {
		addr, ok := caller(c, "")
		if !ok {
			return
		}
		req.Config.Creator = addr
	}

	if err := h.service.Instantiate(c.Request.Context(), &req.Config, req.SchemaVersion); err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

// UpdateConfig replaces the collection configuration
// PUT /api/v1/collection/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req updateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	addr, ok := caller(c, req.Caller)
	if !ok {
		return
	}

	if err := h.service.UpdateConfig(c.Request.Context(), addr, &req.Config); err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// setFlag handles the four kill-switch endpoints
func (h *Handler) setFlag(c *gin.Context, apply func(context.Context, domain.Address) error) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	addr, ok := caller(c, req.Caller)
	if !ok {
		return
	}

	if err := apply(c.Request.Context(), addr); err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Freeze permanently-intent locks config and inventory changes
// POST /api/v1/collection/freeze
func (h *Handler) Freeze(c *gin.Context) {
	h.setFlag(c, h.service.Freeze)
}

// Unfreeze lifts the freeze switch
// POST /api/v1/collection/unfreeze
func (h *Handler) Unfreeze(c *gin.Context) {
	h.setFlag(c, h.service.Unfreeze)
}

// Pause suspends minting
// POST /api/v1/collection/pause
func (h *Handler) Pause(c *gin.Context) {
	h.setFlag(c, h.service.Pause)
}

// Unpause resumes minting
// POST /api/v1/collection/unpause
func (h *Handler) Unpause(c *gin.Context) {
	h.setFlag(c, h.service.Unpause)
}

// Migrate bumps the stored schema version, optionally replacing config and
// wiping item state
// POST /api/v1/collection/migrate
func (h *Handler) Migrate(c *gin.Context) {
	var req migrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	addr, ok := caller(c, req.Caller)
	if !ok {
		return
	}

	if err := h.service.Migrate(c.Request.Context(), addr, req.Version, req.Config, req.ClearState); err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// StoreItems pre-allocates inventory with explicit per-item metadata
// POST /api/v1/items
func (h *Handler) StoreItems(c *gin.Context) {
	var req storeItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	addr, ok := caller(c, req.Caller)
	if !ok {
		return
	}

	ids, err := h.service.StoreBatch(c.Request.Context(), addr, req.Items)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, storedResponse{TokenNumbers: ids})
}

// StoreItemsFromTemplate pre-allocates inventory from the configured template
// POST /api/v1/items/template
func (h *Handler) StoreItemsFromTemplate(c *gin.Context) {
	var req storeTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	addr, ok := caller(c, req.Caller)
	if !ok {
		return
	}

	ids, err := h.service.StoreFromTemplate(c.Request.Context(), addr, req.Rows)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, storedResponse{TokenNumbers: ids})
}

// Mint claims items for the caller against attached funds. Amount defaults
// to one.
// POST /api/v1/mint
func (h *Handler) Mint(c *gin.Context) {
	var req mintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	addr, ok := caller(c, req.Caller)
	if !ok {
		return
	}

	amount := req.Amount
	if amount == 0 {
		amount = 1
	}

	ids, err := h.service.MintBatch(c.Request.Context(), addr, amount, req.Funds)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, mintResponse{TokenNumbers: ids})
}

// RemoteMint runs the paid mint flow for a named owner, creator only
// POST /api/v1/mint/remote
func (h *Handler) RemoteMint(c *gin.Context) {
	var req remoteMintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	addr, ok := caller(c, req.Caller)
	if !ok {
		return
	}

	amount := req.Amount
	if amount == 0 {
		amount = 1
	}

	ids, err := h.service.RemoteMintBatch(c.Request.Context(), addr, domain.Address(req.Owner), amount, req.Funds)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, mintResponse{TokenNumbers: ids})
}

// Pledge pre-commits items for burning
// POST /api/v1/pledges
func (h *Handler) Pledge(c *gin.Context) {
	h.tokenBatch(c, h.service.Pledge)
}

// Burn destroys pledged items, subject to the burn policy
// POST /api/v1/burn
func (h *Handler) Burn(c *gin.Context) {
	h.tokenBatch(c, h.service.BurnBatch)
}

// RemoteBurn burns a named owner's pledged items, creator only
// POST /api/v1/burn/remote
func (h *Handler) RemoteBurn(c *gin.Context) {
	var req remoteBurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	addr, ok := caller(c, req.Caller)
	if !ok {
		return
	}

	result, err := h.service.RemoteBurnBatch(c.Request.Context(), addr, domain.Address(req.Owner), req.TokenNumbers)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// tokenBatch handles the endpoints that take a caller plus a list of item ids
func (h *Handler) tokenBatch(c *gin.Context, apply func(context.Context, domain.Address, []string) (batch.Result, error)) {
	var req tokenBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	addr, ok := caller(c, req.Caller)
	if !ok {
		return
	}

	result, err := apply(c.Request.Context(), addr, req.TokenNumbers)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Transfer moves items to new owners
// POST /api/v1/transfers
func (h *Handler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	addr, ok := caller(c, req.Caller)
	if !ok {
		return
	}

	transfers := make([]ledger.TransferInput, 0, len(req.Transfers))
	for _, t := range req.Transfers {
		transfers = append(transfers, ledger.TransferInput{
			TokenNumber: t.TokenNumber,
			Recipient:   domain.Address(t.Recipient),
		})
	}

	result, err := h.service.TransferBatch(c.Request.Context(), addr, transfers)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Approve grants a spender transfer rights over one item
// POST /api/v1/items/:token_number/approvals
func (h *Handler) Approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	addr, ok := caller(c, req.Caller)
	if !ok {
		return
	}

	tokenNumber := c.Param("token_number")
	err := h.service.Approve(c.Request.Context(), addr, tokenNumber, domain.Address(req.Spender), req.Expires)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Revoke removes a spender's approval on one item
// DELETE /api/v1/items/:token_number/approvals
func (h *Handler) Revoke(c *gin.Context) {
	var req revokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	addr, ok := caller(c, req.Caller)
	if !ok {
		return
	}

	tokenNumber := c.Param("token_number")
	err := h.service.Revoke(c.Request.Context(), addr, tokenNumber, domain.Address(req.Spender))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ApproveAll grants an operator transfer rights over all the caller's items
// POST /api/v1/operators
func (h *Handler) ApproveAll(c *gin.Context) {
	var req operatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	addr, ok := caller(c, req.Caller)
	if !ok {
		return
	}

	err := h.service.ApproveAll(c.Request.Context(), addr, domain.Address(req.Operator), req.Expires)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RevokeAll removes an operator grant
// DELETE /api/v1/operators
func (h *Handler) RevokeAll(c *gin.Context) {
	var req operatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	addr, ok := caller(c, req.Caller)
	if !ok {
		return
	}

	err := h.service.RevokeAll(c.Request.Context(), addr, domain.Address(req.Operator))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
