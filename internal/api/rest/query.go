package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lumenarts/mint-ledger/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
	maxChangesPage  = 500
)

// parseIntQuery parses an optional integer query parameter
func parseIntQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// parseAddressParam validates a path address parameter
func parseAddressParam(c *gin.Context, name string) (domain.Address, bool) {
	addr := domain.Address(c.Param(name))
	if !addr.Valid() {
		respondDomainError(c, domain.ErrInvalidAddress)
		return "", false
	}
	return addr, true
}

// GetState returns the collection config, schema version and counters
// GET /api/v1/collection
func (h *Handler) GetState(c *gin.Context) {
	state, err := h.service.GetState(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// GetItem returns one item by its id
// GET /api/v1/items/:token_number
func (h *Handler) GetItem(c *gin.Context) {
	tokenNumber := c.Param("token_number")

	item, err := h.service.GetItem(c.Request.Context(), tokenNumber)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// ListItems returns items by id list or by owner
// GET /api/v1/items?ids=<id1>,<id2> or ?owner=<address>&limit=<n>&offset=<n>
func (h *Handler) ListItems(c *gin.Context) {
	if ids := c.Query("ids"); ids != "" {
		items, err := h.service.GetItems(c.Request.Context(), strings.Split(ids, ","))
		if err != nil {
			respondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, itemsResponse{Items: items})
		return
	}

	owner := domain.Address(c.Query("owner"))
	if owner == "" {
		respondBadRequest(c, "Either ids or owner is required")
		return
	}
	if !owner.Valid() {
		respondDomainError(c, domain.ErrInvalidAddress)
		return
	}

	limit, err := parseIntQuery(c, "limit", defaultPageSize)
	if err != nil {
		respondBadRequest(c, "Invalid limit", err.Error())
		return
	}
	offset, err := parseIntQuery(c, "offset", 0)
	if err != nil {
		respondBadRequest(c, "Invalid offset", err.Error())
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, err := h.service.ListItemsByOwner(c.Request.Context(), owner, limit, offset)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, itemsResponse{Items: items})
}

// ListItemsByOwnerPath returns the items held by one address
// GET /api/v1/owners/:address/items?limit=<n>&offset=<n>
func (h *Handler) ListItemsByOwnerPath(c *gin.Context) {
	addr, ok := parseAddressParam(c, "address")
	if !ok {
		return
	}

	limit, err := parseIntQuery(c, "limit", defaultPageSize)
	if err != nil {
		respondBadRequest(c, "Invalid limit", err.Error())
		return
	}
	offset, err := parseIntQuery(c, "offset", 0)
	if err != nil {
		respondBadRequest(c, "Invalid offset", err.Error())
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, err := h.service.ListItemsByOwner(c.Request.Context(), addr, limit, offset)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, itemsResponse{Items: items})
}

// GetPledgeStatus reports whether one item is pledged for burning
// GET /api/v1/items/:token_number/pledge
func (h *Handler) GetPledgeStatus(c *gin.Context) {
	tokenNumber := c.Param("token_number")

	pledged, err := h.service.IsPledged(c.Request.Context(), tokenNumber)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, pledgeStatusResponse{
		TokenNumber: tokenNumber,
		Pledged:     pledged,
	})
}

// GetPledgedBy lists the items pledged by one address
// GET /api/v1/owners/:address/pledges
func (h *Handler) GetPledgedBy(c *gin.Context) {
	addr, ok := parseAddressParam(c, "address")
	if !ok {
		return
	}

	ids, err := h.service.PledgedBy(c.Request.Context(), addr)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, pledgedListResponse{
		Address:      addr.String(),
		TokenNumbers: ids,
	})
}

// GetBurns returns the burn tally of one address
// GET /api/v1/owners/:address/burns
func (h *Handler) GetBurns(c *gin.Context) {
	addr, ok := parseAddressParam(c, "address")
	if !ok {
		return
	}

	amount, err := h.service.BurntAmount(c.Request.Context(), addr)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	ids, err := h.service.BurntList(c.Request.Context(), addr)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, burnsResponse{
		Address:      addr.String(),
		Amount:       amount,
		TokenNumbers: ids,
	})
}

// GetBurnedStatus reports tombstone flags for a list of item ids
// GET /api/v1/burns/status?ids=<id1>,<id2>
func (h *Handler) GetBurnedStatus(c *gin.Context) {
	ids := c.Query("ids")
	if ids == "" {
		respondBadRequest(c, "ids is required")
		return
	}

	statuses, err := h.service.BurnedStatus(c.Request.Context(), strings.Split(ids, ","))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, burnedStatusResponse{Statuses: statuses})
}

// GetChanges pages through the changes journal in cursor order
// GET /api/v1/changes?cursor=<n>&limit=<n>
func (h *Handler) GetChanges(c *gin.Context) {
	cursor, err := strconv.ParseInt(c.DefaultQuery("cursor", "0"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid cursor", err.Error())
		return
	}

	limit, err := parseIntQuery(c, "limit", defaultPageSize)
	if err != nil {
		respondBadRequest(c, "Invalid limit", err.Error())
		return
	}
	if limit > maxChangesPage {
		limit = maxChangesPage
	}

	rows, err := h.service.GetChanges(c.Request.Context(), cursor, limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, changesResponse{Changes: changesFromRows(rows)})
}
