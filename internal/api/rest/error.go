package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/logger"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail contains error information. Code is the stable machine-readable
// ledger error code, the same one batch results use for per-item failures.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code string, message string, details ...string) {
	response := errorResponse{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	}

	if len(details) > 0 {
		response.Error.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, "bad_request", message, details...)
}

// respondInternalError sends a 500 Internal Server Error response and logs the error
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.Error(err, fields...)
	respondWithError(c, http.StatusInternalServerError, "internal", message)
}

// respondDomainError maps a ledger error to its HTTP status and stable code
func respondDomainError(c *gin.Context, err error) {
	respondWithError(c, domainStatus(err), domain.Code(err), err.Error())
}

// domainStatus picks the HTTP status for a ledger error: authorization
// failures are 403, missing entities 404, malformed input 400, admission and
// state conflicts 409, anything unrecognized 500.
func domainStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrZeroAmount),
		errors.Is(err, domain.ErrEmptyBatch),
		errors.Is(err, domain.ErrBatchTooLarge),
		errors.Is(err, domain.ErrAttributeMismatch),
		errors.Is(err, domain.ErrExpired):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCollectionFrozen),
		errors.Is(err, domain.ErrCollectionPaused),
		errors.Is(err, domain.ErrNothingToMint),
		errors.Is(err, domain.ErrMintNotStarted),
		errors.Is(err, domain.ErrMintEnded),
		errors.Is(err, domain.ErrSupplyExhausted),
		errors.Is(err, domain.ErrInventoryExhausted),
		errors.Is(err, domain.ErrNoFundsSent),
		errors.Is(err, domain.ErrTooManyDenominations),
		errors.Is(err, domain.ErrWrongDenom),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrIncorrectFunds),
		errors.Is(err, domain.ErrClaimed),
		errors.Is(err, domain.ErrItemExists),
		errors.Is(err, domain.ErrAlreadyPledged),
		errors.Is(err, domain.ErrNotPledged),
		errors.Is(err, domain.ErrSameVersion),
		errors.Is(err, domain.ErrNoConfiguration):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
