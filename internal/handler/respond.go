package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greenleaf/plant-store-api/internal/repository"
	"github.com/greenleaf/plant-store-api/internal/service"
)

// All success payloads are wrapped as {"success": true, "data": ...} and all
// failures as {"success": false, "message": ...}.

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondList(c *gin.Context, data any, count int) {
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count, "data": data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondServiceError maps service errors onto the HTTP taxonomy: validation
// and business-rule failures are 400, missing resources 404, authorization
// failures 403, anything unexpected a sanitized 500.
func respondServiceError(c *gin.Context, err error) {
	var stockErr *repository.InsufficientStockError
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidDeliveryInfo),
		errors.Is(err, service.ErrPromotionPriceHigh),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrUserAlreadyExists):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &stockErr):
		respondError(c, http.StatusBadRequest, stockErr.Error())
	case errors.Is(err, service.ErrPlantNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrOrderAccessDenied):
		respondError(c, http.StatusForbidden, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
