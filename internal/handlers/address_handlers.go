package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tickettrack_backend/internal/services"
	"tickettrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AddressHandler holds the geocoding proxy service.
type AddressHandler struct {
	addressService services.AddressService
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(as services.AddressService) *AddressHandler {
	return &AddressHandler{addressService: as}
}

func optQuery(c *gin.Context, name string) *string {
	return utils.NewNullString(strings.TrimSpace(c.Query(name)))
}

// SuggestAddress handles autocomplete lookups. When the provider is not
// configured the handler returns an empty list so the UI falls back to
// manual entry without surfacing an error.
func (h *AddressHandler) SuggestAddress(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if len(query) < 2 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Query must be at least 2 characters.", "query too short"))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	if limit < 1 || limit > 20 {
		limit = 8
	}

	suggestions, err := h.addressService.SuggestAddresses(query, limit)
	if err != nil {
		if errors.Is(err, services.ErrAddressNotConfigured) {
			c.JSON(http.StatusOK, gin.H{"suggestions": []services.AddressSuggestion{}})
			return
		}
		utils.LogError(err, "SuggestAddress: Error from addressService.SuggestAddresses")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadGateway, utils.ErrCodeInternalServerError, "Address lookup failed.", "Upstream error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// VerifyAddress handles standardizing a selected address.
func (h *AddressHandler) VerifyAddress(c *gin.Context) {
	street := strings.TrimSpace(c.Query("street"))
	if street == "" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "street is required.", "missing street"))
		return
	}

	candidate, err := h.addressService.VerifyAddress(services.VerifyAddressRequest{
		StreetLine: street,
		City:       optQuery(c, "city"),
		State:      optQuery(c, "state"),
		PostalCode: optQuery(c, "zip"),
		Secondary:  optQuery(c, "secondary"),
		PlaceID:    optQuery(c, "place_id"),
	})
	if err != nil {
		if errors.Is(err, services.ErrAddressNotConfigured) {
			c.JSON(http.StatusOK, gin.H{"candidate": nil})
			return
		}
		utils.LogError(err, "VerifyAddress: Error from addressService.VerifyAddress")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadGateway, utils.ErrCodeInternalServerError, "Address verification failed.", "Upstream error"))
		return
	}
	if candidate == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Address not verified.", "no candidate"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidate": candidate})
}

// PlanRoute handles optimizing a set of client visits into a driving order.
// An unconfigured provider yields a null plan, same as verification.
func (h *AddressHandler) PlanRoute(c *gin.Context) {
	var req services.RoutePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "PlanRoute: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	plan, err := h.addressService.PlanRoute(req)
	if err != nil {
		if errors.Is(err, services.ErrAddressNotConfigured) {
			c.JSON(http.StatusOK, gin.H{"plan": nil})
			return
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
			return
		}
		utils.LogError(err, "PlanRoute: Error from addressService.PlanRoute")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadGateway, utils.ErrCodeInternalServerError, "Route planning failed.", "Upstream error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}
