package handlers

import (
	"errors"
	"net/http"

	"tickettrack_backend/internal/services"
	"tickettrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ClientHandler holds the client directory service.
type ClientHandler struct {
	clientService services.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(cs services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: cs}
}

// GetClients handles fetching the full directory keyed by client_key.
func (h *ClientHandler) GetClients(c *gin.Context) {
	clients, err := h.clientService.ListClients()
	if err != nil {
		utils.LogError(err, "GetClients: Error from clientService.ListClients")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch clients.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, clients)
}

// GetClientByKey handles fetching one directory entry.
func (h *ClientHandler) GetClientByKey(c *gin.Context) {
	key := c.Param("key")

	entry, err := h.clientService.GetClient(key)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
		} else {
			utils.LogError(err, "GetClientByKey: Error from clientService.GetClient for key "+key)
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch client.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, entry)
}

// GetClientByName handles resolving a directory entry by display name.
func (h *ClientHandler) GetClientByName(c *gin.Context) {
	name := c.Query("name")

	key, entry, err := h.clientService.LookupByName(name)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.LogError(err, "GetClientByName: Error from clientService.LookupByName")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch client.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"client_key": key, "client": entry})
}

// CreateClient handles registering a new directory entry.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req services.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateClient: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	entry, err := h.clientService.CreateClient(req)
	if err != nil {
		utils.LogError(err, "CreateClient: Error from clientService.CreateClient")
		if errors.Is(err, services.ErrClientExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Client key already exists.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create client.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateClient handles patching a directory entry. Attributes merge in
// key-by-key; a null value removes the attribute.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	key := c.Param("key")

	var req services.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateClient: Failed to bind JSON for key "+key)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	entry, err := h.clientService.UpdateClient(key, req)
	if err != nil {
		utils.LogError(err, "UpdateClient: Error from clientService.UpdateClient for key "+key)
		if errors.Is(err, services.ErrClientNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update client.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteClient handles removing a directory entry.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	key := c.Param("key")

	if err := h.clientService.DeleteClient(key); err != nil {
		utils.LogError(err, "DeleteClient: Error from clientService.DeleteClient for key "+key)
		if errors.Is(err, services.ErrClientNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete client.", "Internal error"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// GetAttributeKeys handles fetching the custom attribute registry.
func (h *ClientHandler) GetAttributeKeys(c *gin.Context) {
	keys, err := h.clientService.AttributeKeys()
	if err != nil {
		utils.LogError(err, "GetAttributeKeys: Error from clientService.AttributeKeys")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch attribute keys.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

type attributeKeyRequest struct {
	Key string `json:"key" binding:"required"`
}

// AddAttributeKey handles registering a new custom attribute key.
func (h *ClientHandler) AddAttributeKey(c *gin.Context) {
	var req attributeKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	keys, err := h.clientService.AddAttributeKey(req.Key)
	if err != nil {
		utils.LogError(err, "AddAttributeKey: Error from clientService.AddAttributeKey for key "+req.Key)
		if errors.Is(err, services.ErrClientExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Attribute key already registered.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to add attribute key.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"keys": keys})
}

// RemoveAttributeKey handles unregistering a custom attribute key. The key's
// values are stripped from every client in the same write.
func (h *ClientHandler) RemoveAttributeKey(c *gin.Context) {
	key := c.Param("key")

	keys, err := h.clientService.RemoveAttributeKey(key)
	if err != nil {
		utils.LogError(err, "RemoveAttributeKey: Error from clientService.RemoveAttributeKey for key "+key)
		if errors.Is(err, services.ErrClientNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Attribute key not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to remove attribute key.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}
