package handlers

import (
	"errors"
	"net/http"

	"salon_backend/internal/models"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ClientHandler holds the client service.
type ClientHandler struct {
	clientService services.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(cs services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: cs}
}

// CreateClient handles the creation of a new client.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req services.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateClient: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	client, err := h.clientService.CreateClient(req)
	if err != nil {
		utils.LogError(err, "CreateClient: Error from clientService.CreateClient")
		if errors.Is(err, services.ErrClientValidation) || errors.Is(err, services.ErrDateFormat) {
			utils.RespondValidationFailed(c, err.Error())
		} else {
			utils.RespondInternalError(c, "Failed to create client.")
		}
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetClients handles fetching all clients with pagination and search.
func (h *ClientHandler) GetClients(c *gin.Context) {
	page, pageSize := queryPage(c, 20)

	clients, totalCount, err := h.clientService.GetClients(page, pageSize, queryString(c, "search"))
	if err != nil {
		utils.LogError(err, "GetClients: Error from clientService.GetClients")
		utils.RespondInternalError(c, "Failed to fetch clients.")
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      clients,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetClientByID handles fetching a single client by ID.
func (h *ClientHandler) GetClientByID(c *gin.Context) {
	clientID := c.Param("id")

	client, err := h.clientService.GetClientByID(clientID)
	if err != nil {
		utils.LogError(err, "GetClientByID: Error from clientService.GetClientByID for ID "+clientID)
		h.respondClientError(c, err, "Failed to fetch client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateClient handles updating a client's contact data.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	clientID := c.Param("id")

	var req services.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateClient: Failed to bind JSON for ID "+clientID)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	client, err := h.clientService.UpdateClient(clientID, req)
	if err != nil {
		utils.LogError(err, "UpdateClient: Error from clientService.UpdateClient for ID "+clientID)
		h.respondClientError(c, err, "Failed to update client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient handles deleting a client.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	clientID := c.Param("id")

	if err := h.clientService.DeleteClient(clientID); err != nil {
		utils.LogError(err, "DeleteClient: Error from clientService.DeleteClient for ID "+clientID)
		h.respondClientError(c, err, "Failed to delete client.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}

// GetLoyalty returns the derived loyalty card quantities.
func (h *ClientHandler) GetLoyalty(c *gin.Context) {
	clientID := c.Param("id")

	summary, err := h.clientService.LoyaltySummary(clientID)
	if err != nil {
		utils.LogError(err, "GetLoyalty: Error from clientService.LoyaltySummary for ID "+clientID)
		h.respondClientError(c, err, "Failed to fetch loyalty card.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// AwardStamp adds one stamp to the client's card.
func (h *ClientHandler) AwardStamp(c *gin.Context) {
	h.loyaltyAction(c, "AwardStamp", h.clientService.AwardStamp)
}

// RedeemMimo consumes one available mimo.
func (h *ClientHandler) RedeemMimo(c *gin.Context) {
	h.loyaltyAction(c, "RedeemMimo", h.clientService.RedeemMimo)
}

// ResetCard zeroes the card. Admin only.
func (h *ClientHandler) ResetCard(c *gin.Context) {
	h.loyaltyAction(c, "ResetCard", h.clientService.ResetCard)
}

func (h *ClientHandler) loyaltyAction(c *gin.Context, name string, action func(string) (*services.LoyaltyResult, error)) {
	clientID := c.Param("id")

	result, err := action(clientID)
	if err != nil {
		utils.LogError(err, name+": Error from clientService for ID "+clientID)
		if errors.Is(err, services.ErrNoMimosAvailable) {
			utils.RespondConflict(c, "No mimos available for this client.", err)
			return
		}
		h.respondClientError(c, err, "Failed to update loyalty card.")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ClientHandler) respondClientError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrClientNotFound):
		utils.RespondNotFound(c, "Client not found.", err)
	case errors.Is(err, services.ErrClientValidation), errors.Is(err, services.ErrDateFormat):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.RespondInternalError(c, fallback)
	}
}
