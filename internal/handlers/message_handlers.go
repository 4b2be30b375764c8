package handlers

import (
	"errors"
	"net/http"

	"salon_backend/internal/middleware"
	"salon_backend/internal/models"
	"salon_backend/internal/realtime"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SnapshotStreamer upgrades a request and streams topic events to it.
type SnapshotStreamer interface {
	Serve(w http.ResponseWriter, r *http.Request, topic string, load realtime.SnapshotLoader) error
}

// MessageHandler serves conversations over REST and websocket.
type MessageHandler struct {
	messageService services.MessageService
	streamer       SnapshotStreamer
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(ms services.MessageService, streamer SnapshotStreamer) *MessageHandler {
	return &MessageHandler{messageService: ms, streamer: streamer}
}

func (h *MessageHandler) CreateConversation(c *gin.Context) {
	var req services.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateConversation: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	conv, err := h.messageService.CreateConversation(req)
	if err != nil {
		utils.LogError(err, "CreateConversation: Error from messageService.CreateConversation")
		respondMessageError(c, err, "Failed to create conversation.")
		return
	}
	c.JSON(http.StatusCreated, conv)
}

func (h *MessageHandler) GetConversations(c *gin.Context) {
	list, err := h.messageService.GetConversations()
	if err != nil {
		utils.LogError(err, "GetConversations: Error from messageService.GetConversations")
		utils.RespondInternalError(c, "Failed to fetch conversations.")
		return
	}
	if list == nil {
		list = []models.Conversation{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *MessageHandler) DeleteConversation(c *gin.Context) {
	id := c.Param("id")
	if err := h.messageService.DeleteConversation(id); err != nil {
		utils.LogError(err, "DeleteConversation: Error for ID "+id)
		respondMessageError(c, err, "Failed to delete conversation.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted successfully"})
}

// GetMessages returns the conversation's messages ordered by timestamp.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	id := c.Param("id")
	msgs, err := h.messageService.Snapshot(id)
	if err != nil {
		utils.LogError(err, "GetMessages: Error for conversation "+id)
		respondMessageError(c, err, "Failed to fetch messages.")
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

// SendMessage appends a message as the authenticated user.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	id := c.Param("id")
	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SendMessage: Failed to bind JSON for conversation "+id)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	sender := services.Sender{ID: c.GetString(middleware.ContextUserID), Name: c.GetString(middleware.ContextUsername)}
	msg, err := h.messageService.SendMessage(id, sender, req)
	if err != nil {
		utils.LogError(err, "SendMessage: Error for conversation "+id)
		respondMessageError(c, err, "Failed to send message.")
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// Subscribe upgrades to a websocket that receives the ordered snapshot on
// connect and again after every new message.
func (h *MessageHandler) Subscribe(c *gin.Context) {
	id := c.Param("id")
	// Unknown conversations are rejected before the upgrade.
	if _, err := h.messageService.Snapshot(id); err != nil {
		utils.LogError(err, "Subscribe: Error loading snapshot for conversation "+id)
		respondMessageError(c, err, "Failed to subscribe to conversation.")
		return
	}

	load := func() (interface{}, error) {
		msgs, err := h.messageService.Snapshot(id)
		if msgs == nil {
			msgs = []models.Message{}
		}
		return msgs, err
	}
	// The upgrader writes its own HTTP error on failure.
	if err := h.streamer.Serve(c.Writer, c.Request, services.ConversationTopic(id), load); err != nil {
		utils.LogError(err, "Subscribe: websocket stream failed for conversation "+id)
	}
}

func respondMessageError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrConversationNotFound):
		utils.RespondNotFound(c, "Conversation not found.", err)
	case errors.Is(err, services.ErrClientNotFound):
		utils.RespondNotFound(c, "Client not found.", err)
	case errors.Is(err, services.ErrMessageValidation):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.RespondInternalError(c, fallback)
	}
}
