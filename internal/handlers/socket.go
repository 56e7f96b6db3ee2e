package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/serialpm/serialpm-api/internal/dto"
	apierrors "github.com/serialpm/serialpm-api/internal/errors"
	"github.com/serialpm/serialpm-api/internal/middleware"
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/realtime"
	"github.com/serialpm/serialpm-api/internal/services"
)

// SocketHandler exposes push delivery and direct messaging over HTTP.
type SocketHandler struct {
	messageService *services.MessageService
	notifier       services.Notifier
}

func NewSocketHandler(messageService *services.MessageService, notifier services.Notifier) *SocketHandler {
	return &SocketHandler{
		messageService: messageService,
		notifier:       notifier,
	}
}

// SendNotification pushes a notification to a user if they are connected.
// The response is the same whether or not anyone received it.
func (h *SocketHandler) SendNotification(c *gin.Context) {
	var req realtime.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	h.notifier.Notify(req.ToUser.Uint64(), req.Notification())
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Notification sent"})
}

// SendMessage stores a direct message from the caller and pushes it to the
// receiver.
func (h *SocketHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}
	if !requireSelf(c, req.FromUser.Uint64()) {
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), req.FromUser.Uint64(), req.ToUser.Uint64(), req.Message)
	if err != nil {
		respondServiceError(c, "send_message", err)
		return
	}
	c.JSON(http.StatusOK, dto.SendMessageResponse{Message: "Message sent", Data: *msg})
}

// GetMessages returns the conversation between two users, oldest first.
// The caller must be one of them.
func (h *SocketHandler) GetMessages(c *gin.Context) {
	var req dto.ConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}
	userID, _ := middleware.GetUserID(c)
	if userID != req.FromUser.Uint64() && userID != req.ToUser.Uint64() {
		apierrors.Forbidden(c, "You can only read your own conversations")
		return
	}

	messages, err := h.messageService.Conversation(c.Request.Context(), req.FromUser.Uint64(), req.ToUser.Uint64())
	if err != nil {
		respondServiceError(c, "get_messages", err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	c.JSON(http.StatusOK, messages)
}
