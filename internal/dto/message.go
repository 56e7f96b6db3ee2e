package dto

import (
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/utils"
)

type SendMessageRequest struct {
	ToUser   utils.FlexibleID `json:"toUser" binding:"required"`
	FromUser utils.FlexibleID `json:"fromUser" binding:"required"`
	Message  string           `json:"message" binding:"required"`
}

type ConversationRequest struct {
	ToUser   utils.FlexibleID `json:"toUser" binding:"required"`
	FromUser utils.FlexibleID `json:"fromUser" binding:"required"`
}

type SendMessageResponse struct {
	Message string         `json:"message"`
	Data    models.Message `json:"data"`
}
