package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/realtime"
	"github.com/serialpm/serialpm-api/internal/repository"
	"gorm.io/gorm"
)

var ErrMessageEmpty = errors.New("message cannot be empty")

// MessageService stores direct messages and pushes them to the receiver.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	now         func() time.Time
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, notifier Notifier) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Send persists the message exactly once, then offers it to the receiver's
// live connection together with a notification. Push delivery never fails
// the call.
func (s *MessageService) Send(ctx context.Context, fromUser, toUser uint64, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrMessageEmpty
	}

	sender, err := s.findUser(ctx, fromUser)
	if err != nil {
		return nil, err
	}
	if _, err := s.findUser(ctx, toUser); err != nil {
		return nil, err
	}

	msg := &models.Message{
		SenderID:   fromUser,
		ReceiverID: toUser,
		Body:       body,
		Timestamp:  s.now().UTC(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	s.notifier.PushMessage(toUser, realtime.MessagePush{
		ID:        msg.ID,
		FromUser:  fromUser,
		Message:   msg.Body,
		Timestamp: msg.Timestamp,
	})
	s.notifier.Notify(toUser, realtime.Notification{
		Type:    "message",
		Title:   "New Message",
		Message: fmt.Sprintf("%s sent you a message", sender.Name),
		Data: map[string]interface{}{
			"fromUser":  fromUser,
			"messageId": msg.ID,
		},
		Timestamp: &msg.Timestamp,
	})

	return msg, nil
}

// Conversation returns both directions of the exchange, oldest first.
func (s *MessageService) Conversation(ctx context.Context, userA, userB uint64) ([]models.Message, error) {
	messages, err := s.messageRepo.Conversation(ctx, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return messages, nil
}

func (s *MessageService) findUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
