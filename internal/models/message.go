package models

import "time"

// Message is a direct chat message. Messages are append-only.
type Message struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	SenderID   uint64    `gorm:"index:idx_messages_pair;not null" json:"sender_id"`
	ReceiverID uint64    `gorm:"index:idx_messages_pair;not null" json:"receiver_id"`
	Body       string    `gorm:"column:message;type:text;not null" json:"message"`
	Timestamp  time.Time `gorm:"index;not null" json:"timestamp"`
}
