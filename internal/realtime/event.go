package realtime

import (
	"encoding/json"
	"time"
)

// Event names on the push channel.
const (
	EventRegister            = "register"
	EventSendNotification    = "send-notification"
	EventReceiveNotification = "receive-notification"
	EventReceiveMessage      = "receive-message"
)

// Event is one frame on the push channel: {"event": name, "data": payload}.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data,omitempty"`
}

// Notification is the payload of receive-notification.
type Notification struct {
	Message   string      `json:"message"`
	Type      string      `json:"type"`
	Title     string      `json:"title,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp *time.Time  `json:"timestamp,omitempty"`
}

// MessagePush is the payload of receive-message.
type MessagePush struct {
	ID        uint64    `json:"id"`
	FromUser  uint64    `json:"fromUser"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
