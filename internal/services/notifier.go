package services

import "github.com/serialpm/serialpm-api/internal/realtime"

// Notifier pushes events to connected users. Delivery is best effort; the
// boolean results only report whether an event was queued.
type Notifier interface {
	Notify(userID uint64, n realtime.Notification) bool
	PushMessage(userID uint64, m realtime.MessagePush) bool
	Disconnect(userID uint64) bool
}
