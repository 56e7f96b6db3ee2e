package realtime

// Router delivers push events to connected users. Delivery is best effort
// and at most once: events for users without a live connection are
// discarded, never queued or retried.
type Router struct {
	registry Registry
	metrics  *Metrics
}

func NewRouter(registry Registry, metrics *Metrics) *Router {
	return &Router{
		registry: registry,
		metrics:  metrics,
	}
}

// Deliver hands ev to userID's connection and reports whether it was queued.
// It never blocks.
func (r *Router) Deliver(userID uint64, ev Event) bool {
	conn, ok := r.registry.Lookup(userID)
	if !ok {
		r.metrics.dropped(ev.Name, DropOffline)
		return false
	}
	if !conn.Send(ev) {
		r.metrics.dropped(ev.Name, DropClosed)
		return false
	}
	r.metrics.delivered(ev.Name)
	return true
}

// Notify sends a receive-notification event.
func (r *Router) Notify(userID uint64, n Notification) bool {
	return r.Deliver(userID, Event{Name: EventReceiveNotification, Data: n})
}

// PushMessage sends a receive-message event.
func (r *Router) PushMessage(userID uint64, m MessagePush) bool {
	return r.Deliver(userID, Event{Name: EventReceiveMessage, Data: m})
}

// Online reports whether userID currently has a registered connection.
func (r *Router) Online(userID uint64) bool {
	_, ok := r.registry.Lookup(userID)
	return ok
}

// Disconnect closes userID's connection, if any. The connection removes
// its own registration when its read loop exits.
func (r *Router) Disconnect(userID uint64) bool {
	conn, ok := r.registry.Lookup(userID)
	if !ok {
		return false
	}
	_ = conn.Close()
	return true
}
