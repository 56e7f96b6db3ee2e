package realtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a websocket push connection with a bounded outbound buffer.
// When the buffer is full the oldest queued event is discarded to make room
// for the newest one.
type Client struct {
	conn    *websocket.Conn
	send    chan Event
	metrics *Metrics

	mu     sync.Mutex
	closed bool

	// Set on register and read by the writer when it logs.
	userID atomic.Uint64
	// Verified identity from the upgrade request, 0 when none was presented.
	tokenUserID uint64

	// Owned by the read loop.
	generation uint64
	registered bool
}

func newClient(conn *websocket.Conn, bufferSize int, metrics *Metrics) *Client {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Client{
		conn:    conn,
		send:    make(chan Event, bufferSize),
		metrics: metrics,
	}
}

// Send queues ev without blocking, evicting the oldest queued event when the
// buffer is full. It returns false when the client is closed or ev could not
// be queued.
func (c *Client) Send(ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- ev:
		return true
	default:
	}

	// Buffer full: evict the oldest event. The writer may drain concurrently,
	// so neither step is guaranteed to find work.
	select {
	case old := <-c.send:
		c.metrics.dropped(old.Name, DropBufferFull)
	default:
	}

	select {
	case c.send <- ev:
		return true
	default:
		// The caller records the drop.
		return false
	}
}

// Close stops the writer, which sends a close frame and closes the socket.
// It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

// Pending returns the number of queued events.
func (c *Client) Pending() int {
	return len(c.send)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				logrus.WithError(err).WithField("user_id", c.userID.Load()).Debug("push write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
