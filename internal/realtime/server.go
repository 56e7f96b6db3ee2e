package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/serialpm/serialpm-api/internal/auth"
	"github.com/serialpm/serialpm-api/internal/utils"
	"github.com/sirupsen/logrus"
)

// TokenVerifier checks a bearer token presented on the upgrade request.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// ServerOptions configures the websocket endpoint.
//
// When Verifier is set, a token from the Authorization header or the token
// query parameter pins the connection to the token's user: register frames
// for any other id are ignored. An invalid token is rejected with 403.
// RequireToken additionally rejects upgrades without a token with 401.
type ServerOptions struct {
	BufferSize     int
	AllowedOrigins []string
	Verifier       TokenVerifier
	RequireToken   bool
}

// Server accepts push connections and binds them to users on register.
type Server struct {
	registry Registry
	router   *Router
	metrics  *Metrics
	opts     ServerOptions
	upgrader websocket.Upgrader
}

func NewServer(registry Registry, router *Router, metrics *Metrics, opts ServerOptions) *Server {
	s := &Server{
		registry: registry,
		router:   router,
		metrics:  metrics,
		opts:     opts,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func requestToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// authenticate returns the verified user id for the upgrade request, or 0
// when no token was presented. It aborts the request when the token is
// missing but required, or invalid.
func (s *Server) authenticate(c *gin.Context) (uint64, bool) {
	if s.opts.Verifier == nil {
		return 0, true
	}
	token := requestToken(c.Request)
	if token == "" {
		if s.opts.RequireToken {
			c.AbortWithStatus(http.StatusUnauthorized)
			return 0, false
		}
		return 0, true
	}
	claims, err := s.opts.Verifier.Verify(token)
	if err != nil || claims.ID == 0 {
		logrus.WithError(err).Debug("rejecting push connection with invalid token")
		c.AbortWithStatus(http.StatusForbidden)
		return 0, false
	}
	return claims.ID, true
}

// ServeWS upgrades the request and runs the connection until it closes.
func (s *Server) ServeWS(c *gin.Context) {
	tokenUserID, ok := s.authenticate(c)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := newClient(conn, s.opts.BufferSize, s.metrics)
	client.tokenUserID = tokenUserID
	go client.writePump()
	s.readPump(client)
}

func (s *Server) readPump(client *Client) {
	defer func() {
		if client.registered {
			userID := client.userID.Load()
			s.registry.Unregister(userID, client.generation)
			logrus.WithField("user_id", userID).Debug("push connection closed")
		}
		_ = client.Close()
	}()

	conn := client.conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Debug("push connection read failed")
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			logrus.WithError(err).Debug("ignoring malformed push frame")
			continue
		}

		switch frame.Event {
		case EventRegister:
			s.handleRegister(client, frame.Data)
		case EventSendNotification:
			s.handleSendNotification(frame.Data)
		default:
			logrus.WithField("event", frame.Event).Debug("ignoring unknown push event")
		}
	}
}

func (s *Server) handleRegister(client *Client, data json.RawMessage) {
	var id utils.FlexibleID
	if err := json.Unmarshal(data, &id); err != nil || id == 0 {
		logrus.WithField("data", string(data)).Debug("ignoring register without a user id")
		return
	}

	userID := id.Uint64()
	if client.tokenUserID != 0 && client.tokenUserID != userID {
		logrus.WithFields(logrus.Fields{
			"user_id":       userID,
			"token_user_id": client.tokenUserID,
		}).Warn("ignoring register for a user other than the token's")
		return
	}

	if previous := client.userID.Load(); client.registered && previous != userID {
		s.registry.Unregister(previous, client.generation)
	}
	client.userID.Store(userID)
	client.generation = s.registry.Register(userID, client)
	client.registered = client.generation != 0
	logrus.WithField("user_id", userID).Debug("push connection registered")
}

// NotificationRequest is the body of a send-notification event or request.
type NotificationRequest struct {
	ToUser  utils.FlexibleID `json:"toUser" binding:"required"`
	Message string           `json:"message" binding:"required"`
	Type    string           `json:"type"`
	Title   string           `json:"title"`
}

// Notification converts the request into its push payload.
func (r NotificationRequest) Notification() Notification {
	return Notification{Message: r.Message, Type: r.Type, Title: r.Title}
}

func (s *Server) handleSendNotification(data json.RawMessage) {
	var req NotificationRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ToUser == 0 {
		logrus.WithField("data", string(data)).Debug("ignoring malformed send-notification")
		return
	}
	s.router.Notify(req.ToUser.Uint64(), req.Notification())
}
