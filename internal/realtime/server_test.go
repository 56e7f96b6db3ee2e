package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/serialpm/serialpm-api/internal/auth"
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsTestEnv struct {
	registry *MemoryRegistry
	router   *Router
	url      string
}

func setupWSTestEnv(t *testing.T, opts ...func(*ServerOptions)) *wsTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	serverOpts := ServerOptions{BufferSize: 4, AllowedOrigins: []string{"*"}}
	for _, opt := range opts {
		opt(&serverOpts)
	}

	registry := NewMemoryRegistry(nil)
	router := NewRouter(registry, nil)
	server := NewServer(registry, router, nil, serverOpts)

	engine := gin.New()
	engine.GET("/ws", server.ServeWS)
	httpServer := httptest.NewServer(engine)
	t.Cleanup(func() {
		_ = registry.Close()
		httpServer.Close()
	})

	return &wsTestEnv{
		registry: registry,
		router:   router,
		url:      "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws",
	}
}

func (e *wsTestEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	return e.dialWith(t, "", nil)
}

func (e *wsTestEnv) dialWith(t *testing.T, query string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(e.url+query, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// dialStatus attempts a connection that is expected to be refused and
// returns the HTTP status of the refusal.
func (e *wsTestEnv) dialStatus(t *testing.T, query string, header http.Header) int {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(e.url+query, header)
	if conn != nil {
		_ = conn.Close()
	}
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	return resp.StatusCode
}

func (e *wsTestEnv) register(t *testing.T, conn *websocket.Conn, userID interface{}, want uint64) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"event": EventRegister, "data": userID}))
	require.Eventually(t, func() bool { return e.router.Online(want) }, time.Second, 10*time.Millisecond)
}

type inboundEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

func readEvent(t *testing.T, conn *websocket.Conn) inboundEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev inboundEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestServer_RegisterAndReceive(t *testing.T) {
	env := setupWSTestEnv(t)
	conn := env.dial(t)
	env.register(t, conn, 11, 11)

	require.True(t, env.router.Notify(11, Notification{Message: "Welcome aboard", Type: "success"}))

	ev := readEvent(t, conn)
	assert.Equal(t, EventReceiveNotification, ev.Event)
	assert.Equal(t, "Welcome aboard", ev.Data["message"])
	assert.Equal(t, "success", ev.Data["type"])
}

func TestServer_RegisterAcceptsStringID(t *testing.T) {
	env := setupWSTestEnv(t)
	conn := env.dial(t)
	env.register(t, conn, "12", 12)
}

func TestServer_SendNotificationFrame(t *testing.T) {
	env := setupWSTestEnv(t)
	sender := env.dial(t)
	receiver := env.dial(t)
	env.register(t, receiver, 21, 21)

	require.NoError(t, sender.WriteJSON(map[string]interface{}{
		"event": EventSendNotification,
		"data":  map[string]interface{}{"toUser": 21, "message": "ping", "type": "info"},
	}))

	ev := readEvent(t, receiver)
	assert.Equal(t, EventReceiveNotification, ev.Event)
	assert.Equal(t, "ping", ev.Data["message"])
}

func TestServer_ReconnectReplacesBinding(t *testing.T) {
	env := setupWSTestEnv(t)
	first := env.dial(t)
	env.register(t, first, 31, 31)
	stale, _ := env.registry.Lookup(31)
	second := env.dial(t)
	require.NoError(t, second.WriteJSON(map[string]interface{}{"event": EventRegister, "data": 31}))

	require.Eventually(t, func() bool {
		conn, ok := env.registry.Lookup(31)
		return ok && conn != stale
	}, time.Second, 10*time.Millisecond)

	// Closing the stale socket must not unregister the live one.
	require.NoError(t, first.Close())
	time.Sleep(50 * time.Millisecond)
	assert.True(t, env.router.Online(31))

	require.True(t, env.router.Notify(31, Notification{Message: "latest"}))
	ev := readEvent(t, second)
	assert.Equal(t, "latest", ev.Data["message"])
}

func TestServer_DisconnectUnregisters(t *testing.T) {
	env := setupWSTestEnv(t)
	conn := env.dial(t)
	env.register(t, conn, 41, 41)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return !env.router.Online(41) }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_IgnoresMalformedFrames(t *testing.T) {
	env := setupWSTestEnv(t)
	conn := env.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"event": "unknown"}))
	env.register(t, conn, 51, 51)
}

func withTokens(issuer *auth.Issuer, required bool) func(*ServerOptions) {
	return func(o *ServerOptions) {
		o.Verifier = issuer
		o.RequireToken = required
	}
}

func issueToken(t *testing.T, issuer *auth.Issuer, userID uint64) string {
	t.Helper()
	token, err := issuer.Issue(&models.User{ID: userID, Email: "user@example.com"})
	require.NoError(t, err)
	return token
}

func TestServer_TokenPinsRegistration(t *testing.T) {
	issuer := auth.NewIssuer("push-test-secret", time.Hour)
	env := setupWSTestEnv(t, withTokens(issuer, false))

	header := http.Header{"Authorization": []string{"Bearer " + issueToken(t, issuer, 61)}}
	conn := env.dialWith(t, "", header)

	// A register for someone else is ignored; the connection stays usable.
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"event": EventRegister, "data": 62}))
	env.register(t, conn, 61, 61)
	assert.False(t, env.router.Online(62))

	require.True(t, env.router.Notify(61, Notification{Message: "mine"}))
	ev := readEvent(t, conn)
	assert.Equal(t, "mine", ev.Data["message"])
}

func TestServer_TokenFromQuery(t *testing.T) {
	issuer := auth.NewIssuer("push-test-secret", time.Hour)
	env := setupWSTestEnv(t, withTokens(issuer, true))

	conn := env.dialWith(t, "?token="+issueToken(t, issuer, 71), nil)
	env.register(t, conn, "71", 71)
}

func TestServer_RejectsBadTokens(t *testing.T) {
	issuer := auth.NewIssuer("push-test-secret", time.Hour)
	other := auth.NewIssuer("another-secret", time.Hour)

	optional := setupWSTestEnv(t, withTokens(issuer, false))
	assert.Equal(t, http.StatusForbidden, optional.dialStatus(t, "?token=garbage", nil))
	assert.Equal(t, http.StatusForbidden, optional.dialStatus(t, "", http.Header{
		"Authorization": []string{"Bearer " + issueToken(t, other, 81)},
	}))

	// Without a token the connection is accepted and may register freely.
	conn := optional.dial(t)
	optional.register(t, conn, 81, 81)

	required := setupWSTestEnv(t, withTokens(issuer, true))
	assert.Equal(t, http.StatusUnauthorized, required.dialStatus(t, "", nil))
	assert.Equal(t, http.StatusForbidden, required.dialStatus(t, "?token=garbage", nil))
}
