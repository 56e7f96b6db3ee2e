package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/serialpm/serialpm-api/internal/auth"
	"github.com/serialpm/serialpm-api/internal/middleware"
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/realtime"
	"github.com/serialpm/serialpm-api/internal/repository"
	"github.com/serialpm/serialpm-api/internal/services"
	"github.com/serialpm/serialpm-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type captureConn struct {
	mu     sync.Mutex
	events []realtime.Event
	closed bool
}

func (c *captureConn) Send(ev realtime.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.events = append(c.events, ev)
	return true
}

func (c *captureConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *captureConn) Events() []realtime.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]realtime.Event(nil), c.events...)
}

func (c *captureConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type handlerTestEnv struct {
	db       *gorm.DB
	issuer   *auth.Issuer
	registry *realtime.MemoryRegistry
	engine   *gin.Engine
}

// setupHandlerTestEnv builds the full router. Each option may adjust the
// dependencies before the router is built.
func setupHandlerTestEnv(t *testing.T, opts ...func(*Dependencies)) *handlerTestEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	issuer := auth.NewIssuer("handler-test-secret", time.Hour)
	registry := realtime.NewMemoryRegistry(nil)
	t.Cleanup(func() { _ = registry.Close() })
	router := realtime.NewRouter(registry, nil)

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	deps := Dependencies{
		Issuer:         issuer,
		AuthService:    services.NewAuthService(userRepo, orgRepo, issuer, router).WithHashCost(bcrypt.MinCost),
		UserService:    services.NewUserService(userRepo),
		OrgService:     services.NewOrganizationService(orgRepo, userRepo, issuer),
		ProjectService: services.NewProjectService(projectRepo, userRepo),
		TaskService:    services.NewTaskService(taskRepo, projectRepo, userRepo, nil),
		MessageService: services.NewMessageService(messageRepo, userRepo, router),
		Notifier:       router,
		CORS:           middleware.DefaultCORSConfig(),
		UploadDir:      t.TempDir(),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	engine := NewRouter(deps)

	return &handlerTestEnv{
		db:       db,
		issuer:   issuer,
		registry: registry,
		engine:   engine,
	}
}

func (e *handlerTestEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.issuer.Issue(user)
	require.NoError(t, err)
	return token
}

func (e *handlerTestEnv) connect(userID uint64) *captureConn {
	conn := &captureConn{}
	e.registry.Register(userID, conn)
	return conn
}

// do sends body as JSON. An empty token sends no Authorization header.
func (e *handlerTestEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}
