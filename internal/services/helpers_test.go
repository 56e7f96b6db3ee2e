package services

import (
	"sync"
	"testing"
	"time"

	"github.com/serialpm/serialpm-api/internal/auth"
	"github.com/serialpm/serialpm-api/internal/realtime"
	"github.com/serialpm/serialpm-api/internal/repository"
	"github.com/serialpm/serialpm-api/internal/testutil"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

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

type serviceTestEnv struct {
	db       *gorm.DB
	issuer   *auth.Issuer
	registry *realtime.MemoryRegistry
	router   *realtime.Router

	userRepo    repository.UserRepository
	orgRepo     repository.OrganizationRepository
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	messageRepo repository.MessageRepository
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	registry := realtime.NewMemoryRegistry(nil)
	t.Cleanup(func() { _ = registry.Close() })

	return &serviceTestEnv{
		db:          db,
		issuer:      auth.NewIssuer(testSecret, time.Hour),
		registry:    registry,
		router:      realtime.NewRouter(registry, nil),
		userRepo:    repository.NewUserRepository(db),
		orgRepo:     repository.NewOrganizationRepository(db),
		projectRepo: repository.NewProjectRepository(db),
		taskRepo:    repository.NewTaskRepository(db),
		messageRepo: repository.NewMessageRepository(db),
	}
}

// connect registers a capturing push connection for userID.
func (e *serviceTestEnv) connect(userID uint64) *captureConn {
	conn := &captureConn{}
	e.registry.Register(userID, conn)
	return conn
}

func (e *serviceTestEnv) organizationService() *OrganizationService {
	return NewOrganizationService(e.orgRepo, e.userRepo, e.issuer)
}
