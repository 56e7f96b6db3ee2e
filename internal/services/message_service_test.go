package services

import (
	"context"
	"testing"
	"time"

	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/realtime"
	"github.com/serialpm/serialpm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMessageService(env *serviceTestEnv, now time.Time) *MessageService {
	s := NewMessageService(env.messageRepo, env.userRepo, env.router)
	s.now = func() time.Time { return now }
	return s
}

func TestMessageService_SendToOfflineUserPersistsOnce(t *testing.T) {
	env := setupServiceTestEnv(t)
	ada := testutil.CreateUser(t, env.db, "Ada", "ada@acme.test")
	bob := testutil.CreateUser(t, env.db, "Bob", "bob@acme.test")
	service := newTestMessageService(env, time.Now())

	done := make(chan error, 1)
	go func() {
		_, err := service.Send(context.Background(), ada.ID, bob.ID, "are you there?")
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sending to an offline user blocked")
	}
	assert.Equal(t, int64(1), testutil.CountRows(t, env.db, &models.Message{}))
}

func TestMessageService_SendPushesMessageAndNotification(t *testing.T) {
	env := setupServiceTestEnv(t)
	ada := testutil.CreateUser(t, env.db, "Ada", "ada@acme.test")
	bob := testutil.CreateUser(t, env.db, "Bob", "bob@acme.test")
	sentAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service := newTestMessageService(env, sentAt)
	bobConn := env.connect(bob.ID)
	adaConn := env.connect(ada.ID)

	msg, err := service.Send(context.Background(), ada.ID, bob.ID, "  lunch?  ")
	require.NoError(t, err)
	assert.Equal(t, "lunch?", msg.Body)

	events := bobConn.Events()
	require.Len(t, events, 2)

	assert.Equal(t, realtime.EventReceiveMessage, events[0].Name)
	assert.Equal(t, realtime.MessagePush{ID: msg.ID, FromUser: ada.ID, Message: "lunch?", Timestamp: sentAt}, events[0].Data)

	assert.Equal(t, realtime.EventReceiveNotification, events[1].Name)
	note := events[1].Data.(realtime.Notification)
	assert.Equal(t, "message", note.Type)
	assert.Equal(t, "New Message", note.Title)
	assert.Equal(t, "Ada sent you a message", note.Message)

	assert.Empty(t, adaConn.Events())
	assert.Equal(t, int64(1), testutil.CountRows(t, env.db, &models.Message{}))
}

func TestMessageService_SendValidation(t *testing.T) {
	env := setupServiceTestEnv(t)
	ada := testutil.CreateUser(t, env.db, "Ada", "ada@acme.test")
	service := newTestMessageService(env, time.Now())

	_, err := service.Send(context.Background(), ada.ID, 404, "hello")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = service.Send(context.Background(), ada.ID, ada.ID, "   ")
	assert.ErrorIs(t, err, ErrMessageEmpty)

	assert.Zero(t, testutil.CountRows(t, env.db, &models.Message{}))
}

func TestMessageService_ConversationIsSymmetric(t *testing.T) {
	env := setupServiceTestEnv(t)
	ada := testutil.CreateUser(t, env.db, "Ada", "ada@acme.test")
	bob := testutil.CreateUser(t, env.db, "Bob", "bob@acme.test")
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	service := newTestMessageService(env, base)
	_, err := service.Send(context.Background(), ada.ID, bob.ID, "one")
	require.NoError(t, err)
	service.now = func() time.Time { return base.Add(time.Second) }
	_, err = service.Send(context.Background(), bob.ID, ada.ID, "two")
	require.NoError(t, err)

	fromAda, err := service.Conversation(context.Background(), ada.ID, bob.ID)
	require.NoError(t, err)
	fromBob, err := service.Conversation(context.Background(), bob.ID, ada.ID)
	require.NoError(t, err)

	require.Len(t, fromAda, 2)
	assert.Equal(t, fromAda, fromBob)
	assert.Equal(t, "one", fromAda[0].Body)
	assert.Equal(t, "two", fromAda[1].Body)
}
