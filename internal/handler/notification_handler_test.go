package handler

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/dto"
	"github.com/noah-isme/lms-api/internal/models"
)

type feedStub struct {
	mu        sync.Mutex
	userID    string
	events    chan models.Notification
	cancelled bool
}

func (f *feedStub) List(ctx context.Context, userID string) (*dto.NotificationFeed, error) {
	f.userID = userID
	return &dto.NotificationFeed{
		Items:       []models.Notification{{ID: "n1", UserID: userID, Title: "Class Starting Soon!"}},
		UnreadCount: 1,
	}, nil
}

func (f *feedStub) MarkAllRead(ctx context.Context, userID string) (*dto.MarkReadResponse, error) {
	f.userID = userID
	return &dto.MarkReadResponse{Updated: 4}, nil
}

func (f *feedStub) Subscribe(userID string) (<-chan models.Notification, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userID = userID
	return f.events, func() {
		f.mu.Lock()
		f.cancelled = true
		f.mu.Unlock()
	}
}

func TestNotificationHandlerRequiresUser(t *testing.T) {
	h := NewNotificationHandler(&feedStub{})

	c, rec := newTestContext(http.MethodGet, "/api/notifications", "")
	h.List(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotificationHandlerList(t *testing.T) {
	stub := &feedStub{}
	h := NewNotificationHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/notifications", "")
	withUser(c, "user-1")
	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unreadCount":1`)
	assert.Contains(t, rec.Body.String(), `"Class Starting Soon!"`)
	assert.Equal(t, "user-1", stub.userID)
}

func TestNotificationHandlerMarkRead(t *testing.T) {
	h := NewNotificationHandler(&feedStub{})

	c, rec := newTestContext(http.MethodPost, "/api/notifications/read", "")
	withUser(c, "user-1")
	h.MarkRead(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"updated":4`)
}

func TestNotificationHandlerStream(t *testing.T) {
	stub := &feedStub{events: make(chan models.Notification, 1)}
	h := NewNotificationHandler(stub)
	h.keepAlive = time.Hour

	c, rec := newTestContext(http.MethodGet, "/api/notifications/stream", "")
	ctx, cancel := context.WithCancel(context.Background())
	c.Request = c.Request.WithContext(ctx)
	withUser(c, "user-1")

	stub.events <- models.Notification{ID: "n1", UserID: "user-1", Title: "Enrollment Successful!"}

	done := make(chan struct{})
	go func() {
		h.Stream(c)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(stub.events) == 0 }, time.Second, 5*time.Millisecond)
	// Give the loop time to write the event it just received.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after the client left")
	}

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "event:notification")
	assert.Contains(t, rec.Body.String(), "Enrollment Successful!")
	stub.mu.Lock()
	assert.True(t, stub.cancelled)
	stub.mu.Unlock()
}

func TestNotificationHandlerStreamEndsWhenChannelCloses(t *testing.T) {
	stub := &feedStub{events: make(chan models.Notification)}
	close(stub.events)
	h := NewNotificationHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/notifications/stream", "")
	withUser(c, "user-1")
	h.Stream(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, stub.cancelled)
}
