package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillshare/middleware"
	"skillshare/models"
	"skillshare/notify"
	"skillshare/websocket"
)

func TestStreamRefetchesOnEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := middleware.NewTokens("test-secret", time.Hour)
	hub := websocket.NewHub()
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	var fetches int64
	r := gin.New()
	r.GET("/ws", hub.Handler(tokens))
	r.GET("/api/messages", middleware.JWTAuthMiddleware(tokens), func(c *gin.Context) {
		n := atomic.AddInt64(&fetches, 1)
		c.JSON(http.StatusOK, gin.H{"conversations": []models.ConversationSummary{{OtherUserID: "b@x.com", UnreadCount: n}}})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := tokens.Issue(&models.User{ID: "a@x.com", Role: models.RoleCustomer})
	require.NoError(t, err)
	c := NewClient(srv.URL, time.Second)
	c.SetToken(token)

	updates := make(chan int64, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewStream(c).Subscribe(ctx, func(convs []models.ConversationSummary) {
			updates <- convs[0].UnreadCount
		})
	}()

	select {
	case n := <-updates:
		assert.EqualValues(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial fetch")
	}

	require.Eventually(t, func() bool { return hub.ConnectedUsers() == 1 }, time.Second, 10*time.Millisecond)
	hub.Publish("a@x.com", notify.Event{Type: notify.EventTyping})
	hub.Publish("a@x.com", notify.Event{Type: notify.EventMessageNew})

	select {
	case n := <-updates:
		assert.EqualValues(t, 2, n, "typing does not trigger a refetch")
	case <-time.After(2 * time.Second):
		t.Fatal("no refetch after message:new")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe did not return after cancel")
	}
}

func TestStreamRejectsBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := websocket.NewHub()
	r := gin.New()
	r.GET("/ws", hub.Handler(middleware.NewTokens("test-secret", time.Hour)))
	srv := httptest.NewServer(r)
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	c.SetToken("garbage")
	err := NewStream(c).Subscribe(context.Background(), func([]models.ConversationSummary) {})
	assert.Error(t, err)
}
