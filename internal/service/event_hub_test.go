package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedURL(t *testing.T, hub *EventHub) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, 1)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialFeed(t *testing.T, hub *EventHub) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(feedURL(t, hub), nil)
	require.NoError(t, err)
	return conn
}

func TestEventHubStreamsEvents(t *testing.T) {
	hub := NewEventHub()
	conn := dialFeed(t, hub)
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	MultiPublisher{NoopPublisher{}, hub}.Publish(context.Background(), Event{Type: EventApplicationApproved, EntityID: 42, EmployeeID: 7})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, EventApplicationApproved, got.Type)
	assert.Equal(t, uint(42), got.EntityID)
	assert.Equal(t, uint(7), got.EmployeeID)
	assert.False(t, got.At.IsZero())

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestEventHubClose(t *testing.T) {
	hub := NewEventHub()
	conn := dialFeed(t, hub)
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Zero(t, hub.Subscribers())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// publishing after close reaches nobody and does not panic
	hub.Publish(context.Background(), Event{Type: EventTrainingDeactivated})
}

func TestEventHubOriginCheck(t *testing.T) {
	hub := NewEventHub("http://hr.example.com")
	url := feedURL(t, hub)

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{"allowed origin", "http://hr.example.com", true},
		{"foreign origin", "http://evil.example.net", false},
		{"no origin header", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if !tt.ok {
				require.Error(t, err)
				require.NotNil(t, resp)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
				return
			}
			require.NoError(t, err)
			require.NoError(t, conn.Close())
		})
	}
	require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}
