package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"skillshare/models"
)

// Stream keeps conversations fresh over the WebSocket channel: it fetches
// once on connect and again whenever a message or conversation event
// arrives.
type Stream struct {
	client *Client
	Dialer *websocket.Dialer
	// OnError sees failed refetches. A broken connection ends Subscribe.
	OnError func(error)
}

var _ Subscriber = (*Stream)(nil)

func NewStream(c *Client) *Stream {
	return &Stream{client: c, Dialer: websocket.DefaultDialer}
}

func (s *Stream) url() (string, error) {
	u, err := url.Parse(s.client.Host())
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"token": {s.client.Token()}}.Encode()
	return u.String(), nil
}

func refreshes(eventType string) bool {
	return strings.HasPrefix(eventType, "message:") || strings.HasPrefix(eventType, "conversation:")
}

// Subscribe returns nil when ctx is cancelled and an error when the
// connection cannot be opened or drops.
func (s *Stream) Subscribe(ctx context.Context, onUpdate func([]models.ConversationSummary)) error {
	wsURL, err := s.url()
	if err != nil {
		return err
	}
	conn, _, err := s.Dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.client.Host(), err)
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
			conn.Close()
		}
	}()

	refresh := func() {
		convs, err := s.client.Conversations(ctx)
		if err != nil {
			if ctx.Err() == nil && s.OnError != nil {
				s.OnError(err)
			}
			return
		}
		if ctx.Err() == nil {
			onUpdate(convs)
		}
	}

	refresh()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		var ev struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		if refreshes(ev.Type) {
			refresh()
		}
	}
}
