package notify

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillshare/models"
)

type recorder struct {
	mu     sync.Mutex
	events map[string][]Event
}

func (r *recorder) Publish(userID string, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = map[string][]Event{}
	}
	r.events[userID] = append(r.events[userID], ev)
}

func TestFanoutDeliversToEveryPublisher(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	f := Fanout{a, nil, b, Nop{}}

	f.Publish("u@x.com", Event{Type: EventConversationUpdated})

	assert.Len(t, a.events["u@x.com"], 1)
	assert.Len(t, b.events["u@x.com"], 1)
}

type memPushStore struct {
	subs    []models.PushSubscription
	deleted []string
}

func (m *memPushStore) SavePushSubscription(_ context.Context, s *models.PushSubscription) error {
	m.subs = append(m.subs, *s)
	return nil
}

func (m *memPushStore) ListPushSubscriptions(_ context.Context, userID string) ([]models.PushSubscription, error) {
	var out []models.PushSubscription
	for _, s := range m.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memPushStore) DeletePushSubscription(_ context.Context, _, endpoint string) error {
	m.deleted = append(m.deleted, endpoint)
	return nil
}

func TestWebPushDeletesGoneSubscriptions(t *testing.T) {
	subs := &memPushStore{subs: []models.PushSubscription{
		{UserID: "b@x.com", Endpoint: "https://push.example/live"},
		{UserID: "b@x.com", Endpoint: "https://push.example/gone"},
	}}
	w := NewWebPush(subs, "pub", "priv", "mailto:test@x.com")

	var sentTo []string
	var payloads []string
	w.send = func(payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
		sentTo = append(sentTo, sub.Endpoint)
		payloads = append(payloads, string(payload))
		assert.Equal(t, "priv", opts.VAPIDPrivateKey)
		status := http.StatusCreated
		if strings.HasSuffix(sub.Endpoint, "gone") {
			status = http.StatusGone
		}
		return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(""))}, nil
	}

	w.deliver("b@x.com", Event{Type: EventMessageNew, Payload: NewMessage{
		Message:    models.Message{ID: "m1", SenderID: "a@x.com", ReceiverID: "b@x.com", Content: strings.Repeat("x", 150)},
		SenderName: "Ada",
	}})

	require.Len(t, sentTo, 2)
	assert.Equal(t, []string{"https://push.example/gone"}, subs.deleted)
	assert.Contains(t, payloads[0], "Ada sent a message")
	assert.Contains(t, payloads[0], strings.Repeat("x", 100)+"...")
}

func TestWebPushIgnoresOtherEvents(t *testing.T) {
	subs := &memPushStore{subs: []models.PushSubscription{{UserID: "b@x.com", Endpoint: "e"}}}
	w := NewWebPush(subs, "pub", "priv", "mailto:test@x.com")
	w.send = func([]byte, *webpush.Subscription, *webpush.Options) (*http.Response, error) {
		t.Fatal("unexpected send")
		return nil, nil
	}

	w.Publish("b@x.com", Event{Type: EventMessageRead})
	w.deliver("b@x.com", Event{Type: EventMessageNew, Payload: "not a message"})
}
