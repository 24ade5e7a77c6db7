package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillshare/models"
)

type result struct {
	convs []models.ConversationSummary
	err   error
}

// scriptedLister answers call i from script[i]; calls past the script block
// until their context ends.
type scriptedLister struct {
	mu     sync.Mutex
	calls  int
	script []chan result
}

func newScriptedLister(n int) *scriptedLister {
	l := &scriptedLister{}
	for i := 0; i < n; i++ {
		l.script = append(l.script, make(chan result, 1))
	}
	return l
}

func (l *scriptedLister) Conversations(ctx context.Context) ([]models.ConversationSummary, error) {
	l.mu.Lock()
	i := l.calls
	l.calls++
	l.mu.Unlock()

	if i >= len(l.script) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	select {
	case r := <-l.script[i]:
		return r.convs, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *scriptedLister) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func conv(last string) []models.ConversationSummary {
	return []models.ConversationSummary{{OtherUserID: "b@x.com", LastMessage: last}}
}

type updates struct {
	mu  sync.Mutex
	got []string
}

func (u *updates) record(convs []models.ConversationSummary) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.got = append(u.got, convs[0].LastMessage)
}

func (u *updates) list() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.got...)
}

func TestPollerLastWriteWins(t *testing.T) {
	lister := newScriptedLister(2)
	p := NewPoller(lister, 20*time.Millisecond)
	p.Timeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	u := &updates{}
	go func() { done <- p.Subscribe(ctx, u.record) }()

	// the first fetch hangs while the second completes
	require.Eventually(t, func() bool { return lister.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	lister.script[1] <- result{convs: conv("second")}
	require.Eventually(t, func() bool { return len(u.list()) == 1 }, time.Second, 5*time.Millisecond)

	lister.script[0] <- result{convs: conv("first")}
	assert.Never(t, func() bool { return len(u.list()) > 1 }, 100*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, []string{"second"}, u.list())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe did not return after cancel")
	}
}

func TestPollerKeepsGoingAfterErrors(t *testing.T) {
	lister := newScriptedLister(2)
	lister.script[0] <- result{err: ErrServer}
	lister.script[1] <- result{convs: conv("hi")}

	p := NewPoller(lister, 10*time.Millisecond)
	var mu sync.Mutex
	var errs []error
	p.OnError = func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	u := &updates{}
	go func() { _ = p.Subscribe(ctx, u.record) }()

	require.Eventually(t, func() bool { return len(u.list()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"hi"}, u.list())

	mu.Lock()
	defer mu.Unlock()
	found := false
	for _, err := range errs {
		found = found || errors.Is(err, ErrServer)
	}
	assert.True(t, found, "fetch errors reach OnError")
}

func TestPollerCancelWaitsForInflight(t *testing.T) {
	lister := newScriptedLister(0)
	p := NewPoller(lister, time.Hour)
	p.Timeout = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	u := &updates{}
	done := make(chan error, 1)
	go func() { done <- p.Subscribe(ctx, u.record) }()

	require.Eventually(t, func() bool { return lister.callCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe did not return after cancel")
	}
	assert.Empty(t, u.list())
	assert.Equal(t, 1, lister.callCount(), "no fetches after cancellation")
}
