package client

import (
	"context"
	"sync"
	"time"

	"skillshare/models"
)

const DefaultPollInterval = 5 * time.Second

// Subscriber delivers fresh conversation lists until ctx is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, onUpdate func([]models.ConversationSummary)) error
}

type ConversationLister interface {
	Conversations(ctx context.Context) ([]models.ConversationSummary, error)
}

// Poller refetches conversations on a fixed interval. A slow fetch does not
// hold up the next tick, so fetches may overlap; each carries a sequence
// number and a response older than the last one applied is dropped.
type Poller struct {
	src      ConversationLister
	Interval time.Duration
	// Timeout bounds each fetch. Defaults to Interval.
	Timeout time.Duration
	// OnError sees every failed fetch. The loop keeps going.
	OnError func(error)
}

var _ Subscriber = (*Poller)(nil)

func NewPoller(src ConversationLister, interval time.Duration) *Poller {
	return &Poller{src: src, Interval: interval}
}

// Subscribe fetches immediately and then on every tick. It returns nil once
// ctx is cancelled and every in-flight fetch has finished; onUpdate is never
// called after it returns and never concurrently with itself.
func (p *Poller) Subscribe(ctx context.Context, onUpdate func([]models.ConversationSummary)) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = interval
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		seq     uint64
		applied uint64
	)

	fetch := func() {
		seq++
		n := seq
		wg.Add(1)
		go func() {
			defer wg.Done()
			fctx, cancel := context.WithTimeout(ctx, timeout)
			convs, err := p.src.Conversations(fctx)
			cancel()

			mu.Lock()
			defer mu.Unlock()
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				if p.OnError != nil {
					p.OnError(err)
				}
				return
			}
			if n <= applied {
				return
			}
			applied = n
			onUpdate(convs)
		}()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fetch()
	for {
		select {
		case <-ctx.Done():
			ticker.Stop()
			wg.Wait()
			return nil
		case <-ticker.C:
			fetch()
		}
	}
}
