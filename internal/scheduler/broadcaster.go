// ABOUTME: In-memory fan-out of simulation frames to renderers
// ABOUTME: Non-blocking publish drops frames for subscribers that fall behind

package scheduler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// subscriberBufferSize is the channel buffer for each subscriber.
const subscriberBufferSize = 16

// Broadcaster delivers published frames to every subscriber.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]chan Frame
	closed      bool
	logger      *slog.Logger
}

// NewBroadcaster creates a broadcaster. Pass nil logger for default.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		subscribers: make(map[string]chan Frame),
		logger:      logger.With("component", "broadcaster"),
	}
}

// Subscribe returns a channel of frames and a subscription ID. The
// subscription is removed when ctx is cancelled or the broadcaster closes.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan Frame, string) {
	subID := uuid.New().String()
	ch := make(chan Frame, subscriberBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, subID
	}
	b.subscribers[subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "sub_id", subID)

	go func() {
		<-ctx.Done()
		b.Unsubscribe(subID)
	}()

	return ch, subID
}

// Publish sends f to every subscriber whose buffer has room.
func (b *Broadcaster) Publish(f Frame) {
	// Sends happen under the read lock so Unsubscribe cannot close a channel
	// mid-send. They never block.
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- f:
		default:
			b.logger.Debug("dropped frame for slow subscriber", "sub_id", id, "seq", f.Seq)
		}
	}
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[subID]
	if !ok {
		return
	}
	delete(b.subscribers, subID)
	close(ch)

	b.logger.Debug("subscriber removed", "sub_id", subID)
}

// Close closes every subscriber channel. Later subscriptions get a closed
// channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
