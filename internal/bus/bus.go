package bus

import (
	"context"
	"sync"
)

const inboundBuffer = 64

// MessageBus routes commands to the agent runtime and reply payloads
// back to the invocation that produced them. Safe for concurrent use.
type MessageBus struct {
	mu      sync.Mutex
	inbound chan RoutedCommand
	streams map[string]chan Reply
}

// New creates a MessageBus.
func New() *MessageBus {
	return &MessageBus{
		inbound: make(chan RoutedCommand, inboundBuffer),
		streams: make(map[string]chan Reply),
	}
}

// PublishInbound queues a routed command for the agent runtime.
// Drops the command if the queue is full; the caller's dispatch timeout
// turns that into an empty-result answer rather than a hang.
func (b *MessageBus) PublishInbound(cmd RoutedCommand) {
	select {
	case b.inbound <- cmd:
	default:
	}
}

// ConsumeInbound blocks until a command is available or ctx is done.
func (b *MessageBus) ConsumeInbound(ctx context.Context) (RoutedCommand, bool) {
	select {
	case <-ctx.Done():
		return RoutedCommand{}, false
	case cmd := <-b.inbound:
		return cmd, true
	}
}

// OpenReplyStream registers a reply channel for an invocation. The
// caller must CloseReplyStream when done.
func (b *MessageBus) OpenReplyStream(invocationID string) <-chan Reply {
	ch := make(chan Reply, 16)
	b.mu.Lock()
	b.streams[invocationID] = ch
	b.mu.Unlock()
	return ch
}

// CloseReplyStream unregisters an invocation's reply channel.
func (b *MessageBus) CloseReplyStream(invocationID string) {
	b.mu.Lock()
	ch, ok := b.streams[invocationID]
	delete(b.streams, invocationID)
	b.mu.Unlock()
	if ok {
		close(ch)
	}
}

// PublishReply delivers a reply to its invocation's stream. Replies for
// unknown (already closed) invocations are dropped.
func (b *MessageBus) PublishReply(reply Reply) {
	b.mu.Lock()
	ch, ok := b.streams[reply.InvocationID]
	b.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- reply:
	default:
	}
}
