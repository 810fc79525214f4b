// Package agent bridges the message bus to the external agent runtime.
// Reply generation itself is not part of this gateway; the runtime is
// reached over HTTP and owns its own reasoning.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tanguofu/openclaw/internal/bus"
)

// Forwarder consumes routed commands from the bus, posts each to the
// agent runtime endpoint, and publishes the replies it returns back to
// the invocation's stream.
type Forwarder struct {
	bus        *bus.MessageBus
	endpoint   string
	httpClient *http.Client
}

// NewForwarder creates a Forwarder posting to endpoint.
func NewForwarder(b *bus.MessageBus, endpoint string) *Forwarder {
	return &Forwarder{
		bus:        b,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 110 * time.Second},
	}
}

// Run consumes commands until ctx is cancelled. Each command is
// forwarded on its own goroutine so one slow invocation does not block
// the queue.
func (f *Forwarder) Run(ctx context.Context) error {
	for {
		cmd, ok := f.bus.ConsumeInbound(ctx)
		if !ok {
			return ctx.Err()
		}
		go f.forward(ctx, cmd)
	}
}

// runtimeResponse is the agent runtime's reply envelope.
type runtimeResponse struct {
	Replies []struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
	} `json:"replies"`
}

func (f *Forwarder) forward(ctx context.Context, cmd bus.RoutedCommand) {
	body, err := json.Marshal(cmd)
	if err != nil {
		slog.Error("marshal routed command", "invocation", cmd.InvocationID, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		slog.Error("build runtime request", "invocation", cmd.InvocationID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		slog.Error("agent runtime unreachable", "invocation", cmd.InvocationID, "error", err)
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		slog.Error("read runtime response", "invocation", cmd.InvocationID, "error", err)
		return
	}
	if resp.StatusCode >= 300 {
		slog.Error("agent runtime rejected command",
			"invocation", cmd.InvocationID, "status", resp.StatusCode)
		return
	}

	var parsed runtimeResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		slog.Error("parse runtime response", "invocation", cmd.InvocationID, "error", err)
		return
	}

	for _, r := range parsed.Replies {
		f.bus.PublishReply(bus.Reply{
			InvocationID: cmd.InvocationID,
			Kind:         r.Kind,
			Text:         r.Text,
		})
	}

	// The invocation ends on a final reply. When the runtime answered
	// with only intermediate kinds, close it with an empty final marker
	// so the dispatcher does not sit out its timeout.
	if !hasFinal(parsed) {
		f.bus.PublishReply(bus.Reply{
			InvocationID: cmd.InvocationID,
			Kind:         bus.ReplyFinal,
		})
	}
}

func hasFinal(resp runtimeResponse) bool {
	for _, r := range resp.Replies {
		if r.Kind == bus.ReplyFinal {
			return true
		}
	}
	return false
}
