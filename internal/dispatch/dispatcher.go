// Package dispatch bridges the command pipeline to the agent runtime
// over the message bus.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tanguofu/openclaw/internal/bus"
	"github.com/tanguofu/openclaw/internal/slack"
)

// defaultTimeout bounds how long one invocation waits for replies.
// There is no retry: a timed-out invocation surfaces as zero replies.
const defaultTimeout = 120 * time.Second

// BusDispatcher implements slack.Dispatcher by publishing routed
// commands to the message bus and collecting the replies the agent
// runtime publishes back for the invocation.
type BusDispatcher struct {
	bus     *bus.MessageBus
	timeout time.Duration
}

// NewBusDispatcher creates a dispatcher over b. timeout <= 0 uses the
// default.
func NewBusDispatcher(b *bus.MessageBus, timeout time.Duration) *BusDispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &BusDispatcher{bus: b, timeout: timeout}
}

// Dispatch publishes the routed context and streams replies to
// opts.Deliver until the final reply, the timeout, or ctx cancellation.
func (d *BusDispatcher) Dispatch(ctx context.Context, routed *slack.RouteContext, opts slack.DispatchOptions) (slack.ReplyCounts, error) {
	invocationID := uuid.Must(uuid.NewV7()).String()

	replies := d.bus.OpenReplyStream(invocationID)
	defer d.bus.CloseReplyStream(invocationID)

	d.bus.PublishInbound(bus.RoutedCommand{
		InvocationID: invocationID,
		AgentID:      routed.AgentID,
		SessionKey:   routed.SessionKey,
		AccountID:    routed.AccountID,
		Channel:      routed.Channel.ID,
		PeerKind:     routed.PeerKind,
		PeerID:       routed.Channel.ID,
		UserID:       routed.UserID,
		Prompt:       routed.Prompt,
		SystemPrompt: routed.SystemPrompt,
		Skills:       opts.SkillFilter,
		Authorized:   routed.CommandAuthorized,
	})

	var counts slack.ReplyCounts

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return counts, ctx.Err()

		case <-timer.C:
			// A timed-out invocation surfaces as zero replies, not as
			// an error.
			return counts, nil

		case reply, ok := <-replies:
			if !ok {
				return counts, nil
			}

			switch reply.Kind {
			case bus.ReplyFinal:
				// An empty final is an end-of-stream marker, not a
				// produced reply; it must not mask a zero-reply result.
				if reply.Text == "" {
					return counts, nil
				}
				counts.Final++
			case bus.ReplyTool:
				counts.Tool++
			case bus.ReplyBlock:
				counts.Block++
			default:
				if opts.OnError != nil {
					opts.OnError(fmt.Errorf("unknown reply kind %q", reply.Kind), "dispatch")
				}
				continue
			}

			if opts.Deliver != nil && reply.Text != "" {
				if err := opts.Deliver(slack.ReplyPayload{Kind: reply.Kind, Text: reply.Text}); err != nil && opts.OnError != nil {
					opts.OnError(err, "deliver")
				}
			}

			if reply.Kind == bus.ReplyFinal {
				return counts, nil
			}
		}
	}
}
