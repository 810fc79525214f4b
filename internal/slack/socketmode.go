package slack

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Listener runs the Socket Mode connection: it reads envelopes, acks
// slash-command envelopes by envelope_id, and hands commands to the
// pipeline. Reconnects with exponential backoff when the connection
// drops or Slack asks us to refresh.
type Listener struct {
	client  *Client
	handler *Handler

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewListener creates a Socket Mode listener bound to the pipeline.
func NewListener(client *Client, handler *Handler) *Listener {
	return &Listener{client: client, handler: handler}
}

type envelope struct {
	Type                   string          `json:"type"`
	EnvelopeID             string          `json:"envelope_id"`
	AcceptsResponsePayload bool            `json:"accepts_response_payload"`
	Payload                json.RawMessage `json:"payload"`
	Reason                 string          `json:"reason"` // disconnect
}

type ack struct {
	EnvelopeID string `json:"envelope_id"`
}

// slashPayload mirrors the slash_commands envelope payload fields the
// pipeline consumes.
type slashPayload struct {
	Command     string `json:"command"`
	Text        string `json:"text"`
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	TeamID      string `json:"team_id"`
	ResponseURL string `json:"response_url"`
}

// Run connects and processes envelopes until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := l.connect(ctx); err != nil {
			slog.Warn("socket mode connect failed", "backoff", backoff, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, 30*time.Second)
			continue
		}
		backoff = time.Second

		l.readLoop(ctx)
		// readLoop returns when the connection drops or Slack sends a
		// disconnect; loop around and reconnect.
	}
}

func (l *Listener) connect(ctx context.Context) error {
	wsURL, err := l.client.ConnectionOpen(ctx)
	if err != nil {
		return err
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()

	slog.Info("socket mode connected")
	return nil
}

func (l *Listener) readLoop(ctx context.Context) {
	defer l.closeConn()

	// Close the socket when ctx ends so ReadMessage unblocks.
	stop := context.AfterFunc(ctx, l.closeConn)
	defer stop()

	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("socket mode read error, will reconnect", "error", err)
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			slog.Warn("invalid socket mode envelope", "error", err)
			continue
		}

		switch env.Type {
		case "hello":
			slog.Debug("socket mode hello received")
		case "disconnect":
			slog.Info("socket mode disconnect requested", "reason", env.Reason)
			return
		case "slash_commands":
			l.handleSlashCommand(ctx, env)
		default:
			// Other event types (events_api, interactive) are not part
			// of the command surface; ack so Slack stops retrying.
			l.sendAck(env.EnvelopeID)
		}
	}
}

func (l *Listener) handleSlashCommand(ctx context.Context, env envelope) {
	var payload slashPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		slog.Warn("invalid slash command payload", "error", err)
		l.sendAck(env.EnvelopeID)
		return
	}

	req := CommandRequest{
		Command: Command{
			Name:        payload.Command,
			Text:        payload.Text,
			ChannelID:   payload.ChannelID,
			ChannelName: payload.ChannelName,
			UserID:      payload.UserID,
			UserName:    payload.UserName,
			TeamID:      payload.TeamID,
			ResponseURL: payload.ResponseURL,
		},
		Acknowledge: func() error {
			return l.sendAck(env.EnvelopeID)
		},
		Respond: func(text string) error {
			return l.client.RespondEphemeral(ctx, payload.ResponseURL, text)
		},
	}

	// Each command is handled independently; the pipeline catches its
	// own failures, so goroutines never leak a panic.
	go l.handler.HandleCommand(ctx, req)
}

func (l *Listener) sendAck(envelopeID string) error {
	if envelopeID == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	return l.conn.WriteJSON(ack{EnvelopeID: envelopeID})
}

func (l *Listener) closeConn() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		_ = l.conn.Close()
		l.conn = nil
	}
}
