// Package store defines the storage contracts consumed by the command
// pipeline: pairing requests for unknown DM senders, and per-channel
// allow-list entries promoted from approved pairings.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PairingMeta carries optional sender metadata captured at request time.
type PairingMeta struct {
	Name string
}

// PairingRequest is a pending access request from an unrecognized DM
// sender. Lifecycle: created → approved by an operator → sender
// promoted into the channel allow-list and the request retired.
type PairingRequest struct {
	ID         uuid.UUID
	Channel    string
	SenderID   string
	SenderName string
	Code       string
	CreatedAt  time.Time

	// Created is true when this call created the request, false when an
	// identical pending request already existed. Callers send pairing
	// instructions only on Created to avoid resending the same code on
	// every retried message.
	Created bool
}

// PairingStore persists pairing requests. Upsert is idempotent per
// (channel, senderID): a repeat call before approval returns the
// existing pending request's code with Created=false.
type PairingStore interface {
	Upsert(ctx context.Context, channel, senderID string, meta PairingMeta) (PairingRequest, error)
	List(ctx context.Context) ([]PairingRequest, error)
	Approve(ctx context.Context, code string) (PairingRequest, error)
	Revoke(ctx context.Context, channel, senderID string) error
}

// ChannelAllowStore persists dynamically approved allow-list entries
// per channel. Reads may fail; callers degrade to an empty list rather
// than blocking the authorization decision.
type ChannelAllowStore interface {
	List(ctx context.Context, channel string) ([]string, error)
	Add(ctx context.Context, channel, entry string) error
	Remove(ctx context.Context, channel, entry string) error
}

// Stores is the top-level container for all storage backends.
type Stores struct {
	Pairing      PairingStore
	ChannelAllow ChannelAllowStore
}
