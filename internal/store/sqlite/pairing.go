package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tanguofu/openclaw/internal/store"
)

// codeAlphabet avoids 0/O/1/I/L so codes survive being read aloud.
const codeAlphabet = "ABCDEFGHJKMNPQRSTVWXYZ23456789"

const codeLength = 6

// PairingStore implements store.PairingStore backed by SQLite.
type PairingStore struct {
	db *sql.DB
}

func NewPairingStore(db *sql.DB) *PairingStore {
	return &PairingStore{db: db}
}

// Upsert returns the pending request for (channel, senderID), creating
// one with a fresh code if none exists. Created reports which happened.
func (s *PairingStore) Upsert(ctx context.Context, channel, senderID string, meta store.PairingMeta) (store.PairingRequest, error) {
	if existing, err := s.get(ctx, channel, senderID); err == nil {
		return existing, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return store.PairingRequest{}, fmt.Errorf("lookup pairing request: %w", err)
	}

	req := store.PairingRequest{
		ID:         uuid.Must(uuid.NewV7()),
		Channel:    channel,
		SenderID:   senderID,
		SenderName: meta.Name,
		Code:       generateCode(),
		CreatedAt:  time.Now().UTC(),
		Created:    true,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pairing_requests (id, channel, sender_id, sender_name, code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		req.ID.String(), req.Channel, req.SenderID, req.SenderName, req.Code, req.CreatedAt,
	)
	if err != nil {
		// A concurrent Upsert for the same sender may have won the
		// insert; fall back to the stored row.
		if existing, getErr := s.get(ctx, channel, senderID); getErr == nil {
			return existing, nil
		}
		return store.PairingRequest{}, fmt.Errorf("insert pairing request: %w", err)
	}
	return req, nil
}

// List returns all pending pairing requests, oldest first.
func (s *PairingStore) List(ctx context.Context) ([]store.PairingRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, channel, sender_id, sender_name, code, created_at
		 FROM pairing_requests ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list pairing requests: %w", err)
	}
	defer rows.Close()

	var out []store.PairingRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// Approve promotes the request matching code into the channel
// allow-list and retires the request.
func (s *PairingStore) Approve(ctx context.Context, code string) (store.PairingRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.PairingRequest{}, fmt.Errorf("begin approve: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, channel, sender_id, sender_name, code, created_at
		 FROM pairing_requests WHERE code = ?`, code)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.PairingRequest{}, fmt.Errorf("no pairing request with code %s", code)
		}
		return store.PairingRequest{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO channel_allowlist (channel, entry, added_at) VALUES (?, ?, ?)
		 ON CONFLICT (channel, entry) DO NOTHING`,
		req.Channel, req.SenderID, time.Now().UTC(),
	); err != nil {
		return store.PairingRequest{}, fmt.Errorf("promote sender to allow-list: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM pairing_requests WHERE id = ?`, req.ID.String(),
	); err != nil {
		return store.PairingRequest{}, fmt.Errorf("retire pairing request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return store.PairingRequest{}, fmt.Errorf("commit approve: %w", err)
	}
	return req, nil
}

// Revoke removes a pending request without approving it.
func (s *PairingStore) Revoke(ctx context.Context, channel, senderID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM pairing_requests WHERE channel = ? AND sender_id = ?`,
		channel, senderID)
	if err != nil {
		return fmt.Errorf("revoke pairing request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no pending pairing request for %s on %s", senderID, channel)
	}
	return nil
}

func (s *PairingStore) get(ctx context.Context, channel, senderID string) (store.PairingRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, channel, sender_id, sender_name, code, created_at
		 FROM pairing_requests WHERE channel = ? AND sender_id = ?`,
		channel, senderID)
	return scanRequest(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (store.PairingRequest, error) {
	var req store.PairingRequest
	var id string
	if err := row.Scan(&id, &req.Channel, &req.SenderID, &req.SenderName, &req.Code, &req.CreatedAt); err != nil {
		return store.PairingRequest{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return store.PairingRequest{}, fmt.Errorf("parse pairing request id: %w", err)
	}
	req.ID = parsed
	return req, nil
}

func generateCode() string {
	// Rejection sampling: bytes at or above the largest multiple of the
	// alphabet size would skew the low end of the alphabet.
	limit := 256 - 256%len(codeAlphabet)

	out := make([]byte, 0, codeLength)
	buf := make([]byte, 2*codeLength)
	for len(out) < codeLength {
		if _, err := rand.Read(buf); err != nil {
			panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == codeLength {
				break
			}
		}
	}
	return string(out)
}
