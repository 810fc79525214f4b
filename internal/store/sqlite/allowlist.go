package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ChannelAllowStore implements store.ChannelAllowStore backed by SQLite.
type ChannelAllowStore struct {
	db *sql.DB
}

func NewChannelAllowStore(db *sql.DB) *ChannelAllowStore {
	return &ChannelAllowStore{db: db}
}

// List returns the dynamically approved entries for a channel.
func (s *ChannelAllowStore) List(ctx context.Context, channel string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry FROM channel_allowlist WHERE channel = ? ORDER BY added_at`, channel)
	if err != nil {
		return nil, fmt.Errorf("list channel allow-list: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return nil, fmt.Errorf("scan allow-list entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Add records an allow-list entry. Adding an existing entry is a no-op.
func (s *ChannelAllowStore) Add(ctx context.Context, channel, entry string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO channel_allowlist (channel, entry, added_at) VALUES (?, ?, ?)
		 ON CONFLICT (channel, entry) DO NOTHING`,
		channel, entry, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add allow-list entry: %w", err)
	}
	return nil
}

// Remove deletes an allow-list entry if present.
func (s *ChannelAllowStore) Remove(ctx context.Context, channel, entry string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM channel_allowlist WHERE channel = ? AND entry = ?`, channel, entry)
	if err != nil {
		return fmt.Errorf("remove allow-list entry: %w", err)
	}
	return nil
}
