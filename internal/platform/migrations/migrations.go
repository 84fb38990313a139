// Package migrations applies the campaign schema at startup. Statements are
// idempotent so repeated startups are safe.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// statements run in order. The unique constraints on scan_entries.identifier
// and winner_codes.code are load-bearing: the draw engine depends on them as
// the authority for one-play-per-identifier and code uniqueness.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS scan_entries (
		id UUID PRIMARY KEY,
		identifier TEXT NOT NULL UNIQUE,
		ip_address TEXT NOT NULL DEFAULT '',
		won BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS winner_codes (
		code TEXT PRIMARY KEY,
		scan_entry_id UUID NOT NULL UNIQUE REFERENCES scan_entries(id),
		claimed BOOLEAN NOT NULL DEFAULT FALSE,
		claimed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scan_entries_won ON scan_entries (won)`,
	`CREATE INDEX IF NOT EXISTS idx_winner_codes_created_at ON winner_codes (created_at DESC)`,
}

// Apply executes all schema statements in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
