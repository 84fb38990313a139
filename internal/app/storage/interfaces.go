package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rakkenlabs/qr-campaign/internal/app/domain/entry"
	"github.com/rakkenlabs/qr-campaign/internal/app/domain/wincode"
)

// Duplicate-key sentinels. Implementations translate their native
// unique-constraint violations into these so callers can rely on them: the
// constraints are the source of truth for one-entry-per-identifier and for
// code uniqueness, not any preceding read.
var (
	ErrDuplicateIdentifier = errors.New("storage: identifier already exists")
	ErrDuplicateCode       = errors.New("storage: code already exists")
)

// EntryStore persists participation entries.
type EntryStore interface {
	// CreateEntry inserts a new entry, assigning ID and CreatedAt. Returns
	// ErrDuplicateIdentifier when an entry with the same identifier exists.
	CreateEntry(ctx context.Context, e entry.Entry) (entry.Entry, error)
	// GetEntryByIdentifier returns sql.ErrNoRows when no entry matches.
	GetEntryByIdentifier(ctx context.Context, identifier string) (entry.Entry, error)
	CountEntries(ctx context.Context) (int64, error)
	CountWins(ctx context.Context) (int64, error)
}

// CodeStore persists winner codes.
type CodeStore interface {
	// CreateCode inserts a new code row, assigning CreatedAt. Returns
	// ErrDuplicateCode when the code value collides with an existing row.
	CreateCode(ctx context.Context, c wincode.Code) (wincode.Code, error)
	// GetCode returns sql.ErrNoRows when no code matches.
	GetCode(ctx context.Context, code string) (wincode.Code, error)
	// ClaimCode flips claimed to true and stamps claimedAt, guarded by
	// claimed=false so the transition happens at most once. Returns
	// sql.ErrNoRows when the code is missing or already claimed.
	ClaimCode(ctx context.Context, code string, claimedAt time.Time) (wincode.Code, error)
	// ListCodes returns codes newest first with the owning entry's source
	// address, plus the total row count for pagination.
	ListCodes(ctx context.Context, limit, offset int) ([]wincode.ListedCode, int64, error)
	CountClaimed(ctx context.Context) (int64, error)
}
