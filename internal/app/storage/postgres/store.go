package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/rakkenlabs/qr-campaign/internal/app/domain/entry"
	"github.com/rakkenlabs/qr-campaign/internal/app/domain/wincode"
	"github.com/rakkenlabs/qr-campaign/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL. The unique
// constraints on scan_entries.identifier and winner_codes.code are what
// actually enforce one-play-per-identifier and code uniqueness; this store
// surfaces their violations as the storage sentinels.
type Store struct {
	db *sqlx.DB
}

var _ storage.EntryStore = (*Store)(nil)
var _ storage.CodeStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// --- EntryStore -------------------------------------------------------------

func (s *Store) CreateEntry(ctx context.Context, e entry.Entry) (entry.Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scan_entries (id, identifier, ip_address, won, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, e.ID, e.Identifier, e.IPAddress, e.Won, e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return entry.Entry{}, storage.ErrDuplicateIdentifier
		}
		return entry.Entry{}, err
	}
	return e, nil
}

func (s *Store) GetEntryByIdentifier(ctx context.Context, identifier string) (entry.Entry, error) {
	var e entry.Entry
	err := s.db.GetContext(ctx, &e, `
		SELECT id, identifier, ip_address, won, created_at
		FROM scan_entries
		WHERE identifier = $1
	`, identifier)
	if err != nil {
		return entry.Entry{}, err
	}
	return e, nil
}

func (s *Store) CountEntries(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM scan_entries`)
	return count, err
}

func (s *Store) CountWins(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM scan_entries WHERE won`)
	return count, err
}

// --- CodeStore --------------------------------------------------------------

func (s *Store) CreateCode(ctx context.Context, c wincode.Code) (wincode.Code, error) {
	c.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO winner_codes (code, scan_entry_id, claimed, created_at)
		VALUES ($1, $2, false, $3)
	`, c.Code, c.EntryID, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return wincode.Code{}, storage.ErrDuplicateCode
		}
		return wincode.Code{}, err
	}
	c.Claimed = false
	c.ClaimedAt = nil
	return c, nil
}

func (s *Store) GetCode(ctx context.Context, code string) (wincode.Code, error) {
	var c wincode.Code
	err := s.db.GetContext(ctx, &c, `
		SELECT code, scan_entry_id, claimed, claimed_at, created_at
		FROM winner_codes
		WHERE code = $1
	`, code)
	if err != nil {
		return wincode.Code{}, err
	}
	return c, nil
}

func (s *Store) ClaimCode(ctx context.Context, code string, claimedAt time.Time) (wincode.Code, error) {
	var c wincode.Code
	// Guarded update: zero rows means missing or already claimed, and the
	// caller cannot tell the difference. That is intentional.
	err := s.db.GetContext(ctx, &c, `
		UPDATE winner_codes
		SET claimed = true, claimed_at = $2
		WHERE code = $1 AND claimed = false
		RETURNING code, scan_entry_id, claimed, claimed_at, created_at
	`, code, claimedAt.UTC())
	if err != nil {
		return wincode.Code{}, err
	}
	return c, nil
}

func (s *Store) ListCodes(ctx context.Context, limit, offset int) ([]wincode.ListedCode, int64, error) {
	var total int64
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM winner_codes`); err != nil {
		return nil, 0, err
	}

	var result []wincode.ListedCode
	err := s.db.SelectContext(ctx, &result, `
		SELECT w.code, w.scan_entry_id, w.claimed, w.claimed_at, w.created_at, e.ip_address
		FROM winner_codes w
		JOIN scan_entries e ON e.id = w.scan_entry_id
		ORDER BY w.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (s *Store) CountClaimed(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM winner_codes WHERE claimed`)
	return count, err
}
