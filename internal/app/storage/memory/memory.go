// Package memory provides an in-memory store used in tests and when no
// database is configured. It enforces the same uniqueness rules as the
// postgres implementation.
package memory

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rakkenlabs/qr-campaign/internal/app/domain/entry"
	"github.com/rakkenlabs/qr-campaign/internal/app/domain/wincode"
	"github.com/rakkenlabs/qr-campaign/internal/app/storage"
)

// Store implements the storage interfaces with in-process maps.
type Store struct {
	mu         sync.RWMutex
	byID       map[string]entry.Entry
	byIdent    map[string]string // identifier -> entry id
	codes      map[string]wincode.Code
	codeOrder  []string // insertion order, oldest first
	entryCodes map[string]string // entry id -> code
}

var _ storage.EntryStore = (*Store)(nil)
var _ storage.CodeStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		byID:       make(map[string]entry.Entry),
		byIdent:    make(map[string]string),
		codes:      make(map[string]wincode.Code),
		entryCodes: make(map[string]string),
	}
}

// --- EntryStore -------------------------------------------------------------

func (s *Store) CreateEntry(ctx context.Context, e entry.Entry) (entry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byIdent[e.Identifier]; exists {
		return entry.Entry{}, storage.ErrDuplicateIdentifier
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	s.byID[e.ID] = e
	s.byIdent[e.Identifier] = e.ID
	return e, nil
}

func (s *Store) GetEntryByIdentifier(ctx context.Context, identifier string) (entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byIdent[identifier]
	if !ok {
		return entry.Entry{}, sql.ErrNoRows
	}
	return s.byID[id], nil
}

func (s *Store) CountEntries(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

func (s *Store) CountWins(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var wins int64
	for _, e := range s.byID {
		if e.Won {
			wins++
		}
	}
	return wins, nil
}

// --- CodeStore --------------------------------------------------------------

func (s *Store) CreateCode(ctx context.Context, c wincode.Code) (wincode.Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.codes[c.Code]; exists {
		return wincode.Code{}, storage.ErrDuplicateCode
	}
	if _, exists := s.entryCodes[c.EntryID]; exists {
		return wincode.Code{}, storage.ErrDuplicateCode
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	s.codes[c.Code] = c
	s.codeOrder = append(s.codeOrder, c.Code)
	s.entryCodes[c.EntryID] = c.Code
	return c, nil
}

func (s *Store) GetCode(ctx context.Context, code string) (wincode.Code, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.codes[code]
	if !ok {
		return wincode.Code{}, sql.ErrNoRows
	}
	return c, nil
}

func (s *Store) ClaimCode(ctx context.Context, code string, claimedAt time.Time) (wincode.Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.codes[code]
	if !ok || c.Claimed {
		return wincode.Code{}, sql.ErrNoRows
	}

	stamped := claimedAt.UTC()
	c.Claimed = true
	c.ClaimedAt = &stamped
	s.codes[code] = c
	return c, nil
}

func (s *Store) ListCodes(ctx context.Context, limit, offset int) ([]wincode.ListedCode, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := int64(len(s.codeOrder))

	var result []wincode.ListedCode
	// Newest first: walk the insertion order backwards.
	for i := len(s.codeOrder) - 1 - offset; i >= 0 && len(result) < limit; i-- {
		c := s.codes[s.codeOrder[i]]
		listed := wincode.ListedCode{Code: c}
		if e, ok := s.byID[c.EntryID]; ok {
			listed.IPAddress = e.IPAddress
		}
		result = append(result, listed)
	}
	return result, total, nil
}

func (s *Store) CountClaimed(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var claimed int64
	for _, c := range s.codes {
		if c.Claimed {
			claimed++
		}
	}
	return claimed, nil
}
