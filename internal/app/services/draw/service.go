// Package draw implements one participation attempt: validate, rate-limit,
// deduplicate, decide, persist, and issue a winner code on a win.
package draw

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rakkenlabs/qr-campaign/internal/app/domain/entry"
	"github.com/rakkenlabs/qr-campaign/internal/app/domain/wincode"
	"github.com/rakkenlabs/qr-campaign/internal/app/storage"
	"github.com/rakkenlabs/qr-campaign/internal/ratelimit"
	"github.com/rakkenlabs/qr-campaign/pkg/logger"
)

// Errors
var (
	ErrInvalidPhone  = errors.New("invalid phone number")
	ErrRateLimited   = errors.New("rate limited")
	ErrAlreadyPlayed = errors.New("identifier already played")
	ErrCodeIssuance  = errors.New("could not issue winner code")
)

// minPhoneLength is the minimum number of significant characters a phone
// number must normalize to.
const minPhoneLength = 9

// codeAttempts bounds retries when a generated code collides with an
// existing one. Exceeding it fails the request rather than looping.
const codeAttempts = 5

// Config holds the runtime parameters of the draw.
type Config struct {
	// WinRatePercent is the Bernoulli win probability in percent, 0-100.
	WinRatePercent float64
	// RedirectURL is returned to losing participants.
	RedirectURL string
}

// Result is the outcome of a decided attempt. Exactly one of Code or
// RedirectURL is set, matching Won.
type Result struct {
	Won         bool
	Code        string
	RedirectURL string
}

// Service orchestrates participation attempts. It holds no per-request state;
// every decision is derived fresh from the stores.
type Service struct {
	entries   storage.EntryStore
	codes     storage.CodeStore
	ipLimiter ratelimit.Limiter
	idLimiter ratelimit.Limiter
	cfg       Config
	log       *logger.Logger
}

// New constructs a draw service. Either limiter may be nil to disable that
// dimension of throttling; per-identifier limiting in particular is optional.
func New(entries storage.EntryStore, codes storage.CodeStore, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("draw")
	}
	return &Service{
		entries: entries,
		codes:   codes,
		cfg:     cfg,
		log:     log,
	}
}

// WithIPLimiter sets the per-source-address limiter.
func (s *Service) WithIPLimiter(l ratelimit.Limiter) *Service {
	s.ipLimiter = l
	return s
}

// WithIdentifierLimiter sets the optional per-identifier limiter.
func (s *Service) WithIdentifierLimiter(l ratelimit.Limiter) *Service {
	s.idLimiter = l
	return s
}

// Attempt runs one draw for the given phone number. sourceAddr is recorded on
// the entry and keys the rate limiter.
//
// The existence check before the insert is advisory only: the unique
// constraint on the identifier column is the authority for
// one-play-per-identifier, and a duplicate-key failure on insert is reported
// as ErrAlreadyPlayed, never as a server error.
func (s *Service) Attempt(ctx context.Context, phone, sourceAddr string) (Result, error) {
	if len(normalizePhone(phone)) < minPhoneLength {
		return Result{}, ErrInvalidPhone
	}

	if ok := s.allow(ctx, s.ipLimiter, "ip", sourceAddr); !ok {
		return Result{}, ErrRateLimited
	}

	identifier := Identifier(phone)

	if ok := s.allow(ctx, s.idLimiter, "identifier", identifier); !ok {
		return Result{}, ErrRateLimited
	}

	if _, err := s.entries.GetEntryByIdentifier(ctx, identifier); err == nil {
		return Result{}, ErrAlreadyPlayed
	} else if !errors.Is(err, sql.ErrNoRows) {
		// Advisory check only; the insert below settles it.
		s.log.WithError(err).Warn("existence pre-check failed, continuing")
	}

	won := Decide(s.cfg.WinRatePercent)

	created, err := s.entries.CreateEntry(ctx, entry.Entry{
		Identifier: identifier,
		IPAddress:  sourceAddr,
		Won:        won,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateIdentifier) {
			return Result{}, ErrAlreadyPlayed
		}
		return Result{}, fmt.Errorf("create entry: %w", err)
	}

	if !won {
		return Result{Won: false, RedirectURL: s.cfg.RedirectURL}, nil
	}

	code, err := s.issueCode(ctx, created.ID)
	if err != nil {
		// The entry is already durably marked won. A winner without a code is
		// an acknowledged inconsistency window that needs manual
		// reconciliation; it must not be papered over here.
		s.log.WithError(err).WithField("entry_id", created.ID).
			Error("winning entry recorded but code issuance failed")
		return Result{}, err
	}

	s.log.WithField("entry_id", created.ID).Info("winner code issued")
	return Result{Won: true, Code: code}, nil
}

func (s *Service) issueCode(ctx context.Context, entryID string) (string, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		candidate, err := NewCode()
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}

		_, err = s.codes.CreateCode(ctx, wincode.Code{Code: candidate, EntryID: entryID})
		if err == nil {
			return candidate, nil
		}
		if errors.Is(err, storage.ErrDuplicateCode) {
			continue
		}
		return "", fmt.Errorf("store code: %w", err)
	}
	return "", ErrCodeIssuance
}

// allow consults a limiter, treating a backend failure as an allow so a
// degraded limiter store cannot take the campaign down.
func (s *Service) allow(ctx context.Context, l ratelimit.Limiter, dimension, key string) bool {
	if l == nil {
		return true
	}
	ok, err := l.Allow(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("dimension", dimension).Warn("rate limiter unavailable, allowing")
		return true
	}
	if !ok {
		s.log.WithFields(map[string]interface{}{
			"dimension": dimension,
			"key":       key,
		}).Warn("rate limit exceeded")
	}
	return ok
}
