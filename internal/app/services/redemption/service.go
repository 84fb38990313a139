// Package redemption looks up winner codes and performs the one-way claim
// transition used by campaign staff.
package redemption

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rakkenlabs/qr-campaign/internal/app/domain/wincode"
	"github.com/rakkenlabs/qr-campaign/internal/app/storage"
	"github.com/rakkenlabs/qr-campaign/pkg/logger"
)

// Errors
var (
	ErrInvalidCode  = errors.New("invalid code")
	ErrCodeNotFound = errors.New("code not found or already claimed")
)

// PageSize is the fixed number of rows per admin listing page.
const PageSize = 20

// CodePage is one page of the admin codes listing, newest first.
type CodePage struct {
	Codes    []wincode.ListedCode
	Total    int64
	Page     int
	PageSize int
}

// Service serves code lookups, claims, and the paginated admin listing.
type Service struct {
	codes storage.CodeStore
	log   *logger.Logger
}

// New constructs a redemption service.
func New(codes storage.CodeStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("redemption")
	}
	return &Service{codes: codes, log: log}
}

// Normalize uppercases and trims a raw code, returning ErrInvalidCode unless
// the result is exactly the expected length.
func Normalize(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 8 {
		return "", ErrInvalidCode
	}
	return code, nil
}

// Lookup returns the code's claim state, or ErrCodeNotFound.
func (s *Service) Lookup(ctx context.Context, raw string) (wincode.Code, error) {
	code, err := Normalize(raw)
	if err != nil {
		return wincode.Code{}, err
	}

	c, err := s.codes.GetCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return wincode.Code{}, ErrCodeNotFound
	}
	if err != nil {
		return wincode.Code{}, fmt.Errorf("get code: %w", err)
	}
	return c, nil
}

// Claim marks a code as redeemed. The transition is guarded at the storage
// layer by claimed=false, so a repeat claim deterministically reports
// ErrCodeNotFound and never re-stamps the claim timestamp.
func (s *Service) Claim(ctx context.Context, raw string) (wincode.Code, error) {
	code, err := Normalize(raw)
	if err != nil {
		return wincode.Code{}, err
	}

	c, err := s.codes.ClaimCode(ctx, code, time.Now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return wincode.Code{}, ErrCodeNotFound
	}
	if err != nil {
		return wincode.Code{}, fmt.Errorf("claim code: %w", err)
	}

	s.log.WithField("code", c.Code).Info("winner code claimed")
	return c, nil
}

// List returns one page of issued codes, newest first. Pages are 1-based and
// non-positive values clamp to the first page.
func (s *Service) List(ctx context.Context, page int) (CodePage, error) {
	if page < 1 {
		page = 1
	}

	codes, total, err := s.codes.ListCodes(ctx, PageSize, (page-1)*PageSize)
	if err != nil {
		return CodePage{}, fmt.Errorf("list codes: %w", err)
	}

	return CodePage{Codes: codes, Total: total, Page: page, PageSize: PageSize}, nil
}
