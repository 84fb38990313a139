// Package stats computes read-only aggregates over campaign history.
package stats

import (
	"context"
	"fmt"
	"math"

	domain "github.com/rakkenlabs/qr-campaign/internal/app/domain/stats"
	"github.com/rakkenlabs/qr-campaign/internal/app/storage"
	"github.com/rakkenlabs/qr-campaign/pkg/logger"
)

// Service aggregates campaign counters.
type Service struct {
	entries storage.EntryStore
	codes   storage.CodeStore
	log     *logger.Logger
}

// New constructs a stats service.
func New(entries storage.EntryStore, codes storage.CodeStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("stats")
	}
	return &Service{entries: entries, codes: codes, log: log}
}

// Compute returns total scans, wins, claimed codes, and the observed win rate
// in percent rounded to two decimals. Zero entries yields a zero rate.
func (s *Service) Compute(ctx context.Context) (domain.Summary, error) {
	total, err := s.entries.CountEntries(ctx)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("count entries: %w", err)
	}
	wins, err := s.entries.CountWins(ctx)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("count wins: %w", err)
	}
	claimed, err := s.codes.CountClaimed(ctx)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("count claimed: %w", err)
	}

	var rate float64
	if total > 0 {
		rate = math.Round(float64(wins)/float64(total)*100*100) / 100
	}

	return domain.Summary{
		TotalScans:    total,
		TotalWins:     wins,
		TotalClaimed:  claimed,
		WinRateActual: rate,
	}, nil
}
