package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rakkenlabs/qr-campaign/internal/app/domain/entry"
	"github.com/rakkenlabs/qr-campaign/internal/app/domain/wincode"
	"github.com/rakkenlabs/qr-campaign/internal/app/storage/memory"
)

func TestComputeEmptyCampaign(t *testing.T) {
	svc := New(memory.New(), memory.New(), nil)

	summary, err := svc.Compute(context.Background())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if summary.TotalScans != 0 || summary.TotalWins != 0 || summary.TotalClaimed != 0 {
		t.Fatalf("expected zero counters, got %+v", summary)
	}
	if summary.WinRateActual != 0 {
		t.Fatalf("zero entries must yield zero rate, got %v", summary.WinRateActual)
	}
}

func TestComputeRoundsToTwoDecimals(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	// 1 win out of 3 entries: 33.333... -> 33.33.
	for i := 0; i < 3; i++ {
		e, err := store.CreateEntry(ctx, entry.Entry{Identifier: fmt.Sprintf("id-%d", i), Won: i == 0})
		if err != nil {
			t.Fatalf("seed entry: %v", err)
		}
		if i == 0 {
			if _, err := store.CreateCode(ctx, wincode.Code{Code: "AB23CD45", EntryID: e.ID}); err != nil {
				t.Fatalf("seed code: %v", err)
			}
			if _, err := store.ClaimCode(ctx, "AB23CD45", time.Now().UTC()); err != nil {
				t.Fatalf("claim: %v", err)
			}
		}
	}

	svc := New(store, store, nil)
	summary, err := svc.Compute(ctx)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if summary.TotalScans != 3 || summary.TotalWins != 1 || summary.TotalClaimed != 1 {
		t.Fatalf("unexpected counters: %+v", summary)
	}
	if summary.WinRateActual != 33.33 {
		t.Fatalf("expected 33.33, got %v", summary.WinRateActual)
	}
}
