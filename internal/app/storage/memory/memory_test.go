package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rakkenlabs/qr-campaign/internal/app/domain/entry"
	"github.com/rakkenlabs/qr-campaign/internal/app/domain/wincode"
	"github.com/rakkenlabs/qr-campaign/internal/app/storage"
)

func TestCreateEntryAssignsIDAndTimestamp(t *testing.T) {
	store := New()

	e, err := store.CreateEntry(context.Background(), entry.Entry{Identifier: "ident-1", IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.ID == "" {
		t.Fatalf("expected generated id")
	}
	if e.CreatedAt.IsZero() {
		t.Fatalf("expected created_at stamp")
	}
}

func TestCreateEntryRejectsDuplicateIdentifier(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.CreateEntry(ctx, entry.Entry{Identifier: "ident-1"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := store.CreateEntry(ctx, entry.Entry{Identifier: "ident-1"})
	if !errors.Is(err, storage.ErrDuplicateIdentifier) {
		t.Fatalf("expected ErrDuplicateIdentifier, got %v", err)
	}
}

func TestGetEntryByIdentifierMiss(t *testing.T) {
	store := New()

	_, err := store.GetEntryByIdentifier(context.Background(), "nope")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestCreateCodeUniquePerCodeAndEntry(t *testing.T) {
	store := New()
	ctx := context.Background()

	e, err := store.CreateEntry(ctx, entry.Entry{Identifier: "ident-1", Won: true})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := store.CreateCode(ctx, wincode.Code{Code: "AB23CD45", EntryID: e.ID}); err != nil {
		t.Fatalf("create code: %v", err)
	}

	// Same code string for a different entry.
	other, err := store.CreateEntry(ctx, entry.Entry{Identifier: "ident-2", Won: true})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := store.CreateCode(ctx, wincode.Code{Code: "AB23CD45", EntryID: other.ID}); !errors.Is(err, storage.ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode for reused code, got %v", err)
	}

	// Second code for the same entry.
	if _, err := store.CreateCode(ctx, wincode.Code{Code: "EF67GH89", EntryID: e.ID}); !errors.Is(err, storage.ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode for second code on entry, got %v", err)
	}
}

func TestClaimCodeConditionalUpdate(t *testing.T) {
	store := New()
	ctx := context.Background()

	e, err := store.CreateEntry(ctx, entry.Entry{Identifier: "ident-1", Won: true})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := store.CreateCode(ctx, wincode.Code{Code: "AB23CD45", EntryID: e.ID}); err != nil {
		t.Fatalf("create code: %v", err)
	}

	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	claimed, err := store.ClaimCode(ctx, "AB23CD45", stamp)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !claimed.Claimed || claimed.ClaimedAt == nil || !claimed.ClaimedAt.Equal(stamp) {
		t.Fatalf("unexpected claimed code: %+v", claimed)
	}

	// Already claimed and unknown codes look the same to the caller.
	if _, err := store.ClaimCode(ctx, "AB23CD45", time.Now()); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("re-claim: expected sql.ErrNoRows, got %v", err)
	}
	if _, err := store.ClaimCode(ctx, "ZZ99ZZ99", time.Now()); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("unknown code: expected sql.ErrNoRows, got %v", err)
	}
}

func TestListCodesJoinsIPAndOrders(t *testing.T) {
	store := New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e, err := store.CreateEntry(ctx, entry.Entry{
			Identifier: fmt.Sprintf("ident-%d", i),
			IPAddress:  fmt.Sprintf("10.0.0.%d", i),
			Won:        true,
		})
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		if _, err := store.CreateCode(ctx, wincode.Code{Code: fmt.Sprintf("CODE234%d", i), EntryID: e.ID}); err != nil {
			t.Fatalf("create code: %v", err)
		}
	}

	listed, total, err := store.ListCodes(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(listed) != 2 {
		t.Fatalf("got %d rows, total %d", len(listed), total)
	}
	if listed[0].Code.Code != "CODE2342" || listed[0].IPAddress != "10.0.0.2" {
		t.Fatalf("unexpected first row: %+v", listed[0])
	}

	rest, _, err := store.ListCodes(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}
	if len(rest) != 1 || rest[0].Code.Code != "CODE2340" {
		t.Fatalf("unexpected offset rows: %+v", rest)
	}
}
