package redemption

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rakkenlabs/qr-campaign/internal/app/domain/entry"
	"github.com/rakkenlabs/qr-campaign/internal/app/domain/wincode"
	"github.com/rakkenlabs/qr-campaign/internal/app/storage/memory"
)

func seedCode(t *testing.T, store *memory.Store, code string) {
	t.Helper()
	e, err := store.CreateEntry(context.Background(), entry.Entry{Identifier: "id-" + code, Won: true})
	if err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	if _, err := store.CreateCode(context.Background(), wincode.Code{Code: code, EntryID: e.ID}); err != nil {
		t.Fatalf("seed code: %v", err)
	}
}

func TestLookupNormalizesInput(t *testing.T) {
	store := memory.New()
	seedCode(t, store, "AB23CD45")
	svc := New(store, nil)

	c, err := svc.Lookup(context.Background(), "  ab23cd45 ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if c.Code != "AB23CD45" || c.Claimed {
		t.Fatalf("unexpected code: %+v", c)
	}
}

func TestLookupRejectsBadShape(t *testing.T) {
	svc := New(memory.New(), nil)

	for _, raw := range []string{"", "SHORT", "TOOLONGCODE"} {
		if _, err := svc.Lookup(context.Background(), raw); !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("raw %q: expected ErrInvalidCode, got %v", raw, err)
		}
	}
}

func TestLookupMissingCode(t *testing.T) {
	svc := New(memory.New(), nil)

	if _, err := svc.Lookup(context.Background(), "AB23CD45"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
}

func TestClaimIsOneWay(t *testing.T) {
	store := memory.New()
	seedCode(t, store, "AB23CD45")
	svc := New(store, nil)

	claimed, err := svc.Claim(context.Background(), "ab23cd45")
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if !claimed.Claimed || claimed.ClaimedAt == nil {
		t.Fatalf("claim did not stamp: %+v", claimed)
	}
	firstStamp := *claimed.ClaimedAt

	if _, err := svc.Claim(context.Background(), "AB23CD45"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("second claim: expected ErrCodeNotFound, got %v", err)
	}

	// The original stamp must survive the rejected second claim.
	after, err := svc.Lookup(context.Background(), "AB23CD45")
	if err != nil {
		t.Fatalf("lookup after claims: %v", err)
	}
	if after.ClaimedAt == nil || !after.ClaimedAt.Equal(firstStamp) {
		t.Fatalf("claimedAt changed: %v vs %v", after.ClaimedAt, firstStamp)
	}
}

func TestClaimMissingCode(t *testing.T) {
	svc := New(memory.New(), nil)

	if _, err := svc.Claim(context.Background(), "AB23CD45"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
}

func TestListPaginatesNewestFirst(t *testing.T) {
	store := memory.New()
	for i := 0; i < 25; i++ {
		seedCode(t, store, fmt.Sprintf("CODE2%03d", i))
	}
	svc := New(store, nil)

	first, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(first.Codes) != PageSize || first.Total != 25 {
		t.Fatalf("page 1: got %d rows, total %d", len(first.Codes), first.Total)
	}
	if first.Codes[0].Code.Code != "CODE2024" {
		t.Fatalf("expected newest code first, got %s", first.Codes[0].Code.Code)
	}

	second, err := svc.List(context.Background(), 2)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(second.Codes) != 5 || second.Total != 25 {
		t.Fatalf("page 2: got %d rows, total %d", len(second.Codes), second.Total)
	}
	if second.Codes[len(second.Codes)-1].Code.Code != "CODE2000" {
		t.Fatalf("expected oldest code last, got %s", second.Codes[len(second.Codes)-1].Code.Code)
	}
}

func TestListClampsPage(t *testing.T) {
	store := memory.New()
	seedCode(t, store, "AB23CD45")
	svc := New(store, nil)

	page, err := svc.List(context.Background(), -3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Page != 1 || len(page.Codes) != 1 {
		t.Fatalf("expected clamped first page, got %+v", page)
	}
}
