package idempotency

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreReserveLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	fp := Fingerprint("page_1", "tpl_about")

	res, err := store.Reserve(ctx, "key-1", fp, now, time.Hour)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if res.State != ReservationStateNew {
		t.Fatalf("first reserve state = %d, want new", res.State)
	}

	res, err = store.Reserve(ctx, "key-1", fp, now.Add(time.Minute), time.Hour)
	if err != nil {
		t.Fatalf("Reserve pending: %v", err)
	}
	if res.State != ReservationStatePending {
		t.Fatalf("second reserve state = %d, want pending", res.State)
	}

	if err := store.SaveResult(ctx, "key-1", fp, []byte(`{"ok":true}`), now.Add(time.Minute), time.Hour); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	res, err = store.Reserve(ctx, "key-1", fp, now.Add(2*time.Minute), time.Hour)
	if err != nil {
		t.Fatalf("Reserve completed: %v", err)
	}
	if res.State != ReservationStateCompleted {
		t.Fatalf("reserve after save state = %d, want completed", res.State)
	}
	if string(res.Record.Result) != `{"ok":true}` {
		t.Fatalf("stored result = %q", res.Record.Result)
	}
}

func TestMemoryStoreFingerprintMismatch(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	if _, err := store.Reserve(ctx, "key-1", Fingerprint("a"), now, time.Hour); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := store.Reserve(ctx, "key-1", Fingerprint("b"), now, time.Hour); err != ErrFingerprintMismatch {
		t.Fatalf("expected fingerprint mismatch, got %v", err)
	}
}

func TestMemoryStoreExpiredRecordIsReplaced(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	fp := Fingerprint("x")

	if _, err := store.Reserve(ctx, "key-1", fp, now, time.Minute); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	res, err := store.Reserve(ctx, "key-1", fp, now.Add(2*time.Minute), time.Minute)
	if err != nil {
		t.Fatalf("Reserve after expiry: %v", err)
	}
	if res.State != ReservationStateNew {
		t.Fatalf("expired record should be replaced, state = %d", res.State)
	}
}

func TestMemoryStoreRelease(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	fp := Fingerprint("x")

	if _, err := store.Reserve(ctx, "key-1", fp, now, time.Hour); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := store.Release(ctx, "key-1", fp); err != nil {
		t.Fatalf("Release: %v", err)
	}
	res, err := store.Reserve(ctx, "key-1", fp, now, time.Hour)
	if err != nil {
		t.Fatalf("Reserve after release: %v", err)
	}
	if res.State != ReservationStateNew {
		t.Fatalf("released key should reserve fresh, state = %d", res.State)
	}
}
