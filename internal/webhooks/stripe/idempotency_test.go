package stripewebhook

import (
	"context"
	"testing"
	"time"
)

type memIdempotency struct {
	seen map[string]bool
}

func (m *memIdempotency) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func (m *memIdempotency) WebhookEventKey(provider, eventID string) string {
	return "webhook:" + provider + ":" + eventID
}

func (m *memIdempotency) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.seen, key)
	}
	return nil
}

func TestIdempotencyGuard_CheckAndMark(t *testing.T) {
	guard, err := NewIdempotencyGuard(&memIdempotency{}, time.Hour, "stripe")
	if err != nil {
		t.Fatalf("building guard: %v", err)
	}
	ctx := context.Background()

	seen, err := guard.CheckAndMark(ctx, "evt_1")
	if err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if seen {
		t.Fatal("first delivery must not be marked as seen")
	}

	seen, err = guard.CheckAndMark(ctx, "evt_1")
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if !seen {
		t.Fatal("replay must be marked as seen")
	}

	if err := guard.Delete(ctx, "evt_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	seen, err = guard.CheckAndMark(ctx, "evt_1")
	if err != nil {
		t.Fatalf("mark after delete: %v", err)
	}
	if seen {
		t.Fatal("a released marker must allow redelivery")
	}
}

func TestNewIdempotencyGuard_Validation(t *testing.T) {
	if _, err := NewIdempotencyGuard(nil, time.Hour, "stripe"); err == nil {
		t.Fatal("expected an error for a nil store")
	}
	if _, err := NewIdempotencyGuard(&memIdempotency{}, time.Hour, ""); err == nil {
		t.Fatal("expected an error for an empty provider")
	}
}
