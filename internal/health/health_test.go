package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubPinger struct {
	err   error
	calls int
}

func (p *stubPinger) Ping(ctx context.Context) error {
	p.calls++
	return p.err
}

func TestAvailableCachesWithinTTL(t *testing.T) {
	pinger := &stubPinger{}
	gate := NewGate(pinger, 10*time.Second, nil)

	clock := time.Unix(1000, 0)
	gate.now = func() time.Time { return clock }

	if !gate.Available(context.Background()) {
		t.Fatal("Available() = false with healthy pinger")
	}
	gate.Available(context.Background())
	gate.Available(context.Background())
	if pinger.calls != 1 {
		t.Fatalf("ping calls = %d, want 1 within TTL", pinger.calls)
	}

	clock = clock.Add(11 * time.Second)
	gate.Available(context.Background())
	if pinger.calls != 2 {
		t.Fatalf("ping calls = %d, want 2 after TTL expiry", pinger.calls)
	}
}

func TestAvailableCachesNegativeVerdict(t *testing.T) {
	pinger := &stubPinger{err: errors.New("connection refused")}
	gate := NewGate(pinger, 10*time.Second, nil)

	clock := time.Unix(1000, 0)
	gate.now = func() time.Time { return clock }

	if gate.Available(context.Background()) {
		t.Fatal("Available() = true with failing pinger")
	}
	gate.Available(context.Background())
	if pinger.calls != 1 {
		t.Fatalf("ping calls = %d, failures should be cached too", pinger.calls)
	}
}

func TestRefreshForcesPing(t *testing.T) {
	pinger := &stubPinger{}
	gate := NewGate(pinger, time.Hour, nil)

	gate.Available(context.Background())
	gate.Refresh()
	gate.Available(context.Background())
	if pinger.calls != 2 {
		t.Fatalf("ping calls = %d, want 2 after Refresh", pinger.calls)
	}
}
