package redis

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniLock(t *testing.T, ttl time.Duration) (*OfferLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewOfferLock(client, ttl), mr
}

func TestOfferLock_Key(t *testing.T) {
	l := NewOfferLock(nil, 0)
	if got := l.key("off-1"); got != "offer-lock:off-1" {
		t.Errorf("key = %q", got)
	}
	if l.ttl != defaultLockTTL {
		t.Errorf("ttl = %s, want default", l.ttl)
	}
}

func TestOfferLock_UnreachableServerReturnsError(t *testing.T) {
	// Grab a free port and close it so nothing listens there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot reserve port: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	client := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	l := NewOfferLock(client, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, ok, err := l.Acquire(ctx, "off-1")
	if err == nil || ok {
		t.Fatalf("expected an error from an unreachable server, got ok=%v err=%v", ok, err)
	}
	if errors.Is(err, redis.Nil) {
		t.Errorf("unexpected redis.Nil")
	}
	if err := l.Release(ctx, "off-1", "token"); err == nil {
		t.Error("expected release error")
	}
}

func TestOfferLock_AcquireIsExclusive(t *testing.T) {
	l, mr := newMiniLock(t, time.Minute)
	ctx := context.Background()

	token, ok, err := l.Acquire(ctx, "off-1")
	if err != nil || !ok || token == "" {
		t.Fatalf("first acquire: token=%q ok=%v err=%v", token, ok, err)
	}
	if got, _ := mr.Get("offer-lock:off-1"); got != token {
		t.Errorf("marker = %q, want the acquire token", got)
	}
	if _, ok, err := l.Acquire(ctx, "off-1"); err != nil || ok {
		t.Fatalf("second acquire should be refused, ok=%v err=%v", ok, err)
	}

	if err := l.Release(ctx, "off-1", token); err != nil {
		t.Fatalf("release: %v", err)
	}
	if mr.Exists("offer-lock:off-1") {
		t.Error("marker should be gone after release")
	}
}

func TestOfferLock_StaleReleaseKeepsNewerMarker(t *testing.T) {
	l, mr := newMiniLock(t, time.Second)
	ctx := context.Background()

	stale, ok, _ := l.Acquire(ctx, "off-1")
	if !ok {
		t.Fatal("first acquire refused")
	}
	mr.FastForward(2 * time.Second)

	fresh, ok, err := l.Acquire(ctx, "off-1")
	if err != nil || !ok {
		t.Fatalf("acquire after expiry: ok=%v err=%v", ok, err)
	}
	if err := l.Release(ctx, "off-1", stale); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if got, _ := mr.Get("offer-lock:off-1"); got != fresh {
		t.Fatalf("stale release removed the newer marker, got %q", got)
	}
}
