package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Second

// releaseScript deletes the marker only while it still holds the caller's
// token, so a holder whose marker expired cannot remove a newer one.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OfferLock marks an offer decision as in progress so a second accept racing
// the first is turned away before it reaches the store.
// Key format: offer-lock:<offer_id>
type OfferLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOfferLock wraps client. A non-positive ttl falls back to 30s; the marker
// expires on its own if the holder dies before releasing it.
func NewOfferLock(client *redis.Client, ttl time.Duration) *OfferLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &OfferLock{client: client, ttl: ttl}
}

// Acquire sets the marker to a fresh token if absent. ok is false when
// another caller holds it.
func (l *OfferLock) Acquire(ctx context.Context, offerID string) (token string, ok bool, err error) {
	token = uuid.NewString()
	ok, err = l.client.SetNX(ctx, l.key(offerID), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("offer lock acquire: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release deletes the marker if it still holds token.
func (l *OfferLock) Release(ctx context.Context, offerID, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key(offerID)}, token).Err(); err != nil {
		return fmt.Errorf("offer lock release: %w", err)
	}
	return nil
}

// Ping checks the connection for the readiness probe.
func (l *OfferLock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *OfferLock) key(offerID string) string {
	return "offer-lock:" + offerID
}
