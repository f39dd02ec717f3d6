package cache

import (
	"context"
	"errors"
	"time"
)

// Tiered reads from Front first and falls back to Back, copying back hits
// into Front. Writes and deletes go to both.
type Tiered struct {
	Front Cache
	Back  Cache

	// FrontTTL bounds how long back hits stay in Front.
	FrontTTL time.Duration
}

// NewTiered layers front over back.
func NewTiered(front, back Cache, frontTTL time.Duration) *Tiered {
	return &Tiered{Front: front, Back: back, FrontTTL: frontTTL}
}

// Get retrieves a value, consulting Front before Back.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok, err := t.Front.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	data, ok, err := t.Back.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = t.Front.Set(ctx, key, data, t.FrontTTL)
	return data, true, nil
}

// Set stores a value in both tiers.
func (t *Tiered) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	frontTTL := t.FrontTTL
	if ttl > 0 && (frontTTL == 0 || ttl < frontTTL) {
		frontTTL = ttl
	}
	return errors.Join(
		t.Front.Set(ctx, key, data, frontTTL),
		t.Back.Set(ctx, key, data, ttl),
	)
}

// Delete removes a value from both tiers.
func (t *Tiered) Delete(ctx context.Context, key string) error {
	return errors.Join(t.Front.Delete(ctx, key), t.Back.Delete(ctx, key))
}

// Close closes both tiers.
func (t *Tiered) Close() error {
	return errors.Join(t.Front.Close(), t.Back.Close())
}

var _ Cache = (*Tiered)(nil)
