package utils

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/e-blog-backend/metrics"
)

// TokenBlacklist holds logged-out tokens until their own expiry (unix seconds).
// Entries are process-local; a restart forgets them.
type TokenBlacklist struct {
	mu      sync.RWMutex
	entries map[string]int64
	now     func() time.Time
}

func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{
		entries: make(map[string]int64),
		now:     time.Now,
	}
}

// Revoke marks token unusable until expiresAt.
func (b *TokenBlacklist) Revoke(token string, expiresAt int64) {
	b.mu.Lock()
	b.entries[token] = expiresAt
	size := len(b.entries)
	b.mu.Unlock()

	metrics.RevokedTokens.Set(float64(size))
}

// IsRevoked reports whether token is on the list and not yet past its expiry.
func (b *TokenBlacklist) IsRevoked(token string) bool {
	b.mu.RLock()
	exp, ok := b.entries[token]
	b.mu.RUnlock()
	return ok && exp >= b.now().Unix()
}

// Sweep removes entries whose expiry has passed and returns how many were removed.
func (b *TokenBlacklist) Sweep() int {
	now := b.now().Unix()

	b.mu.Lock()
	removed := 0
	for token, exp := range b.entries {
		if exp < now {
			delete(b.entries, token)
			removed++
		}
	}
	size := len(b.entries)
	b.mu.Unlock()

	metrics.RevokedTokens.Set(float64(size))
	metrics.RevokedTokensSwept.Add(float64(removed))
	return removed
}

func (b *TokenBlacklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Run sweeps once, then every interval until ctx is done.
func (b *TokenBlacklist) Run(ctx context.Context, interval time.Duration) {
	b.Sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := b.Sweep()
			log.Debug().Int("removed", removed).Int("remaining", b.Len()).Msg("blacklist cleanup")
		}
	}
}
