package ratelimit

import "sync"

// Keyed keeps an independent Limiter per key, e.g. per client IP
type Keyed struct {
	newLimiter func() Limiter
	limiters   map[string]Limiter
	mu         sync.Mutex
}

// NewKeyed creates a keyed limiter; newLimiter is called the first time a
// key is seen.
func NewKeyed(newLimiter func() Limiter) *Keyed {
	return &Keyed{
		newLimiter: newLimiter,
		limiters:   make(map[string]Limiter),
	}
}

// Allow consumes one request for key. Lookup and hit hold the same lock as
// Prune.
func (k *Keyed) Allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.limiters[key]
	if !ok {
		l = k.newLimiter()
		k.limiters[key] = l
	}
	return l.Allow()
}

// Prune forgets keys whose sliding window is empty and returns how many
// were removed. Other limiter kinds are kept.
func (k *Keyed) Prune() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	removed := 0
	for key, l := range k.limiters {
		if sw, ok := l.(*SlidingWindow); ok && sw.idle() {
			delete(k.limiters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}
