// Package ratelimit keeps one token bucket per key on top of golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed hands out a token bucket per key (client IP, admin ID, ...).
// Buckets idle longer than the idle timeout are dropped by a janitor goroutine
// that stops on Close.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Every builds a limiter that refills one token per interval, up to burst
func Every(interval time.Duration, burst int) *Keyed {
	return New(rate.Every(interval), burst, interval*time.Duration(burst+1))
}

// PerWindow allows n events per window with a burst of n
func PerWindow(n int, window time.Duration) *Keyed {
	if n <= 0 {
		n = 1
	}
	return New(rate.Every(window/time.Duration(n)), n, window*2)
}

// New creates a keyed limiter. idle controls when unused buckets are dropped.
func New(limit rate.Limit, burst int, idle time.Duration) *Keyed {
	if idle <= 0 {
		idle = time.Minute
	}
	k := &Keyed{
		entries: make(map[string]*entry),
		limit:   limit,
		burst:   burst,
		idle:    idle,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go k.cleanupLoop()
	return k
}

func (k *Keyed) cleanupLoop() {
	defer close(k.done)
	ticker := time.NewTicker(k.idle)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			k.purgeIdle()
		case <-k.stop:
			return
		}
	}
}

func (k *Keyed) purgeIdle() {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	for key, e := range k.entries {
		if now.Sub(e.lastSeen) > k.idle {
			delete(k.entries, key)
		}
	}
}

func (k *Keyed) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = e
	}
	e.lastSeen = k.now()
	return e.limiter
}

// Allow consumes a token for key and reports whether one was available
func (k *Keyed) Allow(key string) bool {
	return k.get(key).AllowN(k.now(), 1)
}

// Reserve reports whether key may proceed and, if not, how long until it may
func (k *Keyed) Reserve(key string) (bool, time.Duration) {
	now := k.now()
	r := k.get(key).ReserveN(now, 1)
	if !r.OK() {
		return false, k.idle
	}
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Remaining returns the whole tokens currently available for key
func (k *Keyed) Remaining(key string) int {
	tokens := k.get(key).TokensAt(k.now())
	if tokens < 0 {
		return 0
	}
	return int(tokens)
}

// Burst returns the bucket size
func (k *Keyed) Burst() int {
	return k.burst
}

// Wait blocks until key may proceed or ctx is done
func (k *Keyed) Wait(ctx context.Context, key string) error {
	return k.get(key).Wait(ctx)
}

// Len returns the number of tracked keys
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

// Close stops the janitor
func (k *Keyed) Close() error {
	k.stopOnce.Do(func() { close(k.stop) })
	<-k.done
	return nil
}
