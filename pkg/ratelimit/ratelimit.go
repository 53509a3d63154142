// Package ratelimit provides client-side request budgets matching the
// venue's published per-tier limits. Staying under the budget locally
// avoids burning retry attempts on 429 responses.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// Bucket is a token bucket refilled continuously at a fixed per-second
// rate. Safe for concurrent use.
type Bucket struct {
	mu     sync.Mutex
	tokens float64
	limit  float64
	rate   float64
	last   time.Time

	// test seam
	now func() time.Time
}

// NewBucket returns a full bucket holding capacity tokens, refilled at
// perSecond tokens per second. A perSecond of zero never refills.
func NewBucket(capacity int, perSecond float64) *Bucket {
	if capacity < 1 {
		capacity = 1
	}
	b := &Bucket{
		tokens: float64(capacity),
		limit:  float64(capacity),
		rate:   perSecond,
		now:    time.Now,
	}
	b.last = b.now()
	return b
}

func (b *Bucket) refill() {
	now := b.now()
	if b.rate > 0 {
		b.tokens = math.Min(b.limit, b.tokens+now.Sub(b.last).Seconds()*b.rate)
	}
	b.last = now
}

// Allow takes a token if one is available.
func (b *Bucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Wait blocks until it takes a token or ctx ends.
func (b *Bucket) Wait(ctx context.Context) error {
	for {
		b.mu.Lock()
		b.refill()
		if b.tokens >= 1 {
			b.tokens--
			b.mu.Unlock()
			return nil
		}
		wait := time.Second
		if b.rate > 0 {
			wait = time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
		}
		b.mu.Unlock()

		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Remaining reports whole tokens left in the budget.
func (b *Bucket) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	return int(b.tokens)
}

// Tier pairs the read and write budgets the venue meters separately.
// Order placement and cancellation draw from the write budget, every
// other call from the read budget. A nil *Tier applies no limit.
type Tier struct {
	Reads  *Bucket
	Writes *Bucket
}

// BasicTier is the entry-level venue budget: 10 reads and 5 writes per
// second.
func BasicTier() *Tier {
	return &Tier{
		Reads:  NewBucket(10, 10),
		Writes: NewBucket(5, 5),
	}
}

// AdvancedTier is the raised venue budget: 30 reads and 30 writes per
// second.
func AdvancedTier() *Tier {
	return &Tier{
		Reads:  NewBucket(30, 30),
		Writes: NewBucket(30, 30),
	}
}

// Wait blocks on the budget covering the request kind.
func (t *Tier) Wait(ctx context.Context, write bool) error {
	if t == nil {
		return nil
	}
	b := t.Reads
	if write {
		b = t.Writes
	}
	if b == nil {
		return nil
	}
	return b.Wait(ctx)
}
