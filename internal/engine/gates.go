package engine

import "time"

// CooldownGate blocks new entries within the cooldown window of the
// previous entry. The window is measured entry-to-entry, not
// entry-to-settlement.
type CooldownGate struct {
	cooldown  time.Duration
	lastEntry time.Time
	hasEntry  bool
}

// NewCooldownGate creates a gate with the given minimum spacing.
func NewCooldownGate(cooldown time.Duration) *CooldownGate {
	return &CooldownGate{cooldown: cooldown}
}

// AllowsEntry reports whether an entry at now respects the cooldown.
func (g *CooldownGate) AllowsEntry(now time.Time) bool {
	if !g.hasEntry {
		return true
	}
	return now.Sub(g.lastEntry) >= g.cooldown
}

// RecordEntry marks an actual entry. Call only when a contract is
// opened, never on a skipped signal.
func (g *CooldownGate) RecordEntry(now time.Time) {
	g.lastEntry = now
	g.hasEntry = true
}

// ConcurrencyLimiter caps the number of simultaneously open contracts.
// It carries no state of its own; the open count lives in the registry.
type ConcurrencyLimiter struct {
	maxConcurrent int
}

// NewConcurrencyLimiter creates a limiter allowing up to maxConcurrent
// open contracts.
func NewConcurrencyLimiter(maxConcurrent int) *ConcurrencyLimiter {
	return &ConcurrencyLimiter{maxConcurrent: maxConcurrent}
}

// AllowsEntry reports whether another contract may be opened given the
// current open count.
func (l *ConcurrencyLimiter) AllowsEntry(openCount int) bool {
	return openCount < l.maxConcurrent
}
