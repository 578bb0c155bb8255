package engine_test

import (
	"testing"
	"time"

	"github.com/horaciomoreno100/deriv-bot/internal/engine"
	"github.com/stretchr/testify/assert"
)

func TestCooldownGate(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	gate := engine.NewCooldownGate(2 * time.Minute)

	assert.True(t, gate.AllowsEntry(start), "first entry is always allowed")

	gate.RecordEntry(start)
	assert.False(t, gate.AllowsEntry(start.Add(time.Minute)))
	assert.False(t, gate.AllowsEntry(start.Add(2*time.Minute-time.Second)))
	assert.True(t, gate.AllowsEntry(start.Add(2*time.Minute)), "boundary is inclusive")
	assert.True(t, gate.AllowsEntry(start.Add(3*time.Minute)))
}

func TestCooldownGate_MeasuredFromEntryNotSettlement(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	gate := engine.NewCooldownGate(time.Minute)

	gate.RecordEntry(start)
	// No RecordEntry for settlements: the window keys off the last entry
	// only, so one minute after the entry a new one is allowed.
	assert.True(t, gate.AllowsEntry(start.Add(time.Minute)))
}

func TestCooldownGate_ZeroCooldown(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	gate := engine.NewCooldownGate(0)

	gate.RecordEntry(start)
	assert.True(t, gate.AllowsEntry(start))
}

func TestConcurrencyLimiter(t *testing.T) {
	limiter := engine.NewConcurrencyLimiter(2)

	assert.True(t, limiter.AllowsEntry(0))
	assert.True(t, limiter.AllowsEntry(1))
	assert.False(t, limiter.AllowsEntry(2))
	assert.False(t, limiter.AllowsEntry(3))
}

func TestLedger(t *testing.T) {
	ledger := engine.NewLedger(1000)
	assert.Equal(t, 1000.0, ledger.Initial())
	assert.Equal(t, 1000.0, ledger.Cash())

	ledger.Apply(9.5)
	ledger.Apply(-10)
	assert.InDelta(t, 999.5, ledger.Cash(), 1e-9)
	assert.InDelta(t, -0.5, ledger.NetProfit(), 1e-9)
}
