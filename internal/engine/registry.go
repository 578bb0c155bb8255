package engine

import (
	"fmt"
	"time"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
)

// Registry owns the authoritative set of open contracts. It assigns ids,
// settles expired contracts exactly once in the order they were opened,
// applies each settlement to the ledger, and notifies the sizer.
//
// Settlement exactly-once is structural: a contract is removed from the
// open set in the same step that marks it settled, so there is no path
// that can evaluate it twice.
type Registry struct {
	ledger *Ledger
	sizer  Sizer

	nextID  int64
	open    []*Contract // insertion order
	settled []*Contract
}

// NewRegistry creates a registry bound to a ledger and a sizer. Both are
// per-run: registries must never be shared across backtest runs.
func NewRegistry(ledger *Ledger, sizer Sizer) *Registry {
	return &Registry{
		ledger: ledger,
		sizer:  sizer,
		nextID: 1,
	}
}

// Open creates a contract and adds it to the open set. Concurrency and
// cooldown gating are the caller's responsibility and must happen before
// this call.
func (r *Registry) Open(direction core.Direction, entryPrice float64, entryTime time.Time, stake, payoutRate float64, expiry time.Duration) (*Contract, error) {
	if stake <= 0 {
		return nil, fmt.Errorf("stake must be positive, got %f", stake)
	}
	if payoutRate < 0 {
		return nil, fmt.Errorf("payout rate must not be negative, got %f", payoutRate)
	}

	c := &Contract{
		ID:         r.nextID,
		Direction:  direction,
		EntryPrice: entryPrice,
		EntryTime:  entryTime,
		ExpiryTime: entryTime.Add(expiry),
		Stake:      stake,
		PayoutRate: payoutRate,
		Status:     StatusOpen,
	}
	r.nextID++
	r.open = append(r.open, c)
	return c, nil
}

// SettleExpired settles every open contract whose expiry is at or before
// now, using price as the exit price. Settled contracts are returned in
// the order they were opened. For each one, in that order, the profit is
// applied to the ledger and the sizer is updated.
func (r *Registry) SettleExpired(now time.Time, price float64) []*Contract {
	var settled []*Contract
	remaining := r.open[:0]

	for _, c := range r.open {
		if !c.Expired(now) {
			remaining = append(remaining, c)
			continue
		}

		if c.won(price) {
			c.Status = StatusWon
			c.Profit = c.Stake * c.PayoutRate
		} else {
			c.Status = StatusLost
			c.Profit = -c.Stake
		}
		c.ExitPrice = price

		r.ledger.Apply(c.Profit)
		r.sizer.Update(c.Status == StatusWon, c.Profit, c.Stake)

		settled = append(settled, c)
	}

	r.open = remaining
	r.settled = append(r.settled, settled...)
	return settled
}

// OpenCount returns the number of currently open contracts.
func (r *Registry) OpenCount() int {
	return len(r.open)
}

// OpenContracts returns the open contracts in insertion order.
func (r *Registry) OpenContracts() []*Contract {
	out := make([]*Contract, len(r.open))
	copy(out, r.open)
	return out
}

// Settled returns every settled contract in settlement order.
func (r *Registry) Settled() []*Contract {
	out := make([]*Contract, len(r.settled))
	copy(out, r.settled)
	return out
}
