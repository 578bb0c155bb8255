package engine

import (
	"time"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
)

// ContractStatus is the settlement state of a contract.
type ContractStatus string

const (
	StatusOpen ContractStatus = "open"
	StatusWon  ContractStatus = "won"
	StatusLost ContractStatus = "lost"
)

// Contract is a single binary options position. Entry fields are fixed
// at open; ExitPrice and Profit are set exactly once at settlement.
type Contract struct {
	ID         int64          `json:"id"`
	Direction  core.Direction `json:"direction"`
	EntryPrice float64        `json:"entry_price"`
	EntryTime  time.Time      `json:"entry_time"`
	ExpiryTime time.Time      `json:"expiry_time"`
	Stake      float64        `json:"stake"`
	PayoutRate float64        `json:"payout_rate"`
	Status     ContractStatus `json:"status"`
	ExitPrice  float64        `json:"exit_price"`
	Profit     float64        `json:"profit"`
}

// Expired reports whether the contract is due for settlement at now.
func (c *Contract) Expired(now time.Time) bool {
	return !c.ExpiryTime.After(now)
}

// won decides the outcome against the exit price. The comparisons are
// strict on both sides, so a price tie at expiry loses for Call and Put
// alike. That mirrors the payout rules of the simulated broker; changing
// it would change every historical result.
func (c *Contract) won(exitPrice float64) bool {
	switch c.Direction {
	case core.DirectionCall:
		return exitPrice > c.EntryPrice
	case core.DirectionPut:
		return exitPrice < c.EntryPrice
	}
	return false
}
