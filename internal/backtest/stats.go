package backtest

import (
	"github.com/horaciomoreno100/deriv-bot/internal/engine"
)

// CalculateStats computes performance statistics from settled
// contracts, which must be in settlement order.
func CalculateStats(contracts []*engine.Contract, initialCash float64) Stats {
	stats := Stats{
		TotalContracts: len(contracts),
		FinalCash:      initialCash,
	}
	if len(contracts) == 0 {
		return stats
	}

	var winStreak, lossStreak int
	cash := initialCash
	peak := initialCash
	var maxDD float64

	for _, c := range contracts {
		stats.TotalStaked += c.Stake
		if c.Stake > stats.LargestStake {
			stats.LargestStake = c.Stake
		}

		if c.Status == engine.StatusWon {
			stats.Wins++
			winStreak++
			lossStreak = 0
		} else {
			stats.Losses++
			lossStreak++
			winStreak = 0
		}
		if winStreak > stats.MaxWinStreak {
			stats.MaxWinStreak = winStreak
		}
		if lossStreak > stats.MaxLossStreak {
			stats.MaxLossStreak = lossStreak
		}

		cash += c.Profit
		if cash > peak {
			peak = cash
		}
		if peak > 0 {
			if dd := (peak - cash) / peak * 100; dd > maxDD {
				maxDD = dd
			}
		}
	}

	stats.WinRate = float64(stats.Wins) / float64(len(contracts)) * 100
	stats.NetProfit = cash - initialCash
	stats.FinalCash = cash
	stats.MaxDrawdown = maxDD
	stats.AvgStake = stats.TotalStaked / float64(len(contracts))
	if initialCash > 0 {
		stats.ROI = stats.NetProfit / initialCash * 100
	}
	return stats
}
