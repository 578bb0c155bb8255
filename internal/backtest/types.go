package backtest

import (
	"fmt"
	"time"

	"github.com/horaciomoreno100/deriv-bot/internal/engine"
)

// Result holds the complete backtest output
type Result struct {
	RunID       string              `json:"run_id"`
	Strategy    string              `json:"strategy"`
	Symbol      string              `json:"symbol"`
	Granularity int                 `json:"granularity"`
	StartDate   time.Time           `json:"start_date"`
	EndDate     time.Time           `json:"end_date"`
	StartedAt   time.Time           `json:"started_at"`
	Duration    time.Duration       `json:"duration_ns"`
	InitialCash float64             `json:"initial_cash"`
	Contracts   []*engine.Contract  `json:"contracts"`
	OpenAtEnd   int                 `json:"open_at_end"`
	Stats       Stats               `json:"stats"`
}

// Stats holds performance statistics
type Stats struct {
	TotalContracts int     `json:"total_contracts"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	WinRate        float64 `json:"win_rate"`     // Percentage of winning contracts
	TotalStaked    float64 `json:"total_staked"`
	NetProfit      float64 `json:"net_profit"`
	ROI            float64 `json:"roi"`          // Net profit over initial cash, percentage
	FinalCash      float64 `json:"final_cash"`
	MaxDrawdown    float64 `json:"max_drawdown"` // Largest peak-to-trough cash decline, percentage
	MaxWinStreak   int     `json:"max_win_streak"`
	MaxLossStreak  int     `json:"max_loss_streak"`
	LargestStake   float64 `json:"largest_stake"`
	AvgStake       float64 `json:"avg_stake"`
}

// ArchiveKey is the blob key the result is archived under.
func (r *Result) ArchiveKey() string {
	return fmt.Sprintf("runs/%s/%s.json", r.Strategy, r.RunID)
}
