package backtest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// WriteReport prints the run summary and the settled contracts as
// console tables.
func WriteReport(w io.Writer, res *Result) {
	fmt.Fprintf(w, "\nBacktest %s — %s on %s (%ds candles)\n",
		res.RunID, res.Strategy, res.Symbol, res.Granularity)
	fmt.Fprintf(w, "%s to %s\n\n",
		res.StartDate.Format("2006-01-02 15:04"), res.EndDate.Format("2006-01-02 15:04"))

	s := res.Stats
	summary := tablewriter.NewWriter(w)
	summary.Header("Metric", "Value")
	summary.Append("Contracts", fmt.Sprintf("%d (%d still open)", s.TotalContracts, res.OpenAtEnd))
	summary.Append("Wins / Losses", fmt.Sprintf("%d / %d", s.Wins, s.Losses))
	summary.Append("Win rate", fmt.Sprintf("%.1f%%", s.WinRate))
	summary.Append("Initial cash", fmt.Sprintf("%.2f", res.InitialCash))
	summary.Append("Final cash", fmt.Sprintf("%.2f", s.FinalCash))
	summary.Append("Net profit", fmt.Sprintf("%+.2f", s.NetProfit))
	summary.Append("ROI", fmt.Sprintf("%+.1f%%", s.ROI))
	summary.Append("Max drawdown", fmt.Sprintf("%.1f%%", s.MaxDrawdown))
	summary.Append("Total staked", fmt.Sprintf("%.2f", s.TotalStaked))
	summary.Append("Avg / largest stake", fmt.Sprintf("%.2f / %.2f", s.AvgStake, s.LargestStake))
	summary.Append("Best streaks", fmt.Sprintf("W%d / L%d", s.MaxWinStreak, s.MaxLossStreak))
	summary.Render()
}

// WriteContracts prints the settled contract ledger, oldest first.
func WriteContracts(w io.Writer, res *Result) {
	if len(res.Contracts) == 0 {
		fmt.Fprintln(w, "no contracts settled")
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Dir", "Entry", "Exit", "Stake", "Profit", "Result")
	for _, c := range res.Contracts {
		table.Append(
			fmt.Sprintf("%d", c.ID),
			string(c.Direction),
			fmt.Sprintf("%.5f", c.EntryPrice),
			fmt.Sprintf("%.5f", c.ExitPrice),
			fmt.Sprintf("%.2f", c.Stake),
			fmt.Sprintf("%+.2f", c.Profit),
			string(c.Status),
		)
	}
	table.Render()
}

// JSON renders the result for archiving.
func (r *Result) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
