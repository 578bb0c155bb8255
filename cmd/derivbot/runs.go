package main

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/horaciomoreno100/deriv-bot/internal/storage/candlestore"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent backtest runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := candlestore.Open(cfg.Data.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded yet")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Started", "Run", "Strategy", "Symbol", "Contracts", "W/L", "Net")
	for _, r := range runs {
		table.Append(
			r.StartedAt.Format("2006-01-02 15:04"),
			r.ID[:8],
			r.Strategy,
			r.Symbol,
			fmt.Sprintf("%d", r.TotalContracts),
			fmt.Sprintf("%d/%d", r.Wins, r.Losses),
			fmt.Sprintf("%+.2f", r.NetProfit),
		)
	}
	table.Render()
	return nil
}
