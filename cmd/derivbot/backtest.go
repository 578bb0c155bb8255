package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/horaciomoreno100/deriv-bot/internal/backtest"
	"github.com/horaciomoreno100/deriv-bot/internal/config"
	"github.com/horaciomoreno100/deriv-bot/internal/engine"
	"github.com/horaciomoreno100/deriv-bot/internal/metrics"
	"github.com/horaciomoreno100/deriv-bot/internal/storage/archive"
	"github.com/horaciomoreno100/deriv-bot/internal/storage/candlestore"
	"github.com/horaciomoreno100/deriv-bot/internal/strategy"
)

var (
	backtestFrom      string
	backtestTo        string
	backtestSymbol    string
	backtestStrategy  string
	backtestContracts bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay cached candles through the contract engine",
	Long:  "Run the configured strategy against cached candle history and show performance statistics",
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "Start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "End date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestSymbol, "symbol", "", "Override the configured symbol")
	backtestCmd.Flags().StringVar(&backtestStrategy, "strategy", "", "Override the configured strategy")
	backtestCmd.Flags().BoolVar(&backtestContracts, "contracts", false, "Print the settled contract ledger")

	backtestCmd.MarkFlagRequired("from")
	backtestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(backtestCmd)
}

func parseDateRange(from, to string) (time.Time, time.Time, error) {
	fromDate, err := time.Parse("2006-01-02", from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
	}
	toDate, err := time.Parse("2006-01-02", to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
	}
	if toDate.Before(fromDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date must be after start date")
	}
	return fromDate.UTC(), toDate.UTC().Add(24*time.Hour - time.Second), nil
}

// sizerFactory maps the sizer config onto a per-run constructor.
func sizerFactory(cfg config.SizerConfig) backtest.SizerFactory {
	switch cfg.Kind {
	case "fixed":
		return func() (engine.Sizer, error) {
			return engine.NewFixedSizer(cfg.Fixed.Stake)
		}
	case "martingale":
		return func() (engine.Sizer, error) {
			return engine.NewMartingaleSizer(cfg.Martingale.BaseStake, cfg.Martingale.Factor, cfg.Martingale.MaxSteps)
		}
	case "compound":
		return func() (engine.Sizer, error) {
			return engine.NewCompoundSizer(cfg.Compound.BaseStake, cfg.Compound.Factor, cfg.Compound.MaxSteps)
		}
	default:
		p := cfg.Progressive
		return func() (engine.Sizer, error) {
			return engine.NewProgressiveSizer(engine.ProgressiveConfig{
				BaseStakePct:     p.BaseStakePct,
				MinStakePct:      p.MinStakePct,
				MaxStakePct:      p.MaxStakePct,
				MaxWinStreak:     p.MaxWinStreak,
				MaxLossStreak:    p.MaxLossStreak,
				StrengthBonusPct: p.StrengthBonusPct,
				BaselineStrength: p.BaselineStrength,
			})
		}
	}
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if backtestSymbol != "" {
		cfg.Market.Symbol = backtestSymbol
	}
	if backtestStrategy != "" {
		cfg.Strategy.Name = backtestStrategy
	}

	log := newLogger(cfg)
	defer log.Sync()

	from, to, err := parseDateRange(backtestFrom, backtestTo)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := candlestore.Open(cfg.Data.DSN)
	if err != nil {
		return err
	}
	defer store.Close()

	candles, err := store.LoadCandles(ctx, cfg.Market.Symbol, cfg.Market.Granularity, from, to)
	if err != nil {
		return fmt.Errorf("loading candles (run `derivbot fetch` first?): %w", err)
	}

	strat, err := strategyRegistry().Get(cfg.Strategy.Name)
	if err != nil {
		return err
	}
	if err := strat.Init(strategy.Config{Params: cfg.Strategy.Params}); err != nil {
		return fmt.Errorf("initializing strategy %s: %w", strat.Name(), err)
	}

	engineCfg := engine.Config{
		InitialCash:      cfg.Engine.InitialCash,
		PayoutRate:       cfg.Engine.PayoutRate,
		Expiry:           cfg.Engine.Expiry,
		Cooldown:         cfg.Engine.Cooldown,
		MaxConcurrent:    cfg.Engine.MaxConcurrent,
		StopOnBankruptcy: cfg.Engine.StopOnBankruptcy,
	}

	opts := []backtest.Option{backtest.WithLogger(log)}
	var metricsReg *metrics.Registry
	if cfg.Metrics.Enabled {
		metricsReg = metrics.NewRegistry()
		opts = append(opts, backtest.WithObserver(metricsReg))
		go func() {
			if err := metrics.Serve(ctx, metricsReg, cfg.Metrics.Addr, cfg.Metrics.Path, log); err != nil {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	runner := backtest.NewRunner(engineCfg, sizerFactory(cfg.Sizer), strat, opts...)
	res, err := runner.Run(ctx, candles)
	if err != nil {
		if metricsReg != nil {
			metricsReg.RecordBacktest("failed", 0)
		}
		return err
	}
	if metricsReg != nil {
		metricsReg.RecordBacktest("completed", res.Duration.Seconds())
	}

	backtest.WriteReport(os.Stdout, res)
	if backtestContracts {
		backtest.WriteContracts(os.Stdout, res)
	}

	if err := store.SaveRun(ctx, candlestore.RunRecord{
		ID:             res.RunID,
		Strategy:       res.Strategy,
		Symbol:         res.Symbol,
		Granularity:    res.Granularity,
		StartedAt:      res.StartedAt,
		InitialCash:    res.InitialCash,
		FinalCash:      res.Stats.FinalCash,
		TotalContracts: res.Stats.TotalContracts,
		Wins:           res.Stats.Wins,
		Losses:         res.Stats.Losses,
		NetProfit:      res.Stats.NetProfit,
	}, res.Contracts); err != nil {
		log.Warn("saving run record", zap.Error(err))
	}

	if cfg.Archive.Enabled {
		if err := archiveResult(ctx, cfg, res); err != nil {
			log.Warn("archiving result", zap.Error(err))
		} else {
			log.Info("result archived", zap.String("key", res.ArchiveKey()))
		}
	}
	return nil
}

func archiveResult(ctx context.Context, cfg *config.Config, res *backtest.Result) error {
	store, err := archive.FromConfig(cfg.Archive)
	if err != nil {
		return err
	}
	data, err := res.JSON()
	if err != nil {
		return err
	}
	return store.Put(ctx, res.ArchiveKey(), data)
}
