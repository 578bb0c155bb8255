package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/horaciomoreno100/deriv-bot/internal/config"
	"github.com/horaciomoreno100/deriv-bot/internal/logger"
	"github.com/horaciomoreno100/deriv-bot/internal/strategy"
	"github.com/horaciomoreno100/deriv-bot/internal/strategy/meanreversion"
	"github.com/horaciomoreno100/deriv-bot/internal/strategy/rsithreshold"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "derivbot",
	Short: "Binary options backtester for Deriv synthetic indices",
	Long: `derivbot fetches candle history from the Deriv WebSocket API and
replays it through a contract engine with progressive stake sizing.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

// loadConfig reads the configured file, or falls back to defaults so
// the tool works out of the box.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Defaults(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *zap.Logger {
	return logger.Must(debug || cfg.Log.Development)
}

// strategyRegistry holds every strategy the CLI can run.
func strategyRegistry() *strategy.Registry {
	reg := strategy.NewRegistry()
	reg.Register(meanreversion.New())
	reg.Register(rsithreshold.New())
	return reg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
