package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/daytrader/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "daytrader",
	Short: "A Taiwan equities day-trading backtester with realistic costs",
	Long: `Daytrader replays historical OHLCV data through trading strategies with
the full Taiwan fee schedule applied to every round trip.

It provides tools for:
  - Backtesting bar strategies against daily or intraday data
  - Commission, transaction tax and slippage accounting per trade
  - ATR-based stop placement and risk-based lot sizing
  - Drawdown and daily-loss equity protection
  - Journaling trades and equity curves to CSV or SQLite`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetLevel(logLevel)
	},
}

var logLevel string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}
