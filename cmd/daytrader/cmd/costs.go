package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/daytrader/costs"
)

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Price a hypothetical round trip",
	Long: `Costs itemizes commission, transaction tax and slippage for a single
round trip at the given prices, without running a backtest.

Example:
  daytrader costs --entry 100 --exit 102 --lots 2 --intraday`,
	RunE: runCosts,
}

var (
	costEntry    float64
	costExit     float64
	costLots     int64
	costIntraday bool
)

func init() {
	rootCmd.AddCommand(costsCmd)

	costsCmd.Flags().Float64Var(&costEntry, "entry", 0, "entry price (required)")
	costsCmd.Flags().Float64Var(&costExit, "exit", 0, "exit price (required)")
	costsCmd.Flags().Int64Var(&costLots, "lots", 1, "lots of 1000 shares")
	costsCmd.Flags().BoolVar(&costIntraday, "intraday", false, "apply the intraday tax rate")
	costsCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to config file (defaults applied when empty)")
	costsCmd.MarkFlagRequired("entry")
	costsCmd.MarkFlagRequired("exit")
}

func runCosts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shares := costLots * cfg.Risk.LotSize
	model := costs.New(cfg.CostParams())
	bd, err := model.PriceTrade(costEntry, costExit, shares, costIntraday)
	if err != nil {
		return err
	}

	fmt.Printf("Round trip %.2f -> %.2f, %d lot(s) = %d shares\n", costEntry, costExit, costLots, shares)
	fmt.Printf("  Buy commission:  %10.0f\n", bd.BuyCommission)
	fmt.Printf("  Sell commission: %10.0f\n", bd.SellCommission)
	fmt.Printf("  Transaction tax: %10.0f\n", bd.Tax)
	fmt.Printf("  Slippage:        %10.0f\n", bd.Slippage)
	fmt.Printf("  Total cost:      %10.0f\n", bd.TotalCost)
	fmt.Printf("  Breakeven exit:  %10.2f\n", bd.Breakeven)
	fmt.Printf("  Gross P&L:       %10.0f\n", bd.GrossPnL)
	fmt.Printf("  Net P&L:         %10.0f\n", bd.NetPnL)
	return nil
}
