package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/daytrader/backtest"
	"github.com/rustyeddy/daytrader/config"
	"github.com/rustyeddy/daytrader/costs"
	"github.com/rustyeddy/daytrader/journal"
	"github.com/rustyeddy/daytrader/market"
	"github.com/rustyeddy/daytrader/protect"
	"github.com/rustyeddy/daytrader/risk"
	"github.com/rustyeddy/daytrader/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest <data-file> [data-file...]",
	Short: "Replay historical bars through a strategy",
	Long: `Backtest replays one or more OHLCV data files through a strategy with the
full cost model, risk sizing and equity protection in force. Each file holds
one symbol; a .zip archive may hold several. Symbols run concurrently, each
against its own capital book.

Supported strategies: ` + strings.Join(strategies.Names(), ", ") + `

Example:
  daytrader backtest data/2330.csv --strategy sma-cross --db runs.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBacktest,
}

var (
	btConfigPath string
	btStrategy   string
	btCapital    float64
	btDBPath     string
	btParallel   int
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to config file (defaults applied when empty)")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "", "strategy name, overrides the config")
	backtestCmd.Flags().Float64VarP(&btCapital, "capital", "b", 0, "initial capital per symbol, overrides the config")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "SQLite journal path, overrides the config")
	backtestCmd.Flags().IntVar(&btParallel, "parallel", 0, "max symbols running at once (0 = all)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if btStrategy != "" {
		cfg.Strategy.Name = btStrategy
	}
	if btCapital > 0 {
		cfg.Account.InitialCapital = btCapital
	}
	if btDBPath != "" {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = btDBPath
	}

	series, err := loadSeries(args)
	if err != nil {
		return err
	}

	jr, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if jr != nil {
		defer jr.Close()
	}

	runner := &backtest.Runner{
		InitialCapital: cfg.Account.InitialCapital,
		Parallelism:    btParallel,
		NewDeps: func(symbol string) (backtest.Deps, error) {
			strat, err := strategies.New(cfg.Strategy.Name)
			if err != nil {
				return backtest.Deps{}, err
			}
			rm, err := risk.New(cfg.RiskConfig())
			if err != nil {
				return backtest.Deps{}, err
			}
			ctl, err := protect.New(cfg.Account.InitialCapital, cfg.ProtectConfig())
			if err != nil {
				return backtest.Deps{}, err
			}
			return backtest.Deps{
				Strategy:   strat,
				Risk:       rm,
				Protection: ctl,
				Costs:      costs.New(cfg.CostParams()),
				Journal:    jr,
				ATRPeriod:  cfg.Risk.ATRPeriod,
			}, nil
		},
	}

	results, err := runner.RunAll(cmd.Context(), series)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	for _, res := range results {
		run := runRecord(cfg.Strategy.Name, res)
		if jr != nil {
			if err := jr.RecordRun(run); err != nil {
				return fmt.Errorf("record run: %w", err)
			}
		}
		report, err := journal.RenderReport(run, tradeRecords(res))
		if err != nil {
			return err
		}
		fmt.Println(report)
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if btConfigPath == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(btConfigPath)
}

func loadSeries(paths []string) (map[string]*market.BarSeries, error) {
	out := make(map[string]*market.BarSeries)
	for _, path := range paths {
		if filepath.Ext(path) == ".zip" {
			m, err := market.LoadZip(path)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
			for sym, s := range m {
				out[sym] = s
			}
			continue
		}
		s, err := market.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		out[s.Symbol()] = s
	}
	return out, nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	default:
		return nil, nil
	}
}

func runRecord(strategy string, res *backtest.Result) journal.RunRecord {
	rec := journal.RunRecord{
		RunID:          res.RunID,
		Symbol:         res.Symbol,
		Strategy:       strategy,
		Created:        time.Now().UTC(),
		InitialCapital: res.InitialCapital,
		FinalCapital:   res.FinalCapital,
		Trades:         res.Summary.Trades,
		Wins:           res.Summary.Wins,
		Losses:         res.Summary.Losses,
		WinRate:        res.Summary.WinRate,
		NetPnL:         res.Summary.NetPnL,
		TotalCosts:     res.Summary.TotalCosts,
		ReturnPct:      res.Summary.TotalReturn,
		MaxDrawdownPct: res.Summary.MaxDrawdown,
		ProfitFactor:   res.Summary.ProfitFactor,
		FinalState:     res.Protection.State.String(),
	}
	if n := len(res.Trades); n > 0 {
		rec.Start = res.Trades[0].EntryTime
		rec.End = res.Trades[n-1].ExitTime
	}
	return rec
}

func tradeRecords(res *backtest.Result) []journal.TradeRecord {
	out := make([]journal.TradeRecord, 0, len(res.Trades))
	for _, t := range res.Trades {
		out = append(out, journal.TradeRecord{
			RunID:      res.RunID,
			Symbol:     t.Symbol,
			Lots:       t.Lots,
			Shares:     t.Shares,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			EntryTime:  t.EntryTime,
			ExitTime:   t.ExitTime,
			GrossPnL:   t.GrossPnL,
			Commission: t.Costs.Commission,
			Tax:        t.Costs.Tax,
			Slippage:   t.Costs.Slippage,
			TotalCost:  t.Costs.TotalCost,
			NetPnL:     t.NetPnL,
			Reason:     t.Reason,
		})
	}
	return out
}
