package backtest

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/daytrader/market"
)

// DepsFunc builds a fresh set of collaborators for one symbol. Each symbol
// runs against its own capital book; sharing a protection controller or risk
// manager across symbols would race and is not supported.
type DepsFunc func(symbol string) (Deps, error)

// Runner fans a set of bar series out across goroutines, one engine per
// symbol. The first failing symbol cancels the rest.
type Runner struct {
	InitialCapital float64
	NewDeps        DepsFunc
	Parallelism    int // 0 means run all symbols at once
}

// RunAll executes every series and returns results keyed by symbol, ordered
// by symbol name for stable reporting.
func (r *Runner) RunAll(ctx context.Context, series map[string]*market.BarSeries) ([]*Result, error) {
	g, ctx := errgroup.WithContext(ctx)
	if r.Parallelism > 0 {
		g.SetLimit(r.Parallelism)
	}

	var mu sync.Mutex
	results := make(map[string]*Result, len(series))

	for sym, srs := range series {
		sym, srs := sym, srs
		g.Go(func() error {
			deps, err := r.NewDeps(sym)
			if err != nil {
				return err
			}
			eng, err := NewEngine(sym, r.InitialCapital, deps)
			if err != nil {
				return err
			}
			res, err := eng.Run(ctx, srs)
			if err != nil {
				return err
			}
			mu.Lock()
			results[sym] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	syms := make([]string, 0, len(results))
	for s := range results {
		syms = append(syms, s)
	}
	sort.Strings(syms)

	out := make([]*Result, 0, len(syms))
	for _, s := range syms {
		out = append(out, results[s])
	}
	return out, nil
}
