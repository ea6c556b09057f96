// Package strategies defines the strategy boundary of the backtest engine
// and a few reference implementations. A strategy sees only the bar history
// it is handed; the engine guarantees that history never contains the bar on
// which its signal will be filled.
package strategies

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/daytrader/market"
)

// Action is the strategy's verdict for one bar.
type Action int

const (
	Hold Action = iota
	Buy
	Sell
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Signal is emitted once per bar and consumed within the same simulation
// step. Strength is an optional score in [0, 1]; 0 means "not scored".
type Signal struct {
	Action   Action
	Strength float64
}

// BarStrategy generates one signal per bar from causally-valid history:
// history[len-1] is the bar just completed, and nothing later exists yet.
// Implementations must be pure with respect to future data.
type BarStrategy interface {
	Name() string
	Reset()
	Signal(history []market.Bar) Signal
}

// Factory builds a fresh strategy instance, one per symbol run.
type Factory func() BarStrategy

var registry = map[string]Factory{}

func Register(name string, f Factory) {
	registry[strings.ToLower(name)] = f
}

// New builds a registered strategy by name.
func New(name string) (BarStrategy, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)",
			name, strings.Join(Names(), ", "))
	}
	return f(), nil
}

// Names lists registered strategies, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
