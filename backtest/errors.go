package backtest

import "errors"

var errSessionClosed = errors.New("backtest: session already closed")
