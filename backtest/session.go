package backtest

import "github.com/rustyeddy/daytrader/market"

// Session feeds bars to an engine one at a time, for drivers that receive
// data incrementally instead of holding a full series up front. The engine's
// semantics are identical to Run: signals fill on the following bar.
type Session struct {
	eng    *Engine
	closed bool
}

func NewSession(symbol string, initialCapital float64, d Deps) (*Session, error) {
	eng, err := NewEngine(symbol, initialCapital, d)
	if err != nil {
		return nil, err
	}
	return &Session{eng: eng}, nil
}

func (s *Session) RunID() string { return s.eng.runID }

// OnBar advances the session by one bar. Bars must arrive in strictly
// increasing time order; a violation surfaces as a DataIntegrityError.
func (s *Session) OnBar(bar market.Bar) error {
	if s.closed {
		return errSessionClosed
	}
	return s.eng.step(bar)
}

// Close force-exits any open position at the last seen close and returns the
// final result. A session can only be closed once.
func (s *Session) Close() (*Result, error) {
	if s.closed {
		return nil, errSessionClosed
	}
	s.closed = true
	return s.eng.finish()
}

// Open reports whether the session currently holds a position.
func (s *Session) Open() bool { return s.eng.pos != nil }
