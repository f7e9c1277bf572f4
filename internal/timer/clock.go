package timer

import "time"

// Ticker delivers recurring ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. It is injectable so countdowns can be driven
// deterministically in tests.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type systemClock struct{}

type systemTicker struct {
	t *time.Ticker
}

// SystemClock returns a Clock backed by time.Ticker.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

func (s *systemTicker) C() <-chan time.Time { return s.t.C }

func (s *systemTicker) Stop() { s.t.Stop() }
