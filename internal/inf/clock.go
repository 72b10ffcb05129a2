package inf

import "time"

// Clock supplies wall-clock time to iterators.
//
// Latency budgets are measured from iterator creation with this clock.
// Tests substitute a manual clock to expire iterators deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
// Stateless and safe for concurrent use.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
