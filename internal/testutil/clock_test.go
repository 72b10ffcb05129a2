package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock_StartsAtEpoch(t *testing.T) {
	clock := NewManualClock()
	assert.Equal(t, Epoch, clock.Now())
}

func TestManualClock_Advance(t *testing.T) {
	clock := NewManualClock()

	clock.Advance(3 * time.Second)
	assert.Equal(t, Epoch.Add(3*time.Second), clock.Now())

	clock.Advance(-time.Hour)
	assert.Equal(t, Epoch.Add(3*time.Second), clock.Now(), "negative advance ignored")
}

func TestManualClock_Reset(t *testing.T) {
	clock := NewManualClock()
	clock.Advance(time.Minute)

	clock.Reset()
	assert.Equal(t, Epoch, clock.Now())
}

func TestManualClock_ThreadSafe(t *testing.T) {
	clock := NewManualClock()
	const numGoroutines = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			clock.Advance(time.Millisecond)
			_ = clock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, Epoch.Add(numGoroutines*time.Millisecond), clock.Now())
}
