package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var start = time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)

func TestClock_Now(t *testing.T) {
	c := NewClock(start)
	assert.Equal(t, start, c.Now())
	assert.Equal(t, start, c.Now(), "reading does not move on its own")
}

func TestClock_Advance(t *testing.T) {
	c := NewClock(start)
	c.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), c.Now())
}

func TestClock_AdvanceDays(t *testing.T) {
	c := NewClock(start)
	c.AdvanceDays(1)
	assert.Equal(t, time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC), c.Now())
	c.AdvanceDays(-2)
	assert.Equal(t, time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC), c.Now())
}

func TestClock_Set(t *testing.T) {
	c := NewClock(start)
	later := start.AddDate(1, 0, 0)
	c.Set(later)
	assert.Equal(t, later, c.Now())
}

func TestClock_ThreadSafe(t *testing.T) {
	c := NewClock(start)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Advance(time.Second)
			_ = c.Now()
		}()
	}
	wg.Wait()
	assert.Equal(t, start.Add(100*time.Second), c.Now())
}
