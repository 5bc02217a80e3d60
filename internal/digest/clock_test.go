package digest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_Monotonic(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}

func TestClock_Concurrent(t *testing.T) {
	c := NewClock()
	var wg sync.WaitGroup
	seen := make([]int64, 100)
	for i := range seen {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seen[i] = c.Next()
		}(i)
	}
	wg.Wait()

	unique := make(map[int64]bool, len(seen))
	for _, s := range seen {
		unique[s] = true
	}
	assert.Len(t, unique, 100)
	assert.Equal(t, int64(100), c.Current())
}
