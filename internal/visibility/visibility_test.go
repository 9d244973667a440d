package visibility_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/validateiq/validateiq/internal/visibility"
)

func TestDetector_LatchesOnce(t *testing.T) {
	d := visibility.NewDetector(0.2)

	assert.False(t, d.Observe(0.1))
	assert.False(t, d.Visible())

	assert.True(t, d.Observe(0.2), "threshold is inclusive")
	assert.True(t, d.Visible())

	assert.False(t, d.Observe(0.9))
	assert.False(t, d.Observe(0))
	assert.True(t, d.Visible(), "never reverts")
}

func TestDetector_ClampsThreshold(t *testing.T) {
	assert.Equal(t, 0.0, visibility.NewDetector(-1).Threshold())
	assert.Equal(t, 1.0, visibility.NewDetector(3).Threshold())

	d := visibility.NewDetector(-1)
	assert.True(t, d.Observe(0))
}

func TestDetector_ConcurrentObserve(t *testing.T) {
	d := visibility.NewDetector(0.5)

	var flips atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Observe(1) {
				flips.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), flips.Load())
}

func TestSeen(t *testing.T) {
	s := visibility.NewSeen()

	assert.True(t, s.Mark("features"))
	assert.False(t, s.Mark("features"))
	assert.True(t, s.Mark("problem"))

	assert.True(t, s.Has("features"))
	assert.False(t, s.Has("hero"))
	assert.Equal(t, 2, s.Len())
}
