// Package visibility latches one-time "element became visible" transitions.
package visibility

import "sync"

// Detector flips to visible the first time an observed visible fraction
// reaches its threshold, and never flips back.
type Detector struct {
	mu        sync.Mutex
	threshold float64
	visible   bool
}

// NewDetector returns a detector for threshold, clamped to [0, 1].
func NewDetector(threshold float64) *Detector {
	switch {
	case threshold < 0:
		threshold = 0
	case threshold > 1:
		threshold = 1
	}
	return &Detector{threshold: threshold}
}

// Observe reports the element's current visible fraction. It returns true
// only on the call that makes the detector visible.
func (d *Detector) Observe(ratio float64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.visible || ratio < d.threshold {
		return false
	}
	d.visible = true
	return true
}

func (d *Detector) Visible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible
}

func (d *Detector) Threshold() float64 {
	return d.threshold
}
