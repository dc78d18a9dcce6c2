package scene

// Clock turns absolute timestamps into per-frame deltas. The zero value
// measures the first delta from time 0, which is when the time source was
// initialized.
type Clock struct {
	last float64
}

// Tick returns the seconds elapsed since the previous Tick. A source that
// steps backwards yields 0 rather than a negative step.
func (c *Clock) Tick(now float64) float32 {
	dt := now - c.last
	c.last = now
	if dt < 0 {
		return 0
	}
	return float32(dt)
}

// Reset makes the next Tick measure from now.
func (c *Clock) Reset(now float64) {
	c.last = now
}
