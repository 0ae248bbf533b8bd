// Package playback keeps an advancing playback position pinned inside a
// [start,end) window. It is pure state: the host feeds in position ticks and
// applies the returned seek/pause decisions to whatever is playing the media.
package playback

// Window is a half-open [Start,End) interval in seconds.
type Window struct {
	Start float64
	End   float64
}

// Clamp is the transition applied on every position advance. It returns the
// position to show and whether playback should pause. Positions at or past
// End pause at End; positions before Start snap back to Start.
func (w Window) Clamp(position float64) (float64, bool) {
	if position >= w.End {
		return w.End, true
	}
	if position < w.Start {
		return w.Start, false
	}
	return position, false
}

// Contains reports whether the position lies inside the window.
func (w Window) Contains(position float64) bool {
	return position >= w.Start && position < w.End
}

// Controller holds the active window, if any. A nil window means playback is
// unconstrained.
type Controller struct {
	window *Window
}

// SetWindow activates a window and returns the position playback should be
// at: the window start when the live position is outside it, otherwise the
// position unchanged. The second result reports whether a seek is needed.
func (c *Controller) SetWindow(w Window, position float64) (float64, bool) {
	c.window = &w
	if !w.Contains(position) {
		return w.Start, true
	}
	return position, false
}

// Clear removes the constraint and returns control to free playback.
func (c *Controller) Clear() {
	c.window = nil
}

// Window returns the active window, if one is set.
func (c *Controller) Window() (Window, bool) {
	if c.window == nil {
		return Window{}, false
	}
	return *c.window, true
}

// Advance is called on every playback tick, not just at load, so a stalled
// or externally-reported position can never show out-of-window frames.
func (c *Controller) Advance(position float64) (float64, bool) {
	if c.window == nil {
		return position, false
	}
	return c.window.Clamp(position)
}
