package playback

// Draft is a candidate segment window being edited interactively, at whole-
// second granularity. The setters keep start < end true after every single
// adjustment, never only eventually, so a draft can be submitted at any
// moment.
type Draft struct {
	Start int
	End   int
}

// NewDraft spans the whole upload. A zero or unknown duration still yields a
// valid one-second window.
func NewDraft(durationSeconds int) Draft {
	if durationSeconds < 1 {
		durationSeconds = 1
	}
	return Draft{Start: 0, End: durationSeconds}
}

// SetStart moves the start handle. Dragging it to or past the end pushes the
// end out to keep a one-second window.
func (d *Draft) SetStart(v int) {
	if v < 0 {
		v = 0
	}
	d.Start = v
	if d.Start >= d.End {
		d.End = d.Start + 1
	}
}

// SetEnd moves the end handle. Dragging it to or before the start pulls the
// start back to keep a one-second window.
func (d *Draft) SetEnd(v int) {
	if v < 1 {
		v = 1
	}
	d.End = v
	if d.End <= d.Start {
		d.Start = d.End - 1
	}
}

// SetStartFromPosition feeds a live playback position through SetStart, so
// the "use current time" shortcut cannot bypass the clamp.
func (d *Draft) SetStartFromPosition(position float64) {
	d.SetStart(int(position))
}

// SetEndFromPosition is the end-handle counterpart of SetStartFromPosition.
func (d *Draft) SetEndFromPosition(position float64) {
	d.SetEnd(int(position))
}

// Window converts the draft to a playback window for previewing before the
// segment is saved.
func (d Draft) Window() Window {
	return Window{Start: float64(d.Start), End: float64(d.End)}
}
