// Package deadline computes interview timing from a stored start timestamp.
package deadline

import (
	"math"
	"time"
)

// DefaultDuration is the length of an interview measured from first access.
const DefaultDuration = 300 * time.Second

// Policy evaluates elapsed and remaining time for a fixed interview window.
type Policy struct {
	Duration time.Duration
}

// Status is the result of evaluating a start time against the current time.
type Status struct {
	IsOver           bool
	Elapsed          time.Duration
	ElapsedSeconds   float64
	RemainingSeconds int
}

// NewPolicy returns a policy for the given window, falling back to DefaultDuration.
func NewPolicy(d time.Duration) Policy {
	if d <= 0 {
		d = DefaultDuration
	}
	return Policy{Duration: d}
}

// Evaluate reports whether the window that opened at start has closed by now.
// A now earlier than start is treated as zero elapsed time.
func (p Policy) Evaluate(start, now time.Time) Status {
	window := p.Duration
	if window <= 0 {
		window = DefaultDuration
	}

	elapsed := now.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}

	elapsedSeconds := elapsed.Seconds()
	remaining := int(window.Seconds()) - int(math.Floor(elapsedSeconds))
	if remaining < 0 {
		remaining = 0
	}

	isOver := elapsed >= window
	if isOver {
		remaining = 0
	}

	return Status{
		IsOver:           isOver,
		Elapsed:          elapsed,
		ElapsedSeconds:   elapsedSeconds,
		RemainingSeconds: remaining,
	}
}

// Deadline returns the instant the window closes for a given start time.
func (p Policy) Deadline(start time.Time) time.Time {
	return start.Add(p.Duration)
}
