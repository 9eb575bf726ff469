package analysis

import "time"

// ClosureKind classifies an eye-closure span by its duration.
type ClosureKind int

const (
	// ClosureNone means the eyes are open.
	ClosureNone ClosureKind = iota
	// ClosureBlink is a short closure, at most the blink duration or still
	// under half the long-closure threshold.
	ClosureBlink
	// ClosurePending is a closure that has outgrown a blink but has not yet
	// reached the long-closure threshold.
	ClosurePending
	// ClosureLong is a sustained closure beyond the long-closure threshold.
	ClosureLong
)

// EyeEvent describes what the eye state machine observed this frame.
type EyeEvent struct {
	Kind ClosureKind
	// JustClosed is set on the open-to-closed transition.
	JustClosed bool
	// Finalized is set on the closed-to-open transition, with Duration
	// holding the total closed time.
	Finalized bool
	Duration  time.Duration
}

// EyeState is the per-session eye state machine. It distinguishes blinks from
// sustained closures from the raw per-frame EAR signal, and smooths score
// output with an asymmetric moving-average blend. One instance exists per
// analysis session and is reset on session stop.
type EyeState struct {
	cfg *Tunables

	isOpen      bool
	closedSince time.Time

	window      []float64
	smoothed    float64
	hasSmoothed bool
}

// NewEyeState creates an eye state machine starting in the open state.
func NewEyeState(cfg *Tunables) *EyeState {
	return &EyeState{
		cfg:    cfg,
		isOpen: true,
		window: make([]float64, 0, cfg.SmoothWindow),
	}
}

// Update drives the state machine with the current frame's EAR.
// Open/closed transitions are detected from the raw EAR against the closed
// threshold; the previous frame's raw openness alone decides whether a
// closure just started.
func (e *EyeState) Update(ear float64, now time.Time) EyeEvent {
	open := ear > e.cfg.EARClosedThreshold

	var ev EyeEvent

	switch {
	case e.isOpen && !open:
		e.closedSince = now
		ev.JustClosed = true
		ev.Kind = ClosureBlink

	case !e.isOpen && !open:
		ev.Kind = e.classify(now.Sub(e.closedSince))

	case !e.isOpen && open:
		total := now.Sub(e.closedSince)
		ev.Finalized = true
		ev.Duration = total
		ev.Kind = e.classify(total)
		e.closedSince = time.Time{}

	default:
		ev.Kind = ClosureNone
	}

	e.isOpen = open
	return ev
}

// classify maps a closed duration onto a closure kind.
func (e *EyeState) classify(d time.Duration) ClosureKind {
	blinkMax := time.Duration(e.cfg.BlinkMaxMs) * time.Millisecond
	long := time.Duration(e.cfg.LongClosureMs) * time.Millisecond

	switch {
	case d <= blinkMax:
		return ClosureBlink
	case d > long:
		return ClosureLong
	case d < long/2:
		return ClosureBlink
	default:
		return ClosurePending
	}
}

// IsOpen reports the raw eye-openness from the last update.
func (e *EyeState) IsOpen() bool { return e.isOpen }

// ClosedFor returns how long the eyes have been continuously closed, or 0
// when open.
func (e *EyeState) ClosedFor(now time.Time) time.Duration {
	if e.isOpen || e.closedSince.IsZero() {
		return 0
	}
	return now.Sub(e.closedSince)
}

// InBlink reports whether the current closure still counts as a blink.
func (e *EyeState) InBlink(now time.Time) bool {
	if e.isOpen {
		return false
	}
	return e.classify(e.ClosedFor(now)) == ClosureBlink
}

// closedNonBlink reports a sustained (non-blink) closure in progress.
func (e *EyeState) closedNonBlink(now time.Time) bool {
	return !e.isOpen && !e.InBlink(now)
}

// SmoothScore runs a raw 0..1 score through the adaptive moving-average
// blend. When the raw score is under the bypass threshold during a non-blink
// closure, the raw value is emitted directly so a sustained closure drops the
// score immediately. Otherwise the windowed average is blended with the
// previous smoothed value, reacting faster to drops than to recovery.
func (e *EyeState) SmoothScore(raw float64, now time.Time) float64 {
	if raw < e.cfg.SmoothBypassBelow && e.closedNonBlink(now) {
		e.pushWindow(raw)
		e.smoothed = raw
		e.hasSmoothed = true
		return raw
	}

	e.pushWindow(raw)

	var avg float64
	for _, v := range e.window {
		avg += v
	}
	avg /= float64(len(e.window))

	if !e.hasSmoothed {
		e.smoothed = avg
		e.hasSmoothed = true
		return e.smoothed
	}

	weight := e.cfg.SmoothRecoverWeight
	if e.smoothed-avg > e.cfg.SmoothDropDelta {
		weight = e.cfg.SmoothDropWeight
	}
	e.smoothed = e.smoothed*(1-weight) + avg*weight
	return e.smoothed
}

func (e *EyeState) pushWindow(v float64) {
	if len(e.window) >= e.cfg.SmoothWindow {
		copy(e.window, e.window[1:])
		e.window = e.window[:e.cfg.SmoothWindow-1]
	}
	e.window = append(e.window, v)
}

// ClosurePenalty returns a multiplicative factor in [1-max, 1] applied once a
// closure exceeds the long-closure threshold, growing with the excess closed
// duration assuming ~30 fps.
func (e *EyeState) ClosurePenalty(now time.Time) float64 {
	closed := e.ClosedFor(now)
	long := time.Duration(e.cfg.LongClosureMs) * time.Millisecond
	if closed <= long {
		return 1
	}

	excessFrames := (closed - long).Seconds() * e.cfg.AssumedFPS
	penalty := excessFrames * e.cfg.ClosurePenaltyPerFrame
	if penalty > e.cfg.ClosurePenaltyMax {
		penalty = e.cfg.ClosurePenaltyMax
	}
	return 1 - penalty
}

// Reset returns the state machine to its initial open state.
func (e *EyeState) Reset() {
	e.isOpen = true
	e.closedSince = time.Time{}
	e.window = e.window[:0]
	e.smoothed = 0
	e.hasSmoothed = false
}
