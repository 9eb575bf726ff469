package analysis

import (
	"sync"
	"time"

	"github.com/ayusman/drishti/internal/landmark"
)

// CheatDetector is the independent behavioral risk accumulator. It consumes
// the same landmark stream as the scorers but keeps its own short frame
// windows, and is reset whenever the face is not tracked. The phone-detection
// boolean arrives out of band from the object detection monitor; by policy it
// is the only signal that can escalate the status to cheating.
type CheatDetector struct {
	cfg *Tunables

	mu            sync.Mutex
	gazeDownSince time.Time
	pitchFrames   []bool
	handFrames    []bool
	behaviorScore int
	behaviorFlag  bool
	phoneDetected bool
}

// NewCheatDetector creates a detector with empty frame windows.
func NewCheatDetector(cfg *Tunables) *CheatDetector {
	return &CheatDetector{
		cfg:         cfg,
		pitchFrames: make([]bool, 0, cfg.CheatFrameWindow),
		handFrames:  make([]bool, 0, cfg.CheatFrameWindow),
	}
}

// PitchDegrees estimates head pitch from the nose-bridge position between
// forehead and chin, normalized to degrees. Negative values pitch downward.
func PitchDegrees(cfg *Tunables, f *landmark.FaceFrame) float64 {
	height := f.Points[landmark.Chin].Y - f.Points[landmark.Forehead].Y
	if height <= 0 {
		return 0
	}
	ratio := (f.Points[landmark.NoseBridge].Y - f.Points[landmark.Forehead].Y) / height
	return (cfg.PitchNeutralRatio - ratio) * cfg.PitchDegreesScale
}

// Update scores one frame and returns the derived state. A nil face resets
// the behavioral accumulators; the phone flag is retained.
func (c *CheatDetector) Update(face *landmark.FaceFrame, hands []landmark.HandFrame, now time.Time) CheatingState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if face == nil {
		c.gazeDownSince = time.Time{}
		c.pitchFrames = c.pitchFrames[:0]
		c.handFrames = c.handFrames[:0]
		c.behaviorScore = 0
		c.behaviorFlag = false
		return c.stateLocked()
	}

	cfg := c.cfg
	pitch := PitchDegrees(cfg, face)

	score := 0

	// Gaze held down continuously.
	if pitch < cfg.GazeDownPitchDegrees {
		if c.gazeDownSince.IsZero() {
			c.gazeDownSince = now
		}
		if now.Sub(c.gazeDownSince) > time.Duration(cfg.GazeDownMs)*time.Millisecond {
			score += cfg.GazeDownPoints
		}
	} else {
		c.gazeDownSince = time.Time{}
	}

	// Head pitched down over most of the recent frames.
	c.pitchFrames = pushBool(c.pitchFrames, pitch < cfg.PitchDownDegrees, cfg.CheatFrameWindow)
	if boolFraction(c.pitchFrames, cfg.CheatFrameWindow) >= cfg.CheatFrameFraction {
		score += cfg.PitchPoints
	}

	// Hand near the face over most of the recent frames.
	c.handFrames = pushBool(c.handFrames, handNearFace(cfg, face, hands), cfg.CheatFrameWindow)
	if boolFraction(c.handFrames, cfg.CheatFrameWindow) >= cfg.CheatFrameFraction {
		score += cfg.HandNearPoints
	}

	// Face drifting against the frame boundary.
	if faceNearEdge(cfg, face) {
		score += cfg.EdgePoints
	}

	if score > 100 {
		score = 100
	}
	c.behaviorScore = score
	c.behaviorFlag = score >= cfg.BehaviorFlagScore

	return c.stateLocked()
}

// SetPhoneDetected merges an object-detection result into the phone flag.
// The flag latches: once a phone has been seen, the session stays flagged.
func (c *CheatDetector) SetPhoneDetected(detected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phoneDetected = c.phoneDetected || detected
}

// State returns the current derived cheating state.
func (c *CheatDetector) State() CheatingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// stateLocked derives the status. The behavioral flag alone never escalates
// to cheating; only a phone detection does.
func (c *CheatDetector) stateLocked() CheatingState {
	status := StatusFocused
	switch {
	case c.phoneDetected:
		status = StatusCheating
	case c.behaviorScore > c.cfg.DistractedScore:
		status = StatusDistracted
	}
	return CheatingState{
		BehaviorScore: c.behaviorScore,
		PhoneDetected: c.phoneDetected,
		Status:        status,
	}
}

// Reset clears all accumulators including the phone flag.
func (c *CheatDetector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gazeDownSince = time.Time{}
	c.pitchFrames = c.pitchFrames[:0]
	c.handFrames = c.handFrames[:0]
	c.behaviorScore = 0
	c.behaviorFlag = false
	c.phoneDetected = false
}

func faceNearEdge(cfg *Tunables, f *landmark.FaceFrame) bool {
	boundary := []int{landmark.Forehead, landmark.Chin, landmark.LeftCheek, landmark.RightCheek}
	m := cfg.EdgeMargin
	for _, idx := range boundary {
		p := f.Points[idx]
		if p.X < m || p.X > 1-m || p.Y < m || p.Y > 1-m {
			return true
		}
	}
	return false
}

func pushBool(ring []bool, v bool, cap int) []bool {
	if len(ring) >= cap {
		copy(ring, ring[1:])
		ring = ring[:cap-1]
	}
	return append(ring, v)
}

// boolFraction returns the true fraction once the window has filled; a
// partially filled window never trips the threshold.
func boolFraction(ring []bool, window int) float64 {
	if len(ring) < window {
		return 0
	}
	n := 0
	for _, v := range ring {
		if v {
			n++
		}
	}
	return float64(n) / float64(len(ring))
}
