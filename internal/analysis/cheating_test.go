package analysis

import (
	"testing"
	"time"

	"github.com/ayusman/drishti/internal/landmark"
)

func TestPitchDegrees(t *testing.T) {
	cfg := DefaultTunables()

	t.Run("frontal face near neutral", func(t *testing.T) {
		got := PitchDegrees(&cfg, landmark.FrontalFace())
		if got < -3 || got > 3 {
			t.Errorf("PitchDegrees() for frontal face = %v, want near 0", got)
		}
	})

	t.Run("head down pitches negative", func(t *testing.T) {
		got := PitchDegrees(&cfg, landmark.HeadDownFace())
		if got > cfg.PitchDownDegrees {
			t.Errorf("PitchDegrees() for head-down face = %v, want < %v", got, cfg.PitchDownDegrees)
		}
	})

	t.Run("degenerate face height", func(t *testing.T) {
		f := landmark.FrontalFace()
		f.Points[landmark.Chin].Y = f.Points[landmark.Forehead].Y
		if got := PitchDegrees(&cfg, f); got != 0 {
			t.Errorf("PitchDegrees() with zero height = %v, want 0", got)
		}
	})
}

func TestCheatDetector_FocusedBaseline(t *testing.T) {
	cfg := DefaultTunables()
	d := NewCheatDetector(&cfg)
	t0 := time.Now()

	var state CheatingState
	for i := 0; i < 15; i++ {
		state = d.Update(landmark.FrontalFace(), nil, t0.Add(time.Duration(i)*100*time.Millisecond))
	}
	if state.Status != StatusFocused {
		t.Errorf("Status = %v, want focused", state.Status)
	}
	if state.BehaviorScore != 0 {
		t.Errorf("BehaviorScore = %d, want 0", state.BehaviorScore)
	}
}

func TestCheatDetector_SustainedHeadDown(t *testing.T) {
	cfg := DefaultTunables()
	d := NewCheatDetector(&cfg)
	t0 := time.Now()

	// Head pitched down over the full window and past the gaze-down hold:
	// both the windowed pitch points and the sustained gaze points apply.
	var state CheatingState
	for i := 0; i < 12; i++ {
		state = d.Update(landmark.HeadDownFace(), nil, t0.Add(time.Duration(i)*200*time.Millisecond))
	}

	if state.BehaviorScore < cfg.BehaviorFlagScore {
		t.Errorf("BehaviorScore = %d, want >= %d", state.BehaviorScore, cfg.BehaviorFlagScore)
	}
	if state.Status != StatusDistracted {
		t.Errorf("Status = %v, want distracted (behavior alone never escalates to cheating)", state.Status)
	}
}

func TestCheatDetector_HandNearFaceWindow(t *testing.T) {
	cfg := DefaultTunables()
	d := NewCheatDetector(&cfg)
	t0 := time.Now()

	hands := []landmark.HandFrame{landmark.HandNearFace()}
	var state CheatingState
	for i := 0; i < 10; i++ {
		state = d.Update(landmark.FrontalFace(), hands, t0.Add(time.Duration(i)*100*time.Millisecond))
	}
	if state.BehaviorScore != cfg.HandNearPoints {
		t.Errorf("BehaviorScore = %d, want %d", state.BehaviorScore, cfg.HandNearPoints)
	}

	// A partially filled window never trips the threshold
	d.Reset()
	state = d.Update(landmark.FrontalFace(), hands, t0)
	if state.BehaviorScore != 0 {
		t.Errorf("BehaviorScore with 1-frame window = %d, want 0", state.BehaviorScore)
	}
}

func TestCheatDetector_FaceNearEdge(t *testing.T) {
	cfg := DefaultTunables()
	d := NewCheatDetector(&cfg)

	// TurnedAwayFace pushes the left cheek against the frame boundary
	state := d.Update(landmark.TurnedAwayFace(), nil, time.Now())
	if state.BehaviorScore != cfg.EdgePoints {
		t.Errorf("BehaviorScore = %d, want %d", state.BehaviorScore, cfg.EdgePoints)
	}
}

func TestCheatDetector_PhoneLatch(t *testing.T) {
	cfg := DefaultTunables()
	d := NewCheatDetector(&cfg)

	d.SetPhoneDetected(true)
	d.SetPhoneDetected(false)

	state := d.State()
	if !state.PhoneDetected {
		t.Error("phone flag should latch once set")
	}
	if state.Status != StatusCheating {
		t.Errorf("Status = %v, want cheating", state.Status)
	}

	// Only Reset clears the latch
	d.Reset()
	if state := d.State(); state.PhoneDetected || state.Status != StatusFocused {
		t.Errorf("State() after reset = %+v, want cleared", state)
	}
}

func TestCheatDetector_NilFaceResetsBehavior(t *testing.T) {
	cfg := DefaultTunables()
	d := NewCheatDetector(&cfg)
	t0 := time.Now()

	hands := []landmark.HandFrame{landmark.HandNearFace()}
	for i := 0; i < 10; i++ {
		d.Update(landmark.FrontalFace(), hands, t0.Add(time.Duration(i)*100*time.Millisecond))
	}
	d.SetPhoneDetected(true)

	state := d.Update(nil, nil, t0.Add(2*time.Second))
	if state.BehaviorScore != 0 {
		t.Errorf("BehaviorScore after face loss = %d, want 0", state.BehaviorScore)
	}
	if !state.PhoneDetected {
		t.Error("phone flag must survive face loss")
	}
	if state.Status != StatusCheating {
		t.Errorf("Status = %v, want cheating", state.Status)
	}
}
