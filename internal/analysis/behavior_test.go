package analysis

import (
	"testing"
	"time"
)

func newTestBehavior() (*BehaviorTracker, Tunables) {
	cfg := DefaultTunables()
	return NewBehaviorTracker(&cfg), cfg
}

func TestBehaviorTracker_BlinkRate(t *testing.T) {
	t.Run("too few samples returns default", func(t *testing.T) {
		b, cfg := newTestBehavior()
		b.RecordBlink(time.Now())
		if got := b.BlinkRate(); got != cfg.DefaultBlinkRate {
			t.Errorf("BlinkRate() = %v, want default %v", got, cfg.DefaultBlinkRate)
		}
	})

	t.Run("rate from timestamp spacing", func(t *testing.T) {
		b, _ := newTestBehavior()
		t0 := time.Now()
		// 4 intervals over 8 seconds: 30 blinks/min
		for i := 0; i < 5; i++ {
			b.RecordBlink(t0.Add(time.Duration(i) * 2 * time.Second))
		}
		got := b.BlinkRate()
		if got < 29.9 || got > 30.1 {
			t.Errorf("BlinkRate() = %v, want 30", got)
		}
	})
}

func TestBehaviorTracker_HeadFrequentlyAway(t *testing.T) {
	b, _ := newTestBehavior()
	t0 := time.Now()

	// Half the samples far off-center: fraction 0.5 > 0.4
	for i := 0; i < 5; i++ {
		b.RecordHead(0.5, 0.5, t0)
		b.RecordHead(0.1, 0.5, t0)
	}
	if !b.IsHeadFrequentlyAway() {
		t.Error("expected head frequently away with half the samples off-center")
	}

	b.Reset()
	for i := 0; i < 10; i++ {
		b.RecordHead(0.5, 0.5, t0)
	}
	if b.IsHeadFrequentlyAway() {
		t.Error("centered head should not read as away")
	}
}

func TestBehaviorTracker_HeadFrequentlyDown(t *testing.T) {
	b, _ := newTestBehavior()
	t0 := time.Now()

	for i := 0; i < 10; i++ {
		b.RecordHead(0.5, 0.7, t0)
	}
	if !b.IsHeadFrequentlyDown() {
		t.Error("expected head frequently down with all samples low in frame")
	}
}

func TestBehaviorTracker_LongEyeClosures(t *testing.T) {
	b, _ := newTestBehavior()
	t0 := time.Now()

	t.Run("open interval measured against now", func(t *testing.T) {
		b.RecordClosureStart(t0)
		if b.HasLongEyeClosures(t0.Add(500 * time.Millisecond)) {
			t.Error("500ms closure should not count as long")
		}
		if !b.HasLongEyeClosures(t0.Add(1500 * time.Millisecond)) {
			t.Error("1.5s open closure should count as long")
		}
	})

	t.Run("finalized short interval", func(t *testing.T) {
		b.Reset()
		b.RecordClosureStart(t0)
		b.RecordClosureEnd(t0.Add(200 * time.Millisecond))
		if b.HasLongEyeClosures(t0.Add(5 * time.Second)) {
			t.Error("finalized 200ms closure should not count as long")
		}
	})
}

func TestBehaviorTracker_MouthFrequentlyTight(t *testing.T) {
	b, _ := newTestBehavior()
	t0 := time.Now()

	for i := 0; i < 6; i++ {
		b.RecordMouth(0.1, t0)
	}
	for i := 0; i < 4; i++ {
		b.RecordMouth(0.35, t0)
	}
	if !b.IsMouthFrequentlyTight() {
		t.Error("expected mouth frequently tight with 60% tight samples")
	}
}

func TestBehaviorTracker_Prune(t *testing.T) {
	b, _ := newTestBehavior()
	t0 := time.Now()

	b.RecordHead(0.5, 0.5, t0)
	b.RecordHead(0.5, 0.5, t0.Add(9*time.Second))
	b.Prune(t0.Add(12 * time.Second))

	if got := b.HeadSampleCount(); got != 1 {
		t.Errorf("HeadSampleCount() after prune = %d, want 1", got)
	}
}

func TestBehaviorTracker_DwellGate(t *testing.T) {
	b, _ := newTestBehavior()
	t0 := time.Now()

	// Baseline is confident
	if got := b.UpdateState(ExpressionConfident, t0); got != ExpressionConfident {
		t.Fatalf("UpdateState() = %v, want confident", got)
	}

	// A new proposal must dwell for 800ms before it is accepted
	if got := b.UpdateState(ExpressionNervous, t0); got != ExpressionConfident {
		t.Errorf("UpdateState() at t0 = %v, want confident (gated)", got)
	}
	if got := b.UpdateState(ExpressionNervous, t0.Add(500*time.Millisecond)); got != ExpressionConfident {
		t.Errorf("UpdateState() at 500ms = %v, want confident (still gated)", got)
	}
	if got := b.UpdateState(ExpressionNervous, t0.Add(900*time.Millisecond)); got != ExpressionNervous {
		t.Errorf("UpdateState() at 900ms = %v, want nervous", got)
	}
}

func TestBehaviorTracker_DwellGateResetOnFlap(t *testing.T) {
	b, _ := newTestBehavior()
	t0 := time.Now()

	b.UpdateState(ExpressionConfident, t0)
	b.UpdateState(ExpressionNervous, t0.Add(100*time.Millisecond))
	// Flapping back to the current state clears the candidate
	b.UpdateState(ExpressionConfident, t0.Add(200*time.Millisecond))
	// The nervous candidate must re-earn its dwell from scratch
	b.UpdateState(ExpressionNervous, t0.Add(300*time.Millisecond))
	if got := b.UpdateState(ExpressionNervous, t0.Add(1*time.Second)); got != ExpressionConfident {
		t.Errorf("UpdateState() = %v, want confident (dwell restarted)", got)
	}
	if got := b.UpdateState(ExpressionNervous, t0.Add(1200*time.Millisecond)); got != ExpressionNervous {
		t.Errorf("UpdateState() = %v, want nervous after full dwell", got)
	}
}
