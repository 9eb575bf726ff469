package analysis

import (
	"testing"
	"time"
)

func testTunables() Tunables {
	return DefaultTunables()
}

func TestEyeState_BlinkDetection(t *testing.T) {
	cfg := testTunables()
	e := NewEyeState(&cfg)
	t0 := time.Now()

	// Open frame
	ev := e.Update(0.25, t0)
	if ev.JustClosed || ev.Finalized {
		t.Fatal("open frame should not report a transition")
	}

	// Closure starts
	ev = e.Update(0.05, t0.Add(33*time.Millisecond))
	if !ev.JustClosed {
		t.Fatal("expected JustClosed on open-to-closed transition")
	}

	// Eyes reopen 200ms later: a blink
	ev = e.Update(0.25, t0.Add(233*time.Millisecond))
	if !ev.Finalized {
		t.Fatal("expected Finalized on closed-to-open transition")
	}
	if ev.Kind != ClosureBlink {
		t.Errorf("Kind = %v, want ClosureBlink", ev.Kind)
	}
	if ev.Duration != 200*time.Millisecond {
		t.Errorf("Duration = %v, want 200ms", ev.Duration)
	}
}

func TestEyeState_ClosureClassification(t *testing.T) {
	tests := []struct {
		name   string
		closed time.Duration
		want   ClosureKind
	}{
		{"short blink", 200 * time.Millisecond, ClosureBlink},
		{"at blink boundary", 300 * time.Millisecond, ClosureBlink},
		{"over blink but under half long", 700 * time.Millisecond, ClosureBlink},
		{"pending closure", 900 * time.Millisecond, ClosurePending},
		{"long closure", 1600 * time.Millisecond, ClosureLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testTunables()
			e := NewEyeState(&cfg)
			t0 := time.Now()

			e.Update(0.25, t0)
			e.Update(0.05, t0)
			ev := e.Update(0.25, t0.Add(tt.closed))
			if ev.Kind != tt.want {
				t.Errorf("Kind after %v closed = %v, want %v", tt.closed, ev.Kind, tt.want)
			}
		})
	}
}

func TestEyeState_InBlink(t *testing.T) {
	cfg := testTunables()
	e := NewEyeState(&cfg)
	t0 := time.Now()

	e.Update(0.25, t0)
	e.Update(0.05, t0)

	if !e.InBlink(t0.Add(100 * time.Millisecond)) {
		t.Error("closure at 100ms should still count as a blink")
	}
	if e.InBlink(t0.Add(900 * time.Millisecond)) {
		t.Error("closure at 900ms should no longer count as a blink")
	}
	if !e.closedNonBlink(t0.Add(900 * time.Millisecond)) {
		t.Error("closure at 900ms should read as a sustained closure")
	}
}

func TestEyeState_SmoothBypass(t *testing.T) {
	cfg := testTunables()
	e := NewEyeState(&cfg)
	t0 := time.Now()

	// Build up a high smoothed baseline with open eyes
	for i := 0; i < 10; i++ {
		e.Update(0.25, t0.Add(time.Duration(i)*33*time.Millisecond))
		e.SmoothScore(0.9, t0.Add(time.Duration(i)*33*time.Millisecond))
	}

	// Enter a sustained closure
	e.Update(0.05, t0.Add(400*time.Millisecond))
	later := t0.Add(1300 * time.Millisecond)
	e.Update(0.05, later)

	// Raw under the bypass threshold during a non-blink closure is emitted
	// verbatim, skipping the moving average entirely.
	got := e.SmoothScore(0.1, later)
	if got != 0.1 {
		t.Errorf("SmoothScore() during sustained closure = %v, want exactly 0.1", got)
	}
}

func TestEyeState_SmoothAsymmetry(t *testing.T) {
	cfg := testTunables()
	e := NewEyeState(&cfg)
	t0 := time.Now()
	e.Update(0.25, t0)

	// First sample seeds the smoothed value directly
	if got := e.SmoothScore(0.9, t0); got != 0.9 {
		t.Fatalf("first SmoothScore() = %v, want 0.9", got)
	}

	// A large drop blends with the heavy drop weight
	got := e.SmoothScore(0.1, t0)
	avg := (0.9 + 0.1) / 2
	want := 0.9*(1-cfg.SmoothDropWeight) + avg*cfg.SmoothDropWeight
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("SmoothScore() after drop = %v, want %v", got, want)
	}
}

func TestEyeState_ClosurePenalty(t *testing.T) {
	cfg := testTunables()
	e := NewEyeState(&cfg)
	t0 := time.Now()

	e.Update(0.25, t0)
	e.Update(0.05, t0)

	t.Run("no penalty before long threshold", func(t *testing.T) {
		if got := e.ClosurePenalty(t0.Add(time.Second)); got != 1 {
			t.Errorf("ClosurePenalty() = %v, want 1", got)
		}
	})

	t.Run("graduated penalty past threshold", func(t *testing.T) {
		// 1s past the threshold at 30fps: 30 frames * 0.01 = 0.3 penalty
		got := e.ClosurePenalty(t0.Add(2500 * time.Millisecond))
		if diff := got - 0.7; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("ClosurePenalty() = %v, want 0.7", got)
		}
	})

	t.Run("penalty caps at half", func(t *testing.T) {
		if got := e.ClosurePenalty(t0.Add(30 * time.Second)); got != 0.5 {
			t.Errorf("ClosurePenalty() = %v, want 0.5", got)
		}
	})
}

func TestEyeState_Reset(t *testing.T) {
	cfg := testTunables()
	e := NewEyeState(&cfg)
	t0 := time.Now()

	e.Update(0.05, t0)
	e.SmoothScore(0.1, t0)
	e.Reset()

	if !e.IsOpen() {
		t.Error("reset state machine should start open")
	}
	if e.ClosedFor(t0.Add(time.Second)) != 0 {
		t.Error("reset state machine should have no closure")
	}
}
