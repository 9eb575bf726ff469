package geometry

import (
	"math"
	"testing"

	"github.com/ayusman/drishti/internal/landmark"
)

const epsilon = 1e-6

func approx(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestDistance2D(t *testing.T) {
	tests := []struct {
		name string
		a, b landmark.Point
		want float64
	}{
		{"same point", landmark.Point{X: 0.5, Y: 0.5}, landmark.Point{X: 0.5, Y: 0.5}, 0},
		{"3-4-5 triangle", landmark.Point{X: 0, Y: 0}, landmark.Point{X: 0.3, Y: 0.4}, 0.5},
		{"depth ignored", landmark.Point{X: 0, Y: 0, Z: 0.9}, landmark.Point{X: 0.3, Y: 0.4}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance2D(tt.a, tt.b); !approx(got, tt.want) {
				t.Errorf("Distance2D() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistance3D(t *testing.T) {
	a := landmark.Point{X: 0, Y: 0, Z: 0}
	b := landmark.Point{X: 0.2, Y: 0.3, Z: 0.6}
	want := 0.7
	if got := Distance3D(a, b); !approx(got, want) {
		t.Errorf("Distance3D() = %v, want %v", got, want)
	}

	// Without depth it degrades to the 2D distance
	b.Z = 0
	if got, want2d := Distance3D(a, b), Distance2D(a, b); !approx(got, want2d) {
		t.Errorf("Distance3D() without depth = %v, want %v", got, want2d)
	}
}

func TestEyeAspectRatio(t *testing.T) {
	t.Run("open eye", func(t *testing.T) {
		top := landmark.Point{X: 0.43, Y: 0.425}
		bottom := landmark.Point{X: 0.43, Y: 0.455}
		left := landmark.Point{X: 0.40, Y: 0.44}
		right := landmark.Point{X: 0.46, Y: 0.44}

		if got := EyeAspectRatio(top, bottom, left, right); !approx(got, 0.25) {
			t.Errorf("EyeAspectRatio() = %v, want 0.25", got)
		}
	})

	t.Run("degenerate width", func(t *testing.T) {
		p := landmark.Point{X: 0.5, Y: 0.5}
		if got := EyeAspectRatio(p, p, p, p); got != 0 {
			t.Errorf("EyeAspectRatio() with zero width = %v, want 0", got)
		}
	})
}

func TestFaceEAR(t *testing.T) {
	t.Run("open eyes", func(t *testing.T) {
		if got := FaceEAR(landmark.FrontalFace()); !approx(got, 0.25) {
			t.Errorf("FaceEAR() = %v, want 0.25", got)
		}
	})

	t.Run("closed eyes below threshold", func(t *testing.T) {
		got := FaceEAR(landmark.ClosedEyesFace())
		if got >= 0.12 {
			t.Errorf("FaceEAR() for closed eyes = %v, want < 0.12", got)
		}
	})

	t.Run("nil face", func(t *testing.T) {
		if got := FaceEAR(nil); got != 0 {
			t.Errorf("FaceEAR(nil) = %v, want 0", got)
		}
	})
}

func TestFaceMAR(t *testing.T) {
	t.Run("relaxed mouth", func(t *testing.T) {
		got := FaceMAR(landmark.FrontalFace())
		if !approx(got, 0.04/0.12) {
			t.Errorf("FaceMAR() = %v, want %v", got, 0.04/0.12)
		}
	})

	t.Run("tight mouth", func(t *testing.T) {
		got := FaceMAR(landmark.TightMouthFace())
		if got >= 0.22 {
			t.Errorf("FaceMAR() for tight mouth = %v, want < 0.22", got)
		}
	})
}

func TestHeadOffset(t *testing.T) {
	if got := HeadOffset(landmark.FrontalFace()); !approx(got, 0) {
		t.Errorf("HeadOffset() for centered face = %v, want 0", got)
	}
	if got := HeadOffset(nil); got != 1 {
		t.Errorf("HeadOffset(nil) = %v, want 1", got)
	}
}

func TestHeadPoseScore(t *testing.T) {
	t.Run("frontal face scores full", func(t *testing.T) {
		if got := HeadPoseScore(landmark.FrontalFace()); !approx(got, 1.0) {
			t.Errorf("HeadPoseScore() = %v, want 1.0", got)
		}
	})

	t.Run("turned away face scores low", func(t *testing.T) {
		got := HeadPoseScore(landmark.TurnedAwayFace())
		if got >= 0.2 {
			t.Errorf("HeadPoseScore() for turned face = %v, want < 0.2", got)
		}
	})

	t.Run("nil face", func(t *testing.T) {
		if got := HeadPoseScore(nil); got != 0 {
			t.Errorf("HeadPoseScore(nil) = %v, want 0", got)
		}
	})

	t.Run("degenerate cheek width falls back to centering", func(t *testing.T) {
		f := landmark.FrontalFace()
		f.Points[landmark.RightCheek] = f.Points[landmark.LeftCheek]
		if got := HeadPoseScore(f); !approx(got, 1.0) {
			t.Errorf("HeadPoseScore() with degenerate width = %v, want 1.0", got)
		}
	})
}

func TestMouthCurvature(t *testing.T) {
	f := landmark.FrontalFace()
	// Flat mouth: corners level with the lip midline
	if got := MouthCurvature(f); !approx(got, 0) {
		t.Errorf("MouthCurvature() for flat mouth = %v, want 0", got)
	}

	// Smile: corners lifted above the midline
	f.Points[landmark.MouthLeft].Y = 0.58
	f.Points[landmark.MouthRight].Y = 0.58
	if got := MouthCurvature(f); got <= 0 {
		t.Errorf("MouthCurvature() for smile = %v, want > 0", got)
	}
}

func TestEyebrowRaise(t *testing.T) {
	f := landmark.FrontalFace()
	// Brows sit 0.025 above the eye tops on a 0.42 tall face
	resting := EyebrowRaise(f)
	if !approx(resting, 0.025/0.42) {
		t.Errorf("EyebrowRaise() at rest = %v, want %v", resting, 0.025/0.42)
	}

	// Raised brows widen the brow-to-eye gap
	f.Points[landmark.LeftBrow].Y = 0.37
	f.Points[landmark.RightBrow].Y = 0.37
	if got := EyebrowRaise(f); got <= resting {
		t.Errorf("EyebrowRaise() raised = %v, want > %v", got, resting)
	}

	t.Run("nil face", func(t *testing.T) {
		if got := EyebrowRaise(nil); got != 0 {
			t.Errorf("EyebrowRaise(nil) = %v, want 0", got)
		}
	})

	t.Run("degenerate face height", func(t *testing.T) {
		flat := landmark.FrontalFace()
		flat.Points[landmark.Chin] = flat.Points[landmark.Forehead]
		if got := EyebrowRaise(flat); got != 0 {
			t.Errorf("EyebrowRaise() with zero height = %v, want 0", got)
		}
	})
}

func TestVariance(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{"empty", nil, 0},
		{"constant", []float64{1, 1, 1}, 0},
		{"two values", []float64{0, 2}, 1},
		{"spread", []float64{1, 2, 3, 4}, 1.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Variance(tt.samples); !approx(got, tt.want) {
				t.Errorf("Variance(%v) = %v, want %v", tt.samples, got, tt.want)
			}
		})
	}
}
