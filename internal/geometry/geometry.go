// Package geometry provides stateless math over landmark points: distances,
// aspect ratios, head pose estimation and basic statistics. Everything here
// is deterministic and free of per-session state.
package geometry

import (
	"math"

	"github.com/ayusman/drishti/internal/landmark"
)

// Frame center in normalized coordinates.
const (
	CenterX = 0.5
	CenterY = 0.5
)

// Distance2D calculates the Euclidean distance between two points in the
// image plane, ignoring depth.
func Distance2D(a, b landmark.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Distance3D calculates the Euclidean distance between two points including
// the depth term. A missing z is zero, so it degrades to the 2D distance.
func Distance3D(a, b landmark.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// EyeAspectRatio computes the ratio of eye height to eye width:
// |top-bottom| / (2 * |left-right|). Open eyes sit around 0.25; values under
// the closed threshold indicate a shut eye. Returns 0 when the horizontal
// distance is 0.
func EyeAspectRatio(top, bottom, left, right landmark.Point) float64 {
	horizontal := Distance2D(left, right)
	if horizontal == 0 {
		return 0
	}
	vertical := Distance2D(top, bottom)
	return vertical / (2 * horizontal)
}

// MouthAspectRatio computes the vertical/horizontal mouth opening ratio.
// Low values indicate a tight, pressed mouth. Returns 0 when the horizontal
// distance is 0.
func MouthAspectRatio(top, bottom, left, right landmark.Point) float64 {
	horizontal := Distance2D(left, right)
	if horizontal == 0 {
		return 0
	}
	vertical := Distance2D(top, bottom)
	return vertical / horizontal
}

// FaceEAR returns the eye aspect ratio averaged across both eyes.
func FaceEAR(f *landmark.FaceFrame) float64 {
	if f == nil {
		return 0
	}
	left := EyeAspectRatio(
		f.Points[landmark.LeftEyeTop], f.Points[landmark.LeftEyeBottom],
		f.Points[landmark.LeftEyeOuter], f.Points[landmark.LeftEyeInner])
	right := EyeAspectRatio(
		f.Points[landmark.RightEyeTop], f.Points[landmark.RightEyeBottom],
		f.Points[landmark.RightEyeInner], f.Points[landmark.RightEyeOuter])
	return (left + right) / 2
}

// FaceMAR returns the mouth aspect ratio for a face frame.
func FaceMAR(f *landmark.FaceFrame) float64 {
	if f == nil {
		return 0
	}
	return MouthAspectRatio(
		f.Points[landmark.UpperLip], f.Points[landmark.LowerLip],
		f.Points[landmark.MouthLeft], f.Points[landmark.MouthRight])
}

// HeadOffset returns the distance of the nose tip from the frame center.
func HeadOffset(f *landmark.FaceFrame) float64 {
	if f == nil {
		return 1
	}
	return Distance2D(f.Points[landmark.NoseTip], landmark.Point{X: CenterX, Y: CenterY})
}

// HeadPoseScore estimates how directly the face is oriented at the camera,
// in [0,1]. It blends (a) how centered the nose tip is relative to the frame
// center with (b) the nose tip's horizontal position between the face's
// left/right boundary landmarks, which acts as a yaw proxy. When the boundary
// landmarks are degenerate it falls back to the centering estimate alone.
// Returns 0 when landmarks are insufficient.
func HeadPoseScore(f *landmark.FaceFrame) float64 {
	if f == nil {
		return 0
	}

	nose := f.Points[landmark.NoseTip]
	centering := 1 - clamp01(Distance2D(nose, landmark.Point{X: CenterX, Y: CenterY})/0.5)

	left := f.Points[landmark.LeftCheek]
	right := f.Points[landmark.RightCheek]
	width := right.X - left.X
	if width < 1e-6 {
		return centering
	}

	// A frontal face has the nose tip halfway between the cheek boundaries.
	ratio := (nose.X - left.X) / width
	rotation := 1 - clamp01(math.Abs(ratio-0.5)*2)

	return 0.5*centering + 0.5*rotation
}

// MouthCurvature returns a smile proxy: how far the mouth corners sit above
// the lip midline, normalized by mouth width. Positive values indicate
// upturned corners.
func MouthCurvature(f *landmark.FaceFrame) float64 {
	if f == nil {
		return 0
	}
	left := f.Points[landmark.MouthLeft]
	right := f.Points[landmark.MouthRight]
	width := Distance2D(left, right)
	if width == 0 {
		return 0
	}
	midY := (f.Points[landmark.UpperLip].Y + f.Points[landmark.LowerLip].Y) / 2
	cornerY := (left.Y + right.Y) / 2
	return (midY - cornerY) / width
}

// EyebrowRaise returns the brow-to-eye vertical distance normalized by face
// height, averaged across both brows. Higher values indicate raised brows.
func EyebrowRaise(f *landmark.FaceFrame) float64 {
	if f == nil {
		return 0
	}
	faceHeight := f.Points[landmark.Chin].Y - f.Points[landmark.Forehead].Y
	if faceHeight <= 0 {
		return 0
	}
	left := f.Points[landmark.LeftEyeTop].Y - f.Points[landmark.LeftBrow].Y
	right := f.Points[landmark.RightEyeTop].Y - f.Points[landmark.RightBrow].Y
	return ((left + right) / 2) / faceHeight
}

// Variance computes the population variance of a numeric sequence.
// Returns 0 for empty input.
func Variance(samples []float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(n)

	var sq float64
	for _, s := range samples {
		d := s - mean
		sq += d * d
	}
	return sq / float64(n)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
