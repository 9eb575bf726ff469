package landmark

import (
	"gocv.io/x/gocv"
)

// MockTracker is a test implementation of the Tracker interface.
// It allows tests to control the tracking results.
type MockTracker struct {
	face  *FaceFrame
	hands []HandFrame
	err   error
}

// NewMockTracker creates a new MockTracker instance.
func NewMockTracker() *MockTracker {
	return &MockTracker{}
}

// SetFace sets the face frame that will be returned by Track.
func (m *MockTracker) SetFace(face *FaceFrame) {
	m.face = face
}

// SetHands sets the hands that will be returned by Track.
func (m *MockTracker) SetHands(hands []HandFrame) {
	m.hands = hands
}

// SetError sets the error that will be returned by Track.
func (m *MockTracker) SetError(err error) {
	m.err = err
}

// Track returns the pre-configured face, hands or error.
func (m *MockTracker) Track(frame *gocv.Mat) (*FaceFrame, []HandFrame, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.face, m.hands, nil
}

// Close is a no-op for the mock tracker.
func (m *MockTracker) Close() error {
	return nil
}

// FrontalFace returns a preset FaceFrame representing a subject looking
// straight at the camera: nose centered, eyes open (EAR = 0.25), relaxed
// mouth (MAR ~ 0.33). Landmarks the engine does not consume sit at the face
// center.
func FrontalFace() *FaceFrame {
	f := &FaceFrame{Score: 0.95}
	for i := range f.Points {
		f.Points[i] = Point{X: 0.5, Y: 0.5}
	}

	f.Points[NoseTip] = Point{X: 0.5, Y: 0.5}
	f.Points[NoseBridge] = Point{X: 0.5, Y: 0.42}
	f.Points[Forehead] = Point{X: 0.5, Y: 0.3}
	f.Points[Chin] = Point{X: 0.5, Y: 0.72}
	f.Points[LeftCheek] = Point{X: 0.32, Y: 0.5}
	f.Points[RightCheek] = Point{X: 0.68, Y: 0.5}

	// Left eye: 0.06 wide, 0.03 tall
	f.Points[LeftEyeOuter] = Point{X: 0.40, Y: 0.44}
	f.Points[LeftEyeInner] = Point{X: 0.46, Y: 0.44}
	f.Points[LeftEyeTop] = Point{X: 0.43, Y: 0.425}
	f.Points[LeftEyeBottom] = Point{X: 0.43, Y: 0.455}

	// Right eye mirrors the left
	f.Points[RightEyeInner] = Point{X: 0.54, Y: 0.44}
	f.Points[RightEyeOuter] = Point{X: 0.60, Y: 0.44}
	f.Points[RightEyeTop] = Point{X: 0.57, Y: 0.425}
	f.Points[RightEyeBottom] = Point{X: 0.57, Y: 0.455}

	f.Points[LeftBrow] = Point{X: 0.43, Y: 0.40}
	f.Points[RightBrow] = Point{X: 0.57, Y: 0.40}

	// Mouth: 0.12 wide, 0.04 open
	f.Points[MouthLeft] = Point{X: 0.44, Y: 0.60}
	f.Points[MouthRight] = Point{X: 0.56, Y: 0.60}
	f.Points[UpperLip] = Point{X: 0.5, Y: 0.58}
	f.Points[LowerLip] = Point{X: 0.5, Y: 0.62}

	return f
}

// ClosedEyesFace returns a frontal face with both eyes shut (EAR well below
// the closed threshold).
func ClosedEyesFace() *FaceFrame {
	f := FrontalFace()
	f.Points[LeftEyeTop] = Point{X: 0.43, Y: 0.4395}
	f.Points[LeftEyeBottom] = Point{X: 0.43, Y: 0.4405}
	f.Points[RightEyeTop] = Point{X: 0.57, Y: 0.4395}
	f.Points[RightEyeBottom] = Point{X: 0.57, Y: 0.4405}
	return f
}

// TightMouthFace returns a frontal face with a pressed, nearly closed mouth.
func TightMouthFace() *FaceFrame {
	f := FrontalFace()
	f.Points[UpperLip] = Point{X: 0.5, Y: 0.598}
	f.Points[LowerLip] = Point{X: 0.5, Y: 0.602}
	return f
}

// HeadDownFace returns a face shifted low in the frame with the nose tip
// below the head-down threshold and a downward pitch.
func HeadDownFace() *FaceFrame {
	f := FrontalFace()
	shift := 0.2
	for i := range f.Points {
		f.Points[i].Y += shift
	}
	// Pitch the face down: nose bridge slides toward the chin.
	f.Points[NoseBridge].Y += 0.1
	return f
}

// TurnedAwayFace returns a face offset far from the frame center with the
// nose rotated toward the left cheek boundary.
func TurnedAwayFace() *FaceFrame {
	f := FrontalFace()
	for i := range f.Points {
		f.Points[i].X -= 0.3
	}
	// Rotation proxy: nose tip close to the left face boundary.
	f.Points[NoseTip].X = f.Points[LeftCheek].X + 0.02
	return f
}

// RestingHand returns a hand frame far from the face, near the bottom corner
// of the frame.
func RestingHand() HandFrame {
	h := HandFrame{Handedness: "Right", Score: 0.9}
	for i := range h.Points {
		h.Points[i] = Point{X: 0.85, Y: 0.9}
	}
	h.Points[Wrist] = Point{X: 0.85, Y: 0.95}
	h.Points[IndexTip] = Point{X: 0.82, Y: 0.86}
	return h
}

// HandNearFace returns a hand frame hovering next to the nose, within the
// hand-near-face proximity threshold.
func HandNearFace() HandFrame {
	h := HandFrame{Handedness: "Right", Score: 0.9}
	for i := range h.Points {
		h.Points[i] = Point{X: 0.55, Y: 0.56}
	}
	h.Points[Wrist] = Point{X: 0.58, Y: 0.62}
	h.Points[IndexTip] = Point{X: 0.52, Y: 0.52}
	return h
}
