// Package landmark provides the boundary types between the external landmark
// tracker and the analysis engine: normalized face and hand landmark frames.
package landmark

// Face mesh landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	NoseTip        = 1
	NoseBridge     = 168
	Forehead       = 10
	Chin           = 152
	LeftEyeOuter   = 33
	LeftEyeInner   = 133
	LeftEyeTop     = 159
	LeftEyeBottom  = 145
	RightEyeInner  = 362
	RightEyeOuter  = 263
	RightEyeTop    = 386
	RightEyeBottom = 374
	LeftBrow       = 105
	RightBrow      = 334
	MouthLeft      = 61
	MouthRight     = 291
	UpperLip       = 13
	LowerLip       = 14
	LeftCheek      = 234
	RightCheek     = 454

	// NumFaceLandmarks is the size of a complete MediaPipe face mesh frame.
	NumFaceLandmarks = 468
)

// Hand landmark indices following MediaPipe convention.
const (
	Wrist            = 0
	ThumbTip         = 4
	IndexTip         = 8
	MiddleTip        = 12
	RingTip          = 16
	PinkyTip         = 20
	NumHandLandmarks = 21
)

// Point represents a single landmark with coordinates normalized to [0,1]
// relative to the frame dimensions. Z is a depth-ish value and may be zero
// when the tracker does not report it.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FaceFrame is one frame of face mesh landmarks. A frame is only constructed
// through NewFaceFrame, so consumers may index the full mesh without bounds
// checks.
type FaceFrame struct {
	Points [NumFaceLandmarks]Point `json:"points"`
	Score  float64                 `json:"score"`
}

// HandFrame is one frame of hand landmarks for a single detected hand.
type HandFrame struct {
	Points     [NumHandLandmarks]Point `json:"points"`
	Handedness string                  `json:"handedness"` // "Left" or "Right"
	Score      float64                 `json:"score"`
}

// NewFaceFrame validates a raw landmark payload at the ingress boundary.
// Payloads with fewer than 468 points are treated identically to "no face
// detected" and yield nil; extra points are ignored.
func NewFaceFrame(points []Point) *FaceFrame {
	if len(points) < NumFaceLandmarks {
		return nil
	}
	f := &FaceFrame{}
	copy(f.Points[:], points[:NumFaceLandmarks])
	return f
}

// NewHandFrame validates a raw hand payload. Payloads with fewer than 21
// points yield nil.
func NewHandFrame(points []Point, handedness string) *HandFrame {
	if len(points) < NumHandLandmarks {
		return nil
	}
	h := &HandFrame{Handedness: handedness}
	copy(h.Points[:], points[:NumHandLandmarks])
	return h
}
