package analysis

import (
	"math"
	"time"

	"github.com/ayusman/drishti/internal/geometry"
	"github.com/ayusman/drishti/internal/landmark"
)

// frameMetrics holds the per-frame derived geometry shared by the score
// calculators and the classifier, computed once at the top of ProcessFrame.
type frameMetrics struct {
	face      *landmark.FaceFrame
	hands     []landmark.HandFrame
	prevFace  *landmark.FaceFrame
	prevHands []landmark.HandFrame

	ear        float64
	mar        float64
	headPose   float64
	headOffset float64

	handNearFace bool
	now          time.Time
}

// newFrameMetrics derives the shared geometry for one frame. The face frame
// may be nil.
func newFrameMetrics(cfg *Tunables, face *landmark.FaceFrame, hands []landmark.HandFrame,
	prevFace *landmark.FaceFrame, prevHands []landmark.HandFrame, now time.Time) frameMetrics {

	m := frameMetrics{
		face:      face,
		hands:     hands,
		prevFace:  prevFace,
		prevHands: prevHands,
		now:       now,
	}
	if face == nil {
		return m
	}

	m.ear = geometry.FaceEAR(face)
	m.mar = geometry.FaceMAR(face)
	m.headPose = geometry.HeadPoseScore(face)
	m.headOffset = geometry.HeadOffset(face)
	m.handNearFace = handNearFace(cfg, face, hands)
	return m
}

// handNearFace reports whether any hand landmark sits within the proximity
// threshold of the nose tip.
func handNearFace(cfg *Tunables, face *landmark.FaceFrame, hands []landmark.HandFrame) bool {
	if face == nil {
		return false
	}
	nose := face.Points[landmark.NoseTip]
	for i := range hands {
		for _, p := range hands[i].Points {
			if geometry.Distance3D(p, nose) < cfg.HandNearFaceDistance {
				return true
			}
		}
	}
	return false
}

// Scorer computes the four per-frame scores. It consumes the eye state
// machine for smoothing and closure handling.
type Scorer struct {
	cfg  *Tunables
	eyes *EyeState
}

// NewScorer creates a scorer bound to a session's eye state machine.
func NewScorer(cfg *Tunables, eyes *EyeState) *Scorer {
	return &Scorer{cfg: cfg, eyes: eyes}
}

// EyeContact computes the eye-contact score (0-100): a weighted blend of
// head pose, gaze symmetry and normalized eye openness. During a non-blink
// closure the head and gaze weights are multiplied down and the result is
// capped aggressively; a blink carries no penalty. The blended value runs
// through the eye state machine's smoothing and long-closure penalty.
func (s *Scorer) EyeContact(m frameMetrics) int {
	if m.face == nil {
		return 0
	}

	earNorm := clampUnit(m.ear / s.cfg.OpenEAR)
	gaze := gazeSymmetry(m.face)

	headWeight := s.cfg.EyeContactHeadWeight
	gazeWeight := s.cfg.EyeContactGazeWeight
	closed := s.eyes.closedNonBlink(m.now)
	if closed {
		headWeight *= s.cfg.ClosedHeadFactor
		gazeWeight *= s.cfg.ClosedGazeFactor
	}

	raw := m.headPose*headWeight + gaze*gazeWeight + earNorm*s.cfg.EyeContactOpennessWeight

	smoothed := s.eyes.SmoothScore(raw, m.now)
	smoothed *= s.eyes.ClosurePenalty(m.now)

	score := toScore(smoothed)
	if closed && score > s.cfg.ClosedEyeContactCap {
		score = s.cfg.ClosedEyeContactCap
	}
	return score
}

// Engagement computes the engagement score (0-100) from face presence,
// eye openness and head pose. Presence is binary: 1.0 whenever a face is
// tracked.
func (s *Scorer) Engagement(m frameMetrics) int {
	if m.face == nil {
		return 0
	}
	earNorm := clampUnit(m.ear / s.cfg.OpenEAR)
	raw := s.cfg.EngagementPresenceWeight*1.0 +
		s.cfg.EngagementOpennessWeight*earNorm +
		s.cfg.EngagementHeadWeight*m.headPose
	return toScore(raw)
}

// Attention computes the attention score (0-100): mostly engagement, plus a
// stillness bonus from the nose-tip displacement against the previous frame.
func (s *Scorer) Attention(m frameMetrics, engagement int) int {
	if m.face == nil {
		return 0
	}
	bonus := s.headStillness(m)
	raw := s.cfg.AttentionEngagementPart*float64(engagement)/100 +
		s.cfg.AttentionStabilityPart*bonus
	return toScore(raw)
}

// Stability computes the physical stability score (0-100) from head and hand
// displacement between consecutive frames. Absence of hands contributes a
// neutral value rather than a penalty; absence of a face yields the neutral
// default.
func (s *Scorer) Stability(m frameMetrics) int {
	if m.face == nil {
		return toScore(s.cfg.NeutralHandStability)
	}

	headStab := s.headStillness(m)
	handStab := s.handStillness(m)

	raw := s.cfg.StabilityHeadWeight*headStab + s.cfg.StabilityHandWeight*handStab
	return toScore(raw)
}

// headStillness maps the nose-tip displacement since the previous frame onto
// [0,1], linearly reaching zero at the movement cap. With no previous frame
// there is no movement evidence, so the bonus is full.
func (s *Scorer) headStillness(m frameMetrics) float64 {
	if m.prevFace == nil {
		return 1
	}
	disp := geometry.Distance2D(
		m.face.Points[landmark.NoseTip],
		m.prevFace.Points[landmark.NoseTip])
	return 1 - clampUnit(disp/s.cfg.MovementCap)
}

// handStillness averages the matched-landmark displacement across hands
// present in both frames. Hands are matched by handedness, falling back to
// position in the slice.
func (s *Scorer) handStillness(m frameMetrics) float64 {
	if len(m.hands) == 0 || len(m.prevHands) == 0 {
		return s.cfg.NeutralHandStability
	}

	var total float64
	var matched int
	for i := range m.hands {
		prev := matchHand(&m.hands[i], m.prevHands, i)
		if prev == nil {
			continue
		}
		var sum float64
		for j := 0; j < landmark.NumHandLandmarks; j++ {
			sum += geometry.Distance2D(m.hands[i].Points[j], prev.Points[j])
		}
		total += sum / landmark.NumHandLandmarks
		matched++
	}
	if matched == 0 {
		return s.cfg.NeutralHandStability
	}

	avg := total / float64(matched)
	return 1 - clampUnit(avg/s.cfg.MovementCap)
}

func matchHand(h *landmark.HandFrame, prev []landmark.HandFrame, idx int) *landmark.HandFrame {
	for i := range prev {
		if prev[i].Handedness != "" && prev[i].Handedness == h.Handedness {
			return &prev[i]
		}
	}
	if idx < len(prev) {
		return &prev[idx]
	}
	return nil
}

// gazeSymmetry estimates gaze directness from eye-center alignment: how level
// the two eye centers are and how symmetric they sit about the nose.
func gazeSymmetry(f *landmark.FaceFrame) float64 {
	lc := eyeCenter(f, landmark.LeftEyeOuter, landmark.LeftEyeInner)
	rc := eyeCenter(f, landmark.RightEyeInner, landmark.RightEyeOuter)
	nose := f.Points[landmark.NoseTip]

	tilt := math.Abs(lc.Y - rc.Y)
	asym := math.Abs((lc.X+rc.X)/2 - nose.X)
	return 1 - clampUnit(tilt*10+asym*5)
}

func eyeCenter(f *landmark.FaceFrame, a, b int) landmark.Point {
	return landmark.Point{
		X: (f.Points[a].X + f.Points[b].X) / 2,
		Y: (f.Points[a].Y + f.Points[b].Y) / 2,
	}
}

// toScore converts a 0..1 value to a clamped 0..100 integer score.
func toScore(v float64) int {
	score := int(math.Round(v * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
