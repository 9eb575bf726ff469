package analysis

import (
	"math"

	"github.com/ayusman/drishti/internal/landmark"
)

// Classifier combines current-frame geometry with the behavior tracker's
// windowed statistics into one of the three expressions. Three competing
// scores are accumulated each frame and resolved by fixed priority rules;
// the caller then passes the raw result through the tracker's dwell gate.
type Classifier struct {
	cfg      *Tunables
	behavior *BehaviorTracker
	eyes     *EyeState
}

// NewClassifier creates a classifier bound to a session's trackers.
func NewClassifier(cfg *Tunables, behavior *BehaviorTracker, eyes *EyeState) *Classifier {
	return &Classifier{cfg: cfg, behavior: behavior, eyes: eyes}
}

// classification carries the per-frame accumulator values alongside the
// resolved expression, mainly for tests and debugging.
type classification struct {
	expression Expression
	confidence int

	nervous      float64
	distracted   float64
	confident    float64
	indicators   int
	strongEnough bool
}

// Classify resolves the three accumulators for the current frame. The caller
// is responsible for the dwell gate and for the no-face case (no expression,
// zero confidence).
func (c *Classifier) Classify(m frameMetrics) (Expression, int) {
	r := c.classify(m)
	return r.expression, r.confidence
}

func (c *Classifier) classify(m frameMetrics) classification {
	ind := c.confidentIndicators(m)

	nervous := c.nervousScore(m, ind)
	distracted := c.distractedScore(m)
	confident := c.confidentScore(m, ind)

	r := classification{
		nervous:    nervous,
		distracted: distracted,
		confident:  confident,
		indicators: ind.count(),
	}

	cfg := c.cfg
	switch {
	case distracted > cfg.DistractionThreshold:
		// Distraction overrides everything else.
		r.expression = ExpressionDistracted
		r.confidence = clampScore(int(math.Round(50 + distracted/2)))

	case confident > cfg.ConfidentThreshold:
		// Confident wins outright only when its conditions are strong
		// enough to override a simultaneous nervous signal: all four
		// indicators, or three including a stable head.
		r.strongEnough = ind.count() == 4 || (ind.count() >= 3 && ind.stableHead)
		if r.strongEnough || nervous <= cfg.NervousThreshold {
			r.expression = ExpressionConfident
			r.confidence = clampScore(int(math.Round(confident + 30)))
		} else {
			r.expression = ExpressionNervous
			r.confidence = clampScore(int(math.Round(50 + nervous/2)))
		}

	case nervous > cfg.NervousThreshold:
		r.expression = ExpressionNervous
		r.confidence = clampScore(int(math.Round(50 + nervous/2)))

	default:
		// Positive-baseline policy: a tracked face with no strong adverse
		// indicator reads as confident.
		r.expression = ExpressionConfident
		r.confidence = clampScore(40 + 15*ind.count())
	}

	return r
}

// indicators is the set of "clearly confident" conditions used both for the
// confident accumulator and for suppressing the nervous score.
type indicators struct {
	stableHead    bool
	excellentPose bool
	normalBlink   bool
	relaxedMouth  bool
}

func (i indicators) count() int {
	n := 0
	if i.stableHead {
		n++
	}
	if i.excellentPose {
		n++
	}
	if i.normalBlink {
		n++
	}
	if i.relaxedMouth {
		n++
	}
	return n
}

func (c *Classifier) confidentIndicators(m frameMetrics) indicators {
	cfg := c.cfg
	rate := c.behavior.BlinkRate()
	return indicators{
		stableHead: c.behavior.HeadSampleCount() >= 5 &&
			c.behavior.HeadVariance() < cfg.HeadStableVariance,
		excellentPose: m.headPose > cfg.ExcellentHeadPose,
		normalBlink:   rate >= cfg.NormalBlinkMin && rate <= cfg.NormalBlinkMax,
		relaxedMouth:  m.mar > cfg.RelaxedMAR,
	}
}

// nervousScore accumulates nervousness contributions, then suppresses the
// total on a graduated scale when confident indicators are simultaneously
// present, so an isolated gesture does not override a clearly confident
// state.
func (c *Classifier) nervousScore(m frameMetrics, ind indicators) float64 {
	cfg := c.cfg
	var s float64

	if c.behavior.BlinkRate() > cfg.NormalBlinkMax {
		s += cfg.NervousBlinkWeight
	}
	if m.mar < cfg.MouthTightMAR {
		s += cfg.NervousMouthWeight
	}
	if c.behavior.IsMouthFrequentlyTight() {
		s += cfg.NervousMouthFreq
	}
	if mv := c.behavior.MouthVariance(); mv > cfg.MouthVarianceMin && mv < cfg.MouthVarianceMax {
		s += cfg.NervousMouthVarWeight
	}
	if m.face.Points[landmark.NoseTip].Y > cfg.HeadDownY {
		s += cfg.NervousHeadDownWeight
	}
	if c.behavior.IsHeadFrequentlyDown() {
		s += cfg.NervousHeadDownFreq
	}
	if m.handNearFace {
		s += cfg.NervousHandWeight
		if m.mar < cfg.MouthTightMAR {
			s += cfg.NervousHandComboBonus
		}
	}
	if hv := c.behavior.HeadVariance(); hv > cfg.MicroMoveVarMin && hv < cfg.MicroMoveVarMax {
		s += cfg.NervousMicroWeight
	}

	if n := ind.count(); n > 0 && len(cfg.ConfidentSuppression) > 0 {
		idx := n - 1
		if idx >= len(cfg.ConfidentSuppression) {
			idx = len(cfg.ConfidentSuppression) - 1
		}
		s *= 1 - cfg.ConfidentSuppression[idx]
	}
	return s
}

func (c *Classifier) distractedScore(m frameMetrics) float64 {
	cfg := c.cfg
	var s float64

	if m.headOffset > cfg.DistractionHeadOffset {
		s += cfg.DistractionOffsetWeight
	}
	if c.behavior.IsHeadFrequentlyAway() {
		s += cfg.DistractionAwayWeight
	}
	if c.behavior.IsHeadFrequentlyDown() {
		s += cfg.DistractionDownWeight
	}
	if c.behavior.HasLongEyeClosures(m.now) {
		s += cfg.DistractionClosures
	}
	if m.headPose < cfg.PoorHeadPose {
		s += cfg.DistractionPoseWeight
	}
	if c.eyes.closedNonBlink(m.now) {
		s += cfg.DistractionClosedEyes
	}
	if m.headPose < cfg.VeryPoorHeadPose {
		s += cfg.DistractionPoseBonus
	}
	return s
}

func (c *Classifier) confidentScore(m frameMetrics, ind indicators) float64 {
	cfg := c.cfg
	var s float64

	if ind.stableHead {
		s += cfg.ConfidentStableWeight
	}
	if ind.normalBlink {
		s += cfg.ConfidentBlinkWeight
	}
	if m.headPose > cfg.GoodHeadPose {
		s += cfg.ConfidentPoseWeight
	}
	if ind.excellentPose {
		s += cfg.ConfidentPoseBonus
	}
	if m.headOffset < cfg.CenteredOffset {
		s += cfg.ConfidentCenterWeight
	}
	if ind.relaxedMouth {
		s += cfg.ConfidentMouthWeight
	}
	if ind.count() >= 3 {
		s += cfg.ConfidentComboBonus
	}
	return s
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
