package analysis

import "time"

// Sampler collects throttled score samples scoped to one interview question
// and aggregates them on demand. It never spans two question indices: the
// accumulator is cleared on every start and flushed on every stop.
type Sampler struct {
	cfg *Tunables

	active        bool
	questionIndex int
	samples       []ScoreSample
	lastSampleAt  time.Time
}

// NewSampler creates an inactive sampler.
func NewSampler(cfg *Tunables) *Sampler {
	return &Sampler{cfg: cfg, questionIndex: -1}
}

// Active reports whether sampling is currently running and for which
// question.
func (s *Sampler) Active() (bool, int) {
	return s.active, s.questionIndex
}

// Start begins collecting for the given question: the accumulator is cleared
// and the throttle reset so the next eligible frame samples immediately.
func (s *Sampler) Start(questionIndex int) {
	s.active = true
	s.questionIndex = questionIndex
	s.samples = s.samples[:0]
	s.lastSampleAt = time.Time{}
}

// Add offers a processed frame sample. It is appended only while sampling is
// active, at most once per throttle interval, and only when a face was
// detected and an expression was computed. Returns whether the sample was
// kept.
func (s *Sampler) Add(sample ScoreSample, now time.Time) bool {
	if !s.active {
		return false
	}
	if !sample.FaceDetected || sample.Expression == "" {
		return false
	}
	interval := time.Duration(s.cfg.SampleIntervalMs) * time.Millisecond
	if !s.lastSampleAt.IsZero() && now.Sub(s.lastSampleAt) < interval {
		return false
	}

	s.samples = append(s.samples, sample)
	s.lastSampleAt = now
	return true
}

// Stop ends collection and returns the final aggregate, or nil when the
// accumulator is empty. The accumulator is cleared either way.
func (s *Sampler) Stop(now time.Time) *Aggregate {
	if !s.active {
		return nil
	}
	s.active = false

	if len(s.samples) == 0 {
		s.samples = s.samples[:0]
		return nil
	}

	agg := aggregate(s.samples, s.questionIndex, now)
	s.samples = s.samples[:0]
	return &agg
}

// Running returns the aggregate over the samples collected so far, for live
// display. Returns nil when nothing has been collected.
func (s *Sampler) Running(now time.Time) *Aggregate {
	if len(s.samples) == 0 {
		return nil
	}
	agg := aggregate(s.samples, s.questionIndex, now)
	return &agg
}

// aggregate averages the per-metric scores and picks the most frequent
// expression. Samples without a detected face are excluded; with no valid
// samples the aggregate is all-zero with no dominant expression. Expression
// ties break in enumeration order: confident, nervous, distracted.
func aggregate(samples []ScoreSample, questionIndex int, now time.Time) Aggregate {
	agg := Aggregate{
		QuestionIndex: questionIndex,
		Timestamp:     now,
	}

	var eye, eng, att, stab, conf int
	counts := make(map[Expression]int)
	valid := 0
	for _, s := range samples {
		if !s.FaceDetected {
			continue
		}
		eye += s.EyeContact
		eng += s.Engagement
		att += s.Attention
		stab += s.Stability
		conf += s.ExpressionConfidence
		if s.Expression != "" {
			counts[s.Expression]++
		}
		valid++
	}

	if valid == 0 {
		return agg
	}

	agg.EyeContact = eye / valid
	agg.Engagement = eng / valid
	agg.Attention = att / valid
	agg.Stability = stab / valid
	agg.ExpressionConfidence = conf / valid
	agg.SampleCount = valid

	best := 0
	for _, expr := range []Expression{ExpressionConfident, ExpressionNervous, ExpressionDistracted} {
		if counts[expr] > best {
			best = counts[expr]
			agg.DominantExpression = expr
		}
	}
	return agg
}
