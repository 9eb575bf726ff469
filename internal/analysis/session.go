package analysis

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/drishti/internal/geometry"
	"github.com/ayusman/drishti/internal/landmark"
)

// Flusher receives a per-question aggregate when sampling stops. The report
// package implements it against the persistence API and the local store.
type Flusher interface {
	Flush(sessionID string, agg Aggregate) error
}

// Session is the per-session analysis context. It owns every tracker the
// engine needs, so no state leaks across sessions: create one at session
// start, feed it frames, and discard it at session stop.
//
// ProcessFrame is driven synchronously by the frame loop and is not called
// concurrently; the mutex only protects the fields shared with the object
// detection monitor and the live score feed.
type Session struct {
	ID        string
	StartedAt time.Time

	cfg        Tunables
	eyes       *EyeState
	behavior   *BehaviorTracker
	scorer     *Scorer
	classifier *Classifier
	cheat      *CheatDetector
	sampler    *Sampler
	flusher    Flusher
	log        *logrus.Entry

	prevFace  *landmark.FaceFrame
	prevHands []landmark.HandFrame

	// gatedConfidence is the confidence computed when the currently reported
	// expression last won the dwell gate. While a proposed transition is
	// pending, the reported confidence keeps describing the reported state.
	gatedConfidence int

	mu     sync.RWMutex
	latest ScoreSample
}

// NewSession creates a fresh analysis session with its own tracker state.
func NewSession(cfg Tunables, flusher Flusher) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		cfg:       cfg,
		flusher:   flusher,
	}
	s.eyes = NewEyeState(&s.cfg)
	s.behavior = NewBehaviorTracker(&s.cfg)
	s.scorer = NewScorer(&s.cfg, s.eyes)
	s.classifier = NewClassifier(&s.cfg, s.behavior, s.eyes)
	s.cheat = NewCheatDetector(&s.cfg)
	s.sampler = NewSampler(&s.cfg)
	s.log = logrus.WithField("session", s.ID)
	return s
}

// ProcessFrame runs the full per-frame analysis and returns the resulting
// sample. A nil face frame is the expected steady state between detections,
// not an error: scores degrade to zero (stability to its neutral default)
// and no expression is reported.
func (s *Session) ProcessFrame(face *landmark.FaceFrame, hands []landmark.HandFrame, now time.Time) ScoreSample {
	cheatState := s.cheat.Update(face, hands, now)

	if face == nil {
		sample := ScoreSample{
			Stability:    toScore(s.cfg.NeutralHandStability),
			FaceDetected: false,
			CheatStatus:  cheatState.Status,
			Timestamp:    now,
		}
		s.prevFace = nil
		s.prevHands = nil
		s.setLatest(sample)
		return sample
	}

	ear := geometry.FaceEAR(face)
	ev := s.eyes.Update(ear, now)
	if ev.JustClosed {
		s.behavior.RecordClosureStart(now)
	}
	if ev.Finalized {
		s.behavior.RecordClosureEnd(now)
		if ev.Kind == ClosureBlink {
			s.behavior.RecordBlink(now)
		}
	}

	nose := face.Points[landmark.NoseTip]
	s.behavior.RecordHead(nose.X, nose.Y, now)
	s.behavior.RecordMouth(geometry.FaceMAR(face), now)
	s.behavior.Prune(now)

	m := newFrameMetrics(&s.cfg, face, hands, s.prevFace, s.prevHands, now)

	eyeContact := safeScore(func() int { return s.scorer.EyeContact(m) }, 0)
	engagement := safeScore(func() int { return s.scorer.Engagement(m) }, 0)
	attention := safeScore(func() int { return s.scorer.Attention(m, engagement) }, 0)
	stability := safeScore(func() int { return s.scorer.Stability(m) }, toScore(s.cfg.NeutralHandStability))

	proposed, confidence := s.classifyFrame(m)
	expression := s.behavior.UpdateState(proposed, now)
	if expression == proposed {
		s.gatedConfidence = confidence
	}

	sample := ScoreSample{
		EyeContact:           eyeContact,
		Engagement:           engagement,
		Attention:            attention,
		Stability:            stability,
		Expression:           expression,
		ExpressionConfidence: s.gatedConfidence,
		FaceDetected:         true,
		CheatStatus:          cheatState.Status,
		Timestamp:            now,
	}

	s.sampler.Add(sample, now)

	s.prevFace = face
	s.prevHands = hands
	s.setLatest(sample)
	return sample
}

// classifyFrame isolates classifier panics: an unexpected computation error
// must never abort the frame loop, so it degrades to the current gated state
// with zero confidence.
func (s *Session) classifyFrame(m frameMetrics) (expr Expression, confidence int) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("panic", r).Error("expression classification failed")
			expr, _ = s.behavior.Current()
			confidence = 0
		}
	}()
	return s.classifier.Classify(m)
}

// StartQuestion begins sampling for a question. If sampling is already
// running for a different question, the previous accumulator is flushed
// first so it never spans two question indices.
func (s *Session) StartQuestion(questionIndex int, now time.Time) {
	if active, idx := s.sampler.Active(); active && idx != questionIndex {
		s.flushQuestion(now)
	}
	s.sampler.Start(questionIndex)
	s.log.WithField("question", questionIndex).Info("sampling started")
}

// StopQuestion stops sampling and flushes the accumulator.
func (s *Session) StopQuestion(now time.Time) *Aggregate {
	return s.flushQuestion(now)
}

func (s *Session) flushQuestion(now time.Time) *Aggregate {
	agg := s.sampler.Stop(now)
	if agg == nil {
		return nil
	}
	if s.flusher != nil {
		if err := s.flusher.Flush(s.ID, *agg); err != nil {
			// Persistence failures are logged, never retried synchronously.
			s.log.WithError(err).WithField("question", agg.QuestionIndex).
				Error("failed to flush question aggregate")
		}
	}
	s.log.WithFields(logrus.Fields{
		"question": agg.QuestionIndex,
		"samples":  agg.SampleCount,
		"dominant": agg.DominantExpression,
	}).Info("question aggregate flushed")
	return agg
}

// RunningAggregate returns the live aggregate for the question being
// sampled, for display only.
func (s *Session) RunningAggregate(now time.Time) *Aggregate {
	return s.sampler.Running(now)
}

// SetPhoneDetected feeds an out-of-band phone detection result into the
// cheating state. Safe to call from the monitor goroutine.
func (s *Session) SetPhoneDetected(detected bool) {
	s.cheat.SetPhoneDetected(detected)
}

// Cheating returns the current cheating state.
func (s *Session) Cheating() CheatingState {
	return s.cheat.State()
}

// Latest returns the most recent processed sample. Safe for concurrent use
// by the live score feed.
func (s *Session) Latest() ScoreSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *Session) setLatest(sample ScoreSample) {
	s.mu.Lock()
	s.latest = sample
	s.mu.Unlock()
}

// Close flushes any in-flight question and clears all tracker state.
func (s *Session) Close(now time.Time) {
	s.flushQuestion(now)
	s.eyes.Reset()
	s.behavior.Reset()
	s.cheat.Reset()
	s.log.Info("session closed")
}

// safeScore catches panics at the per-metric boundary and substitutes the
// metric's safe default.
func safeScore(fn func() int, def int) (score int) {
	defer func() {
		if recover() != nil {
			score = def
		}
	}()
	return fn()
}
