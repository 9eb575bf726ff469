package analysis

import (
	"time"

	"github.com/ayusman/drishti/internal/geometry"
)

// BehaviorTracker owns the rolling 10-second histories of blink timestamps,
// head positions, eye-closure intervals and mouth-ratio samples, and derives
// the windowed statistics feeding the expression classifier. It also holds
// the hysteresis-gated classification state. One instance exists per
// analysis session.
type BehaviorTracker struct {
	cfg *Tunables

	blinks   *instantSeries
	heads    *positionSeries
	closures *intervalSeries
	mouths   *valueSeries

	current      Expression
	currentSince time.Time

	candidate      Expression
	candidateSince time.Time
}

// NewBehaviorTracker creates a tracker with empty histories and the
// confident baseline as the initial classification.
func NewBehaviorTracker(cfg *Tunables) *BehaviorTracker {
	window := time.Duration(cfg.HistoryWindowMs) * time.Millisecond
	return &BehaviorTracker{
		cfg:      cfg,
		blinks:   newInstantSeries(window, cfg.HistoryMaxSamples),
		heads:    newPositionSeries(window, cfg.HistoryMaxSamples),
		closures: newIntervalSeries(window, cfg.HistoryMaxSamples),
		mouths:   newValueSeries(window, cfg.HistoryMaxSamples),
		current:  ExpressionConfident,
	}
}

// RecordBlink adds a blink timestamp to the history.
func (b *BehaviorTracker) RecordBlink(now time.Time) {
	b.blinks.add(now)
}

// RecordHead adds a head-position sample (nose tip, normalized).
func (b *BehaviorTracker) RecordHead(x, y float64, now time.Time) {
	b.heads.add(x, y, now)
}

// RecordClosureStart opens a new eye-closure interval.
func (b *BehaviorTracker) RecordClosureStart(start time.Time) {
	b.closures.open(start)
}

// RecordClosureEnd finalizes the open eye-closure interval, if any.
func (b *BehaviorTracker) RecordClosureEnd(end time.Time) {
	b.closures.closeLast(end)
}

// RecordMouth adds a mouth-aspect-ratio sample.
func (b *BehaviorTracker) RecordMouth(mar float64, now time.Time) {
	b.mouths.add(mar, now)
}

// Prune evicts samples outside the trailing window. Called once per frame.
func (b *BehaviorTracker) Prune(now time.Time) {
	b.blinks.prune(now)
	b.heads.prune(now)
	b.closures.prune(now)
	b.mouths.prune(now)
}

// BlinkRate returns blinks per minute derived from blink-timestamp spacing
// over the trailing window. With fewer than 2 samples it returns the
// population-normal default.
func (b *BehaviorTracker) BlinkRate() float64 {
	n := b.blinks.len()
	if n < 2 {
		return b.cfg.DefaultBlinkRate
	}
	span := b.blinks.items[n-1].Sub(b.blinks.items[0])
	if span <= 0 {
		return b.cfg.DefaultBlinkRate
	}
	return float64(n-1) / span.Minutes()
}

// IsHeadFrequentlyAway reports whether the fraction of head samples whose
// offset from frame center exceeds the away threshold is above the frequency
// cutoff.
func (b *BehaviorTracker) IsHeadFrequentlyAway() bool {
	frac := b.heads.fraction(func(h headSample) bool {
		dx := h.x - geometry.CenterX
		dy := h.y - geometry.CenterY
		return dx*dx+dy*dy > b.cfg.HeadAwayOffset*b.cfg.HeadAwayOffset
	})
	return frac > b.cfg.FrequentFraction
}

// IsHeadFrequentlyDown reports whether the fraction of head samples below the
// head-down line is above the frequency cutoff.
func (b *BehaviorTracker) IsHeadFrequentlyDown() bool {
	frac := b.heads.fraction(func(h headSample) bool {
		return h.y > b.cfg.HeadDownY
	})
	return frac > b.cfg.FrequentFraction
}

// HasLongEyeClosures reports whether any closure interval in the window
// exceeds the long-closure history threshold.
func (b *BehaviorTracker) HasLongEyeClosures(now time.Time) bool {
	d := time.Duration(b.cfg.LongClosureHistoryMs) * time.Millisecond
	return b.closures.anyLongerThan(d, now)
}

// IsMouthFrequentlyTight reports whether the fraction of mouth-ratio samples
// under the tight threshold exceeds the tightness frequency cutoff.
func (b *BehaviorTracker) IsMouthFrequentlyTight() bool {
	return b.mouths.fractionBelow(b.cfg.MouthTightMAR) > b.cfg.MouthTightFraction
}

// HeadVariance returns the combined x/y population variance of the trailing
// head positions.
func (b *BehaviorTracker) HeadVariance() float64 {
	if b.heads.len() == 0 {
		return 0
	}
	return geometry.Variance(b.heads.xs()) + geometry.Variance(b.heads.ys())
}

// MouthVariance returns the population variance of the trailing mouth-ratio
// samples.
func (b *BehaviorTracker) MouthVariance() float64 {
	return geometry.Variance(b.mouths.values())
}

// HeadSampleCount returns the number of head positions currently held.
func (b *BehaviorTracker) HeadSampleCount() int {
	return b.heads.len()
}

// UpdateState feeds a proposed per-frame classification through the
// minimum-dwell gate: a transition is accepted only once the proposed state
// has been continuously computed for the dwell duration; until then the
// prior state persists. Returns the authoritative classification.
func (b *BehaviorTracker) UpdateState(proposed Expression, now time.Time) Expression {
	if b.currentSince.IsZero() {
		b.currentSince = now
	}

	if proposed == b.current {
		b.candidate = ""
		b.candidateSince = time.Time{}
		return b.current
	}

	if b.candidate != proposed {
		b.candidate = proposed
		b.candidateSince = now
		return b.current
	}

	dwell := time.Duration(b.cfg.StateDwellMs) * time.Millisecond
	if now.Sub(b.candidateSince) >= dwell {
		b.current = proposed
		b.currentSince = now
		b.candidate = ""
		b.candidateSince = time.Time{}
	}
	return b.current
}

// Current returns the authoritative classification and when it began.
func (b *BehaviorTracker) Current() (Expression, time.Time) {
	return b.current, b.currentSince
}

// Reset clears all histories and returns the classification to its baseline.
func (b *BehaviorTracker) Reset() {
	window := time.Duration(b.cfg.HistoryWindowMs) * time.Millisecond
	b.blinks = newInstantSeries(window, b.cfg.HistoryMaxSamples)
	b.heads = newPositionSeries(window, b.cfg.HistoryMaxSamples)
	b.closures = newIntervalSeries(window, b.cfg.HistoryMaxSamples)
	b.mouths = newValueSeries(window, b.cfg.HistoryMaxSamples)
	b.current = ExpressionConfident
	b.currentSince = time.Time{}
	b.candidate = ""
	b.candidateSince = time.Time{}
}
