package analysis

import "time"

// Bounded rolling histories backing the behavior tracker. Each series keeps a
// trailing time window plus a hard sample cap; eviction runs once per frame
// via prune rather than on every read.

type timedValue struct {
	val float64
	at  time.Time
}

// valueSeries is a bounded series of float samples.
type valueSeries struct {
	window time.Duration
	cap    int
	items  []timedValue
}

func newValueSeries(window time.Duration, cap int) *valueSeries {
	return &valueSeries{window: window, cap: cap, items: make([]timedValue, 0, cap)}
}

func (s *valueSeries) add(v float64, now time.Time) {
	if len(s.items) >= s.cap {
		copy(s.items, s.items[1:])
		s.items = s.items[:s.cap-1]
	}
	s.items = append(s.items, timedValue{val: v, at: now})
}

func (s *valueSeries) prune(now time.Time) {
	cutoff := now.Add(-s.window)
	drop := 0
	for drop < len(s.items) && s.items[drop].at.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		copy(s.items, s.items[drop:])
		s.items = s.items[:len(s.items)-drop]
	}
}

func (s *valueSeries) values() []float64 {
	out := make([]float64, len(s.items))
	for i, it := range s.items {
		out[i] = it.val
	}
	return out
}

func (s *valueSeries) len() int { return len(s.items) }

// fractionBelow returns the fraction of samples under the threshold.
func (s *valueSeries) fractionBelow(threshold float64) float64 {
	if len(s.items) == 0 {
		return 0
	}
	n := 0
	for _, it := range s.items {
		if it.val < threshold {
			n++
		}
	}
	return float64(n) / float64(len(s.items))
}

// headSample is one head-position observation.
type headSample struct {
	x, y float64
	at   time.Time
}

// positionSeries is a bounded series of head positions.
type positionSeries struct {
	window time.Duration
	cap    int
	items  []headSample
}

func newPositionSeries(window time.Duration, cap int) *positionSeries {
	return &positionSeries{window: window, cap: cap, items: make([]headSample, 0, cap)}
}

func (s *positionSeries) add(x, y float64, now time.Time) {
	if len(s.items) >= s.cap {
		copy(s.items, s.items[1:])
		s.items = s.items[:s.cap-1]
	}
	s.items = append(s.items, headSample{x: x, y: y, at: now})
}

func (s *positionSeries) prune(now time.Time) {
	cutoff := now.Add(-s.window)
	drop := 0
	for drop < len(s.items) && s.items[drop].at.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		copy(s.items, s.items[drop:])
		s.items = s.items[:len(s.items)-drop]
	}
}

func (s *positionSeries) len() int { return len(s.items) }

// fraction returns the fraction of samples satisfying the predicate.
func (s *positionSeries) fraction(pred func(headSample) bool) float64 {
	if len(s.items) == 0 {
		return 0
	}
	n := 0
	for _, it := range s.items {
		if pred(it) {
			n++
		}
	}
	return float64(n) / float64(len(s.items))
}

func (s *positionSeries) xs() []float64 {
	out := make([]float64, len(s.items))
	for i, it := range s.items {
		out[i] = it.x
	}
	return out
}

func (s *positionSeries) ys() []float64 {
	out := make([]float64, len(s.items))
	for i, it := range s.items {
		out[i] = it.y
	}
	return out
}

// instantSeries is a bounded series of event timestamps (blinks).
type instantSeries struct {
	window time.Duration
	cap    int
	items  []time.Time
}

func newInstantSeries(window time.Duration, cap int) *instantSeries {
	return &instantSeries{window: window, cap: cap, items: make([]time.Time, 0, cap)}
}

func (s *instantSeries) add(at time.Time) {
	if len(s.items) >= s.cap {
		copy(s.items, s.items[1:])
		s.items = s.items[:s.cap-1]
	}
	s.items = append(s.items, at)
}

func (s *instantSeries) prune(now time.Time) {
	cutoff := now.Add(-s.window)
	drop := 0
	for drop < len(s.items) && s.items[drop].Before(cutoff) {
		drop++
	}
	if drop > 0 {
		copy(s.items, s.items[drop:])
		s.items = s.items[:len(s.items)-drop]
	}
}

func (s *instantSeries) len() int { return len(s.items) }

// closureInterval is one eye-closure span. A zero End marks an interval that
// is still open.
type closureInterval struct {
	start time.Time
	end   time.Time
}

func (c closureInterval) duration(now time.Time) time.Duration {
	if c.end.IsZero() {
		return now.Sub(c.start)
	}
	return c.end.Sub(c.start)
}

// intervalSeries is a bounded series of eye-closure intervals.
type intervalSeries struct {
	window time.Duration
	cap    int
	items  []closureInterval
}

func newIntervalSeries(window time.Duration, cap int) *intervalSeries {
	return &intervalSeries{window: window, cap: cap, items: make([]closureInterval, 0, cap)}
}

func (s *intervalSeries) open(start time.Time) {
	if len(s.items) >= s.cap {
		copy(s.items, s.items[1:])
		s.items = s.items[:s.cap-1]
	}
	s.items = append(s.items, closureInterval{start: start})
}

// closeLast finalizes the most recent interval if it is still open.
func (s *intervalSeries) closeLast(end time.Time) {
	if n := len(s.items); n > 0 && s.items[n-1].end.IsZero() {
		s.items[n-1].end = end
	}
}

func (s *intervalSeries) prune(now time.Time) {
	cutoff := now.Add(-s.window)
	drop := 0
	for drop < len(s.items) {
		it := s.items[drop]
		// Open intervals are always retained.
		if it.end.IsZero() || !it.end.Before(cutoff) {
			break
		}
		drop++
	}
	if drop > 0 {
		copy(s.items, s.items[drop:])
		s.items = s.items[:len(s.items)-drop]
	}
}

// anyLongerThan reports whether any interval in the window exceeds d.
func (s *intervalSeries) anyLongerThan(d time.Duration, now time.Time) bool {
	for _, it := range s.items {
		if it.duration(now) > d {
			return true
		}
	}
	return false
}
