package analysis

import (
	"testing"
	"time"
)

func validSample(expr Expression, eye int) ScoreSample {
	return ScoreSample{
		EyeContact:           eye,
		Engagement:           80,
		Attention:            70,
		Stability:            60,
		Expression:           expr,
		ExpressionConfidence: 75,
		FaceDetected:         true,
	}
}

func TestSampler_Throttle(t *testing.T) {
	cfg := DefaultTunables()
	s := NewSampler(&cfg)
	t0 := time.Now()

	s.Start(0)

	if !s.Add(validSample(ExpressionConfident, 90), t0) {
		t.Fatal("first eligible sample should be kept")
	}
	if s.Add(validSample(ExpressionConfident, 90), t0.Add(200*time.Millisecond)) {
		t.Error("sample 200ms after the last should be throttled")
	}
	if !s.Add(validSample(ExpressionConfident, 90), t0.Add(1600*time.Millisecond)) {
		t.Error("sample 1.6s after the last should be kept")
	}
}

func TestSampler_Eligibility(t *testing.T) {
	cfg := DefaultTunables()
	s := NewSampler(&cfg)
	t0 := time.Now()

	t.Run("inactive sampler rejects", func(t *testing.T) {
		if s.Add(validSample(ExpressionConfident, 90), t0) {
			t.Error("sample should be rejected before Start")
		}
	})

	s.Start(0)

	t.Run("no face rejected", func(t *testing.T) {
		sample := validSample(ExpressionConfident, 90)
		sample.FaceDetected = false
		if s.Add(sample, t0) {
			t.Error("faceless sample should be rejected")
		}
	})

	t.Run("no expression rejected", func(t *testing.T) {
		sample := validSample("", 90)
		if s.Add(sample, t0) {
			t.Error("sample without expression should be rejected")
		}
	})
}

func TestSampler_StopEmpty(t *testing.T) {
	cfg := DefaultTunables()
	s := NewSampler(&cfg)

	s.Start(2)
	if agg := s.Stop(time.Now()); agg != nil {
		t.Errorf("Stop() with no samples = %+v, want nil", agg)
	}

	// Stop without Start is a no-op
	if agg := s.Stop(time.Now()); agg != nil {
		t.Errorf("Stop() while inactive = %+v, want nil", agg)
	}
}

func TestSampler_StartClearsAccumulator(t *testing.T) {
	cfg := DefaultTunables()
	s := NewSampler(&cfg)
	t0 := time.Now()

	s.Start(0)
	s.Add(validSample(ExpressionConfident, 90), t0)
	s.Start(1)

	agg := s.Stop(t0.Add(time.Second))
	if agg != nil {
		t.Errorf("Stop() after restart = %+v, want nil (accumulator cleared)", agg)
	}
}

func TestSampler_Aggregation(t *testing.T) {
	cfg := DefaultTunables()
	s := NewSampler(&cfg)
	t0 := time.Now()

	s.Start(3)
	exprs := []Expression{
		ExpressionConfident, ExpressionConfident, ExpressionConfident,
		ExpressionNervous, ExpressionNervous,
	}
	for i, expr := range exprs {
		if !s.Add(validSample(expr, 50+i*10), t0.Add(time.Duration(i)*2*time.Second)) {
			t.Fatalf("sample %d unexpectedly rejected", i)
		}
	}

	agg := s.Stop(t0.Add(time.Minute))
	if agg == nil {
		t.Fatal("Stop() returned nil aggregate")
	}
	if agg.QuestionIndex != 3 {
		t.Errorf("QuestionIndex = %d, want 3", agg.QuestionIndex)
	}
	if agg.SampleCount != 5 {
		t.Errorf("SampleCount = %d, want 5", agg.SampleCount)
	}
	// (50+60+70+80+90)/5 = 70, integer average
	if agg.EyeContact != 70 {
		t.Errorf("EyeContact = %d, want 70", agg.EyeContact)
	}
	if agg.ExpressionConfidence != 75 {
		t.Errorf("ExpressionConfidence = %d, want 75", agg.ExpressionConfidence)
	}
	if agg.DominantExpression != ExpressionConfident {
		t.Errorf("DominantExpression = %v, want confident", agg.DominantExpression)
	}
}

func TestAggregate_SkipsFacelessSamples(t *testing.T) {
	samples := []ScoreSample{
		{FaceDetected: false, EyeContact: 100},
		{FaceDetected: false, EyeContact: 100},
	}
	agg := aggregate(samples, 1, time.Now())
	if agg.SampleCount != 0 {
		t.Errorf("SampleCount = %d, want 0", agg.SampleCount)
	}
	if agg.EyeContact != 0 || agg.DominantExpression != "" {
		t.Errorf("aggregate over faceless samples = %+v, want zero values", agg)
	}
}

func TestAggregate_DominantTieBreak(t *testing.T) {
	samples := []ScoreSample{
		validSample(ExpressionNervous, 50),
		validSample(ExpressionNervous, 50),
		validSample(ExpressionConfident, 50),
		validSample(ExpressionConfident, 50),
	}
	agg := aggregate(samples, 0, time.Now())
	// Ties resolve in enumeration order: confident beats nervous.
	if agg.DominantExpression != ExpressionConfident {
		t.Errorf("DominantExpression = %v, want confident on tie", agg.DominantExpression)
	}
}
