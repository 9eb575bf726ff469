// Package report provides the persistence boundary for per-question
// aggregates: an HTTP reporter against the platform's persistence API and a
// local SQLite store, combined behind one flusher.
package report

import (
	"context"
	"time"

	"github.com/ayusman/drishti/internal/analysis"
)

// Vocabulary maps the engine's internal expression classification onto the
// platform's fixed external vocabulary. The mapping is a static lookup table
// supplied at the boundary.
type Vocabulary map[analysis.Expression]string

// DefaultVocabulary is the platform's standard encoding.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		analysis.ExpressionConfident:  "composed",
		analysis.ExpressionNervous:    "anxious",
		analysis.ExpressionDistracted: "inattentive",
	}
}

// Encode translates an internal expression; unknown values map to the empty
// string rather than leaking internal names.
func (v Vocabulary) Encode(e analysis.Expression) string {
	return v[e]
}

// Result is the external payload persisted per question on flush.
type Result struct {
	SessionID            string    `json:"sessionId"`
	QuestionIndex        int       `json:"questionIndex"`
	EyeContact           int       `json:"eyeContact"`
	Engagement           int       `json:"engagement"`
	Attention            int       `json:"attention"`
	Stability            int       `json:"stability"`
	Expression           string    `json:"expression"`
	ExpressionConfidence int       `json:"expressionConfidence"`
	DominantExpression   string    `json:"dominantExpression"`
	SampleCount          int       `json:"sampleCount"`
	Timestamp            time.Time `json:"timestamp"`
}

// NewResult re-encodes an aggregate into the external payload.
func NewResult(sessionID string, agg analysis.Aggregate, vocab Vocabulary) Result {
	encoded := vocab.Encode(agg.DominantExpression)
	return Result{
		SessionID:            sessionID,
		QuestionIndex:        agg.QuestionIndex,
		EyeContact:           agg.EyeContact,
		Engagement:           agg.Engagement,
		Attention:            agg.Attention,
		Stability:            agg.Stability,
		Expression:           encoded,
		ExpressionConfidence: agg.ExpressionConfidence,
		DominantExpression:   encoded,
		SampleCount:          agg.SampleCount,
		Timestamp:            agg.Timestamp,
	}
}

// Reporter persists one per-question result.
type Reporter interface {
	Report(ctx context.Context, result Result) error
}
