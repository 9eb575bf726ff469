// Package analysis implements the behavioral signal-processing engine: it
// turns noisy per-frame landmark input into stable eye-contact, engagement,
// attention and stability scores, an expression classification with temporal
// hysteresis, a cheating risk status, and per-question aggregates.
package analysis

import "time"

// Expression is the discrete behavioral classification of a frame.
type Expression string

const (
	// ExpressionConfident indicates a stable, engaged subject. It is also
	// the positive-baseline default when no adverse indicator is present.
	ExpressionConfident Expression = "confident"
	// ExpressionNervous indicates fidgeting, mouth tightness or hand-to-face
	// gestures.
	ExpressionNervous Expression = "nervous"
	// ExpressionDistracted indicates the subject is looking away, down, or
	// has their eyes closed.
	ExpressionDistracted Expression = "distracted"
)

// CheatStatus is the derived session risk status.
type CheatStatus string

const (
	StatusFocused    CheatStatus = "focused"
	StatusDistracted CheatStatus = "distracted"
	StatusCheating   CheatStatus = "cheating"
)

// ScoreSample is the full engine output for one processed frame.
type ScoreSample struct {
	EyeContact           int         `json:"eyeContact"`
	Engagement           int         `json:"engagement"`
	Attention            int         `json:"attention"`
	Stability            int         `json:"stability"`
	Expression           Expression  `json:"expression,omitempty"`
	ExpressionConfidence int         `json:"expressionConfidence"`
	FaceDetected         bool        `json:"faceDetected"`
	CheatStatus          CheatStatus `json:"cheatStatus"`
	Timestamp            time.Time   `json:"timestamp"`
}

// Aggregate is the per-question summary of collected samples.
type Aggregate struct {
	QuestionIndex        int        `json:"questionIndex"`
	EyeContact           int        `json:"eyeContact"`
	Engagement           int        `json:"engagement"`
	Attention            int        `json:"attention"`
	Stability            int        `json:"stability"`
	DominantExpression   Expression `json:"dominantExpression,omitempty"`
	ExpressionConfidence int        `json:"expressionConfidence"`
	SampleCount          int        `json:"sampleCount"`
	Timestamp            time.Time  `json:"timestamp"`
}

// CheatingState is the cheating detector's externally visible state.
// Status is derived from the other two fields, never stored independently.
type CheatingState struct {
	BehaviorScore int         `json:"behaviorScore"`
	PhoneDetected bool        `json:"phoneDetected"`
	Status        CheatStatus `json:"status"`
}
