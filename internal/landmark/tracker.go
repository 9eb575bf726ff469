package landmark

import "gocv.io/x/gocv"

// Tracker defines the interface for face and hand landmark tracking
// implementations.
type Tracker interface {
	// Track analyzes a video frame and returns the detected face mesh and
	// hand landmarks. The face frame is nil when no face is detected; the
	// hand slice holds zero to two entries.
	Track(frame *gocv.Mat) (*FaceFrame, []HandFrame, error)

	// Close releases any resources held by the tracker.
	Close() error
}

// Config holds configuration options for landmark tracking.
type Config struct {
	// MaxHands is the maximum number of hands to track (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
