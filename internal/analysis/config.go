package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tunables holds every threshold and weight used by the scoring and
// classification heuristics as a named value, so individual knobs can be
// tuned and unit-tested independently of the control flow that uses them.
// All durations are in milliseconds to keep the YAML form flat.
type Tunables struct {
	// Eye state machine
	EARClosedThreshold     float64 `yaml:"ear_closed_threshold"`
	BlinkMaxMs             int     `yaml:"blink_max_ms"`
	LongClosureMs          int     `yaml:"long_closure_ms"`
	SmoothWindow           int     `yaml:"smooth_window"`
	SmoothBypassBelow      float64 `yaml:"smooth_bypass_below"`
	SmoothDropDelta        float64 `yaml:"smooth_drop_delta"`
	SmoothDropWeight       float64 `yaml:"smooth_drop_weight"`
	SmoothRecoverWeight    float64 `yaml:"smooth_recover_weight"`
	AssumedFPS             float64 `yaml:"assumed_fps"`
	ClosurePenaltyPerFrame float64 `yaml:"closure_penalty_per_frame"`
	ClosurePenaltyMax      float64 `yaml:"closure_penalty_max"`

	// Rolling behavior history
	HistoryWindowMs      int     `yaml:"history_window_ms"`
	HistoryMaxSamples    int     `yaml:"history_max_samples"`
	DefaultBlinkRate     float64 `yaml:"default_blink_rate"`
	HeadAwayOffset       float64 `yaml:"head_away_offset"`
	HeadDownY            float64 `yaml:"head_down_y"`
	FrequentFraction     float64 `yaml:"frequent_fraction"`
	LongClosureHistoryMs int     `yaml:"long_closure_history_ms"`
	MouthTightMAR        float64 `yaml:"mouth_tight_mar"`
	MouthTightFraction   float64 `yaml:"mouth_tight_fraction"`
	StateDwellMs         int     `yaml:"state_dwell_ms"`

	// Score calculators
	OpenEAR                  float64 `yaml:"open_ear"`
	EyeContactHeadWeight     float64 `yaml:"eye_contact_head_weight"`
	EyeContactGazeWeight     float64 `yaml:"eye_contact_gaze_weight"`
	EyeContactOpennessWeight float64 `yaml:"eye_contact_openness_weight"`
	ClosedHeadFactor         float64 `yaml:"closed_head_factor"`
	ClosedGazeFactor         float64 `yaml:"closed_gaze_factor"`
	ClosedEyeContactCap      int     `yaml:"closed_eye_contact_cap"`
	EngagementPresenceWeight float64 `yaml:"engagement_presence_weight"`
	EngagementOpennessWeight float64 `yaml:"engagement_openness_weight"`
	EngagementHeadWeight     float64 `yaml:"engagement_head_weight"`
	AttentionEngagementPart  float64 `yaml:"attention_engagement_part"`
	AttentionStabilityPart   float64 `yaml:"attention_stability_part"`
	MovementCap              float64 `yaml:"movement_cap"`
	StabilityHeadWeight      float64 `yaml:"stability_head_weight"`
	StabilityHandWeight      float64 `yaml:"stability_hand_weight"`
	NeutralHandStability     float64 `yaml:"neutral_hand_stability"`

	// Nervous accumulator
	NormalBlinkMin        float64 `yaml:"normal_blink_min"`
	NormalBlinkMax        float64 `yaml:"normal_blink_max"`
	NervousBlinkWeight    float64 `yaml:"nervous_blink_weight"`
	NervousMouthWeight    float64 `yaml:"nervous_mouth_weight"`
	NervousMouthFreq      float64 `yaml:"nervous_mouth_freq"`
	MouthVarianceMin      float64 `yaml:"mouth_variance_min"`
	MouthVarianceMax      float64 `yaml:"mouth_variance_max"`
	NervousMouthVarWeight float64 `yaml:"nervous_mouth_var_weight"`
	NervousHeadDownWeight float64 `yaml:"nervous_head_down_weight"`
	NervousHeadDownFreq   float64 `yaml:"nervous_head_down_freq"`
	HandNearFaceDistance  float64 `yaml:"hand_near_face_distance"`
	NervousHandWeight     float64 `yaml:"nervous_hand_weight"`
	NervousHandComboBonus float64 `yaml:"nervous_hand_combo_bonus"`
	MicroMoveVarMin       float64 `yaml:"micro_move_var_min"`
	MicroMoveVarMax       float64 `yaml:"micro_move_var_max"`
	NervousMicroWeight    float64 `yaml:"nervous_micro_weight"`
	NervousThreshold      float64 `yaml:"nervous_threshold"`

	// Distraction accumulator
	DistractionHeadOffset   float64 `yaml:"distraction_head_offset"`
	DistractionOffsetWeight float64 `yaml:"distraction_offset_weight"`
	DistractionAwayWeight   float64 `yaml:"distraction_away_weight"`
	DistractionDownWeight   float64 `yaml:"distraction_down_weight"`
	DistractionClosures     float64 `yaml:"distraction_closures"`
	PoorHeadPose            float64 `yaml:"poor_head_pose"`
	DistractionPoseWeight   float64 `yaml:"distraction_pose_weight"`
	VeryPoorHeadPose        float64 `yaml:"very_poor_head_pose"`
	DistractionPoseBonus    float64 `yaml:"distraction_pose_bonus"`
	DistractionClosedEyes   float64 `yaml:"distraction_closed_eyes"`
	DistractionThreshold    float64 `yaml:"distraction_threshold"`

	// Confident accumulator
	HeadStableVariance    float64 `yaml:"head_stable_variance"`
	ConfidentStableWeight float64 `yaml:"confident_stable_weight"`
	ConfidentBlinkWeight  float64 `yaml:"confident_blink_weight"`
	GoodHeadPose          float64 `yaml:"good_head_pose"`
	ConfidentPoseWeight   float64 `yaml:"confident_pose_weight"`
	ExcellentHeadPose     float64 `yaml:"excellent_head_pose"`
	ConfidentPoseBonus    float64 `yaml:"confident_pose_bonus"`
	CenteredOffset        float64 `yaml:"centered_offset"`
	ConfidentCenterWeight float64 `yaml:"confident_center_weight"`
	RelaxedMAR            float64 `yaml:"relaxed_mar"`
	ConfidentMouthWeight  float64 `yaml:"confident_mouth_weight"`
	ConfidentComboBonus   float64 `yaml:"confident_combo_bonus"`
	ConfidentThreshold    float64 `yaml:"confident_threshold"`

	// Graduated suppression of the nervous score when confident indicators
	// hold, indexed by (number of indicators - 1).
	ConfidentSuppression []float64 `yaml:"confident_suppression"`

	// Cheating detector
	GazeDownMs           int     `yaml:"gaze_down_ms"`
	GazeDownPoints       int     `yaml:"gaze_down_points"`
	GazeDownPitchDegrees float64 `yaml:"gaze_down_pitch_degrees"`
	PitchDownDegrees     float64 `yaml:"pitch_down_degrees"`
	PitchNeutralRatio    float64 `yaml:"pitch_neutral_ratio"`
	PitchDegreesScale    float64 `yaml:"pitch_degrees_scale"`
	CheatFrameWindow     int     `yaml:"cheat_frame_window"`
	CheatFrameFraction   float64 `yaml:"cheat_frame_fraction"`
	PitchPoints          int     `yaml:"pitch_points"`
	HandNearPoints       int     `yaml:"hand_near_points"`
	EdgeMargin           float64 `yaml:"edge_margin"`
	EdgePoints           int     `yaml:"edge_points"`
	BehaviorFlagScore    int     `yaml:"behavior_flag_score"`
	DistractedScore      int     `yaml:"distracted_score"`

	// Sampling
	SampleIntervalMs int `yaml:"sample_interval_ms"`
}

// DefaultTunables returns the production heuristic values.
func DefaultTunables() Tunables {
	return Tunables{
		EARClosedThreshold:     0.12,
		BlinkMaxMs:             300,
		LongClosureMs:          1500,
		SmoothWindow:           10,
		SmoothBypassBelow:      0.2,
		SmoothDropDelta:        0.15,
		SmoothDropWeight:       0.8,
		SmoothRecoverWeight:    0.3,
		AssumedFPS:             30,
		ClosurePenaltyPerFrame: 0.01,
		ClosurePenaltyMax:      0.5,

		HistoryWindowMs:      10000,
		HistoryMaxSamples:    300,
		DefaultBlinkRate:     15,
		HeadAwayOffset:       0.25,
		HeadDownY:            0.51,
		FrequentFraction:     0.4,
		LongClosureHistoryMs: 1200,
		MouthTightMAR:        0.22,
		MouthTightFraction:   0.35,
		StateDwellMs:         800,

		OpenEAR:                  0.25,
		EyeContactHeadWeight:     0.5,
		EyeContactGazeWeight:     0.3,
		EyeContactOpennessWeight: 0.2,
		ClosedHeadFactor:         0.3,
		ClosedGazeFactor:         0.2,
		ClosedEyeContactCap:      15,
		EngagementPresenceWeight: 0.2,
		EngagementOpennessWeight: 0.4,
		EngagementHeadWeight:     0.4,
		AttentionEngagementPart:  0.7,
		AttentionStabilityPart:   0.3,
		MovementCap:              0.05,
		StabilityHeadWeight:      0.6,
		StabilityHandWeight:      0.4,
		NeutralHandStability:     0.5,

		NormalBlinkMin:        8,
		NormalBlinkMax:        25,
		NervousBlinkWeight:    15,
		NervousMouthWeight:    10,
		NervousMouthFreq:      10,
		MouthVarianceMin:      0.0005,
		MouthVarianceMax:      0.01,
		NervousMouthVarWeight: 10,
		NervousHeadDownWeight: 10,
		NervousHeadDownFreq:   10,
		HandNearFaceDistance:  0.15,
		NervousHandWeight:     20,
		NervousHandComboBonus: 5,
		MicroMoveVarMin:       0.0002,
		MicroMoveVarMax:       0.002,
		NervousMicroWeight:    10,
		NervousThreshold:      15,

		DistractionHeadOffset:   0.25,
		DistractionOffsetWeight: 15,
		DistractionAwayWeight:   15,
		DistractionDownWeight:   10,
		DistractionClosures:     15,
		PoorHeadPose:            0.4,
		DistractionPoseWeight:   10,
		VeryPoorHeadPose:        0.2,
		DistractionPoseBonus:    10,
		DistractionClosedEyes:   10,
		DistractionThreshold:    25,

		HeadStableVariance:    0.0002,
		ConfidentStableWeight: 20,
		ConfidentBlinkWeight:  15,
		GoodHeadPose:          0.6,
		ConfidentPoseWeight:   15,
		ExcellentHeadPose:     0.8,
		ConfidentPoseBonus:    10,
		CenteredOffset:        0.15,
		ConfidentCenterWeight: 15,
		RelaxedMAR:            0.25,
		ConfidentMouthWeight:  10,
		ConfidentComboBonus:   15,
		ConfidentThreshold:    50,

		ConfidentSuppression: []float64{0.2, 0.4, 0.6, 0.8},

		GazeDownMs:           1500,
		GazeDownPoints:       30,
		GazeDownPitchDegrees: -8,
		PitchDownDegrees:     -15,
		PitchNeutralRatio:    0.29,
		PitchDegreesScale:    150,
		CheatFrameWindow:     10,
		CheatFrameFraction:   0.7,
		PitchPoints:          20,
		HandNearPoints:       20,
		EdgeMargin:           0.1,
		EdgePoints:           10,
		BehaviorFlagScore:    40,
		DistractedScore:      20,

		SampleIntervalMs: 1500,
	}
}

// LoadTunables reads tuning overrides from a YAML file layered over the
// defaults. A missing file is not an error; the defaults apply.
func LoadTunables(path string) (Tunables, error) {
	t := DefaultTunables()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, fmt.Errorf("read tunables: %w", err)
	}

	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse tunables: %w", err)
	}
	return t, nil
}
