package plank

// Config holds all tunable thresholds for classification and scoring.
// Distances are in normalized frame units, angles in degrees.
type Config struct {
	// Confidence
	ConfidenceFloor float64 // Landmarks below this visibility are unusable

	// Posture gating (classifier)
	MaxTorsoDrop float64 // Max |shoulder.y - hip.y| of the bilateral centers
	MaxLegDrop   float64 // Max |hip.y - knee.y| of the bilateral centers

	// Arm shape (classifier)
	MinArmDrop        float64 // Elbows and wrists must sit this far below the shoulders
	ArmExtensionRatio float64 // High plank: wrist drop > ratio * elbow drop
	MinForearmDrop    float64 // High plank: wrist must sit this far below the elbow
	MaxForearmLevel   float64 // Elbow plank: |wrist.y - elbow.y| below this

	// Body alignment (shoulder-hip-ankle)
	AlignmentTarget    float64 // Straight line
	AlignmentTolerance float64 // Full score within ± this
	AlignmentPenalty   float64 // Points lost per degree beyond tolerance
	HipsLowBelow       float64 // "hips too low" below this angle
	HipsHighAbove      float64 // "hips too high" above this angle

	// Knee position (hip-knee-ankle)
	KneeTarget  float64 // Full score at or above
	KneePenalty float64 // Points lost per degree below target

	// Shoulder stack (shoulder over support joint)
	StackExcellent     float64 // Horizontal offset for 100
	StackGood          float64 // Horizontal offset for 80, else 60
	StackTargetAngle   float64 // Shoulder-to-support angle from horizontal (90 = vertical)
	StackTolerance     float64 // Feedback when deviating more than this
	StackFallbackScore int     // Score when the support joint is not visible

	// Rating
	GoodScore      int // Overall score considered good form
	ExcellentScore int // Overall score considered excellent form
}

// DefaultConfig returns the recommended thresholds.
func DefaultConfig() Config {
	return Config{
		ConfidenceFloor: 0.3,

		MaxTorsoDrop: 0.2,
		MaxLegDrop:   0.2,

		MinArmDrop:        0.03,
		ArmExtensionRatio: 1.4,
		MinForearmDrop:    0.05,
		MaxForearmLevel:   0.04,

		AlignmentTarget:    180,
		AlignmentTolerance: 10,
		AlignmentPenalty:   3,
		HipsLowBelow:       170,
		HipsHighAbove:      190,

		KneeTarget:  170,
		KneePenalty: 2,

		StackExcellent:     0.05,
		StackGood:          0.10,
		StackTargetAngle:   90,
		StackTolerance:     15,
		StackFallbackScore: 50,

		GoodScore:      70,
		ExcellentScore: 85,
	}
}

// StrictConfig demands a clearer arm extension before calling a high plank
// and a tighter alignment window.
func StrictConfig() Config {
	cfg := DefaultConfig()
	cfg.ConfidenceFloor = 0.5
	cfg.ArmExtensionRatio = 1.5
	cfg.AlignmentTolerance = 7
	cfg.KneeTarget = 175
	return cfg
}

// Rating buckets an overall score for display.
func (c Config) Rating(score int) string {
	switch {
	case score >= c.ExcellentScore:
		return "Excellent Form"
	case score >= c.GoodScore:
		return "Good Form"
	default:
		return "Needs Improvement"
	}
}
