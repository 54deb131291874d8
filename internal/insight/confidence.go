package insight

// Confidence levels by amount of corroborating evidence.
const (
	ConfidenceStrong   = 0.95 // five or more observations
	ConfidenceGood     = 0.85 // three or four
	ConfidenceModerate = 0.75 // two
	ConfidenceBaseline = 0.65 // zero or one
)

// Score maps a count of corroborating observations to a confidence value.
// It is a heuristic, not a probability.
func Score(evidenceCount int) float64 {
	switch {
	case evidenceCount >= 5:
		return ConfidenceStrong
	case evidenceCount >= 3:
		return ConfidenceGood
	case evidenceCount == 2:
		return ConfidenceModerate
	default:
		return ConfidenceBaseline
	}
}
