package insight

import "fmt"

// EvidenceMode selects which observations are cited for a fired rule.
type EvidenceMode string

const (
	// EvidenceScoped cites the latest in-scope observation that satisfied
	// each condition, without duplicates.
	EvidenceScoped EvidenceMode = "scoped"

	// EvidenceBroad cites every observation whose metric appears in any of
	// the rule's conditions, across all regions and functions.
	EvidenceBroad EvidenceMode = "broad"
)

// ParseEvidenceMode parses a configured evidence mode. Empty means scoped.
func ParseEvidenceMode(s string) (EvidenceMode, error) {
	switch EvidenceMode(s) {
	case "", EvidenceScoped:
		return EvidenceScoped, nil
	case EvidenceBroad:
		return EvidenceBroad, nil
	}
	return "", fmt.Errorf("unknown evidence mode %q (want %q or %q)", s, EvidenceScoped, EvidenceBroad)
}

// Match is the result of matching one rule against an observation set.
type Match struct {
	Fired    bool
	Evidence []Observation
}

// Matcher decides whether rules fire and collects their evidence.
type Matcher struct {
	mode EvidenceMode
}

// NewMatcher returns a Matcher that collects evidence in the given mode.
func NewMatcher(mode EvidenceMode) Matcher {
	if mode == "" {
		mode = EvidenceScoped
	}
	return Matcher{mode: mode}
}

// Mode returns the matcher's evidence mode.
func (m Matcher) Mode() EvidenceMode {
	return m.mode
}

// Match reports whether every condition of r holds. Evidence is only
// collected for fired rules.
func (m Matcher) Match(r Rule, observations []Observation) Match {
	for _, c := range r.Conditions {
		if !Evaluate(c, observations) {
			return Match{}
		}
	}
	if m.mode == EvidenceBroad {
		return Match{Fired: true, Evidence: broadEvidence(r, observations)}
	}
	return Match{Fired: true, Evidence: scopedEvidence(r, observations)}
}

func scopedEvidence(r Rule, observations []Observation) []Observation {
	seen := make(map[int]bool, len(r.Conditions))
	evidence := make([]Observation, 0, len(r.Conditions))
	for _, c := range r.Conditions {
		i := latestIndex(c, observations)
		if i < 0 || seen[i] {
			continue
		}
		seen[i] = true
		evidence = append(evidence, observations[i])
	}
	return evidence
}

func broadEvidence(r Rule, observations []Observation) []Observation {
	metrics := make(map[string]bool, len(r.Conditions))
	for _, c := range r.Conditions {
		metrics[c.Metric] = true
	}
	var evidence []Observation
	for _, obs := range observations {
		if metrics[obs.Metric] {
			evidence = append(evidence, obs)
		}
	}
	return evidence
}
