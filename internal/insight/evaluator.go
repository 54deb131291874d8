package insight

// relevant reports whether obs is within the condition's metric and scope.
func (c Condition) relevant(obs Observation) bool {
	if obs.Metric != c.Metric {
		return false
	}
	if c.Region != "" && c.Region != AnyRegion && obs.Region != c.Region {
		return false
	}
	if c.Function != "" && obs.Function != c.Function {
		return false
	}
	return true
}

// Latest returns the most recent observation relevant to c. Ties on
// timestamp keep the first one encountered. The second result is false when
// no observation is in scope.
func Latest(c Condition, observations []Observation) (Observation, bool) {
	i := latestIndex(c, observations)
	if i < 0 {
		return Observation{}, false
	}
	return observations[i], true
}

func latestIndex(c Condition, observations []Observation) int {
	best := -1
	for i, obs := range observations {
		if !c.relevant(obs) {
			continue
		}
		if best < 0 || obs.Timestamp.After(observations[best].Timestamp) {
			best = i
		}
	}
	return best
}

// Evaluate reports whether c holds for the observation set. Only the latest
// relevant observation is compared; an empty scope never satisfies a
// condition.
func Evaluate(c Condition, observations []Observation) bool {
	latest, ok := Latest(c, observations)
	if !ok {
		return false
	}
	return c.Operator.Compare(latest.Value, c.Value)
}
