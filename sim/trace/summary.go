package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalForecasts int
	AcceptedCount  int
	RejectedCount  int
	// ExpectedAccepted is the sum of acceptance probabilities; AcceptedCount
	// should be close to it when thinning is unbiased.
	ExpectedAccepted      float64
	MeanAcceptProbability float64
	MinAcceptProbability  float64
	UniquePersons         int
	PersonDistribution    map[int]int // person → number of forecasts evaluated
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PersonDistribution: make(map[int]int),
	}
	if st == nil || len(st.Forecasts) == 0 {
		return summary
	}

	summary.TotalForecasts = len(st.Forecasts)
	summary.MinAcceptProbability = 1
	for _, f := range st.Forecasts {
		if f.Accepted {
			summary.AcceptedCount++
		} else {
			summary.RejectedCount++
		}
		p := f.AcceptanceProbability()
		summary.ExpectedAccepted += p
		if p < summary.MinAcceptProbability {
			summary.MinAcceptProbability = p
		}
		summary.PersonDistribution[f.Person]++
	}
	summary.MeanAcceptProbability = summary.ExpectedAccepted / float64(summary.TotalForecasts)
	summary.UniquePersons = len(summary.PersonDistribution)

	return summary
}
