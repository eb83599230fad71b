// Tracks run-wide epidemic statistics: incidence, contacts, recoveries and
// forecast thinning efficiency.

package sim

import (
	"fmt"
	"io"
	"math"
	"sort"
)

// RunStats aggregates emitted events for final reporting. It can be rebuilt
// from a saved event stream by replaying Record.
type RunStats struct {
	PopulationSize    int
	Infections        int // infection events with a known infection time (incidence)
	SeededInfections  int // infections with no infector
	Contacts          int
	Recoveries        int
	ForecastsRejected int
	EndTime           float64

	// DailyIncidence counts infections by floor(t).
	DailyIncidence map[int]int

	infectedAt        map[PersonID]float64
	InfectiousPeriods []float64 // recovery time - infection time, per recovered person
}

// NewRunStats creates empty statistics for a population of the given size.
func NewRunStats(populationSize int) *RunStats {
	return &RunStats{
		PopulationSize: populationSize,
		DailyIncidence: make(map[int]int),
		infectedAt:     make(map[PersonID]float64),
	}
}

// Record folds one event into the statistics.
func (s *RunStats) Record(ev SimulationEvent) {
	switch ev.Type {
	case EventInfection:
		s.Infections++
		if ev.InfectedBy == nil {
			s.SeededInfections++
		}
		s.DailyIncidence[int(math.Floor(ev.Time))]++
		s.infectedAt[ev.PersonID] = ev.Time
	case EventContact:
		s.Contacts++
	case EventForecastRejected:
		s.ForecastsRejected++
	case EventRecovery:
		s.Recoveries++
		if t0, ok := s.infectedAt[ev.PersonID]; ok {
			s.InfectiousPeriods = append(s.InfectiousPeriods, ev.Time-t0)
		}
	}
	if ev.Time > s.EndTime {
		s.EndTime = ev.Time
	}
}

// AttackRate is the fraction of the population ever infected.
func (s *RunStats) AttackRate() float64 {
	if s.PopulationSize == 0 {
		return 0
	}
	return float64(s.Infections) / float64(s.PopulationSize)
}

// ForecastEfficiency is 1 - rejected/(infections + rejected); 0 with no infections.
func (s *RunStats) ForecastEfficiency() float64 {
	if s.Infections == 0 {
		return 0
	}
	return 1 - float64(s.ForecastsRejected)/float64(s.Infections+s.ForecastsRejected)
}

// IncidenceBins returns DailyIncidence sorted by day.
func (s *RunStats) IncidenceBins() []Bin {
	bins := make([]Bin, 0, len(s.DailyIncidence))
	for day, n := range s.DailyIncidence {
		bins = append(bins, Bin{Key: day, Count: n})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].Key < bins[j].Key })
	return bins
}

// Print displays the aggregated statistics at the end of the simulation.
func (s *RunStats) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Statistics ===")
	fmt.Fprintf(w, "Population           : %d\n", s.PopulationSize)
	fmt.Fprintf(w, "Infections           : %d (%d seeded)\n", s.Infections, s.SeededInfections)
	fmt.Fprintf(w, "Attack Rate          : %.4f\n", s.AttackRate())
	fmt.Fprintf(w, "Contacts             : %d\n", s.Contacts)
	fmt.Fprintf(w, "Recoveries           : %d\n", s.Recoveries)
	fmt.Fprintf(w, "Forecasts Rejected   : %d\n", s.ForecastsRejected)
	fmt.Fprintf(w, "Forecast Efficiency  : %.4f\n", s.ForecastEfficiency())
	fmt.Fprintf(w, "End Time             : %.4f\n", s.EndTime)
	if len(s.InfectiousPeriods) > 0 {
		sorted := append([]float64(nil), s.InfectiousPeriods...)
		sort.Float64s(sorted)
		fmt.Fprintf(w, "Infectious Period    : mean %.4f, p50 %.4f, p90 %.4f\n",
			CalculateMean(sorted), CalculatePercentile(sorted, 50), CalculatePercentile(sorted, 90))
	}
}
