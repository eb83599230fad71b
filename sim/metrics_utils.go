// sim/metrics_utils.go
package sim

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
)

// Bin represents a single histogram bin with its integer key and count.
type Bin struct {
	Key   int `json:"day"`
	Count int `json:"count"`
}

type IntOrFloat64 interface {
	int | int64 | float64
}

// CalculatePercentile is a util function that calculates the p-th percentile
// of a sorted data list, interpolating between neighbours.
func CalculatePercentile[T IntOrFloat64](data []T, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))
	if upperIdx >= n {
		return float64(data[n-1])
	}
	if lowerIdx == upperIdx {
		return float64(data[lowerIdx])
	}
	lowerVal := float64(data[lowerIdx])
	upperVal := float64(data[upperIdx])
	return lowerVal + (upperVal-lowerVal)*(rank-float64(lowerIdx))
}

// CalculateMean is a util function that calculates the mean of a data list
func CalculateMean[T IntOrFloat64](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, number := range numbers {
		sum += float64(number)
	}

	return sum / float64(len(numbers))
}

// Summary is the JSON form of RunStats.
type Summary struct {
	PopulationSize         int     `json:"population_size"`
	Infections             int     `json:"infections"`
	SeededInfections       int     `json:"seeded_infections"`
	Contacts               int     `json:"contacts"`
	Recoveries             int     `json:"recoveries"`
	ForecastsRejected      int     `json:"forecasts_rejected"`
	AttackRate             float64 `json:"attack_rate"`
	ForecastEfficiency     float64 `json:"forecast_efficiency"`
	EndTime                float64 `json:"end_time"`
	MeanInfectiousPeriod   float64 `json:"mean_infectious_period"`
	MedianInfectiousPeriod float64 `json:"median_infectious_period"`
	DailyIncidence         []Bin   `json:"daily_incidence"`
}

// Summary snapshots the statistics.
func (s *RunStats) Summary() Summary {
	sorted := append([]float64(nil), s.InfectiousPeriods...)
	sort.Float64s(sorted)
	return Summary{
		PopulationSize:         s.PopulationSize,
		Infections:             s.Infections,
		SeededInfections:       s.SeededInfections,
		Contacts:               s.Contacts,
		Recoveries:             s.Recoveries,
		ForecastsRejected:      s.ForecastsRejected,
		AttackRate:             s.AttackRate(),
		ForecastEfficiency:     s.ForecastEfficiency(),
		EndTime:                s.EndTime,
		MeanInfectiousPeriod:   CalculateMean(sorted),
		MedianInfectiousPeriod: CalculatePercentile(sorted, 50),
		DailyIncidence:         s.IncidenceBins(),
	}
}

// SaveSummary writes the JSON summary to fileName.
func (s *RunStats) SaveSummary(fileName string) error {
	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", fileName, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logrus.Errorf("Error closing file %s: %v", fileName, closeErr)
		}
	}()

	writer := bufio.NewWriter(file)
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Summary()); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", fileName, err)
	}
	logrus.Debugf("Successfully wrote to '%s'", fileName)
	return nil
}
