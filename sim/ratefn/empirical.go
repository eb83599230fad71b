package ratefn

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// EmpiricalRate is a piecewise-linear hazard through (time, value) knots,
// multiplied by a scale factor. The rate is 0 before the first knot and after
// the last one. Empirical hazards are usually relative, so the scale converts
// them into absolute rates of infection.
type EmpiricalRate struct {
	times  []float64
	values []float64 // already multiplied by scale
	cum    []float64 // cum[i] = CumRate(times[i])
}

// NewEmpiricalRate builds an EmpiricalRate. times must be strictly increasing
// and non-negative; values must be non-negative; scale must be non-negative.
func NewEmpiricalRate(times, values []float64, scale float64) (*EmpiricalRate, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("empirical rate: %d times but %d values", len(times), len(values))
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("empirical rate: at least 2 knots required, got %d", len(times))
	}
	if scale < 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("empirical rate: scale must be a finite non-negative number, got %v", scale)
	}
	e := &EmpiricalRate{
		times:  make([]float64, len(times)),
		values: make([]float64, len(values)),
		cum:    make([]float64, len(times)),
	}
	for i := range times {
		if math.IsNaN(times[i]) || math.IsInf(times[i], 0) || times[i] < 0 {
			return nil, fmt.Errorf("empirical rate: time[%d] must be finite and non-negative, got %v", i, times[i])
		}
		if i > 0 && times[i] <= times[i-1] {
			return nil, fmt.Errorf("empirical rate: times must be strictly increasing, time[%d]=%v after %v", i, times[i], times[i-1])
		}
		if math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			return nil, fmt.Errorf("empirical rate: value[%d] must be finite, got %v", i, values[i])
		}
		if values[i] < 0 {
			return nil, fmt.Errorf("%w: value[%d]=%v", ErrNegativeRate, i, values[i])
		}
		e.times[i] = times[i]
		e.values[i] = values[i] * scale
	}
	for i := 1; i < len(e.times); i++ {
		dt := e.times[i] - e.times[i-1]
		e.cum[i] = e.cum[i-1] + dt*(e.values[i-1]+e.values[i])/2
	}
	return e, nil
}

// segment returns i such that times[i] <= t < times[i+1], or -1 outside the support.
func (e *EmpiricalRate) segment(t float64) int {
	n := len(e.times)
	if t < e.times[0] || t > e.times[n-1] {
		return -1
	}
	i := sort.SearchFloat64s(e.times, t)
	if i < n && e.times[i] == t {
		if i == n-1 {
			return n - 2
		}
		return i
	}
	return i - 1
}

func (e *EmpiricalRate) Rate(t float64) float64 {
	i := e.segment(t)
	if i < 0 {
		return 0
	}
	dt := t - e.times[i]
	slope := (e.values[i+1] - e.values[i]) / (e.times[i+1] - e.times[i])
	return e.values[i] + slope*dt
}

func (e *EmpiricalRate) CumRate(t float64) float64 {
	n := len(e.times)
	if t <= e.times[0] {
		return 0
	}
	if t >= e.times[n-1] {
		return e.cum[n-1]
	}
	i := e.segment(t)
	dt := t - e.times[i]
	return e.cum[i] + dt*(e.values[i]+e.Rate(t))/2
}

func (e *EmpiricalRate) InverseCumRate(events float64) (float64, bool) {
	n := len(e.times)
	if events < 0 || events > e.cum[n-1] {
		return 0, false
	}
	if events == 0 {
		return 0, true
	}
	j := sort.SearchFloat64s(e.cum, events)
	if e.cum[j] == events {
		return e.times[j], true
	}
	i := j - 1
	remaining := events - e.cum[i]
	v0 := e.values[i]
	slope := (e.values[i+1] - e.values[i]) / (e.times[i+1] - e.times[i])
	// Solve remaining = v0*dt + slope*dt^2/2 in the form that stays stable as slope -> 0.
	disc := v0*v0 + 2*slope*remaining
	if disc < 0 {
		disc = 0
	}
	dt := 2 * remaining / (v0 + math.Sqrt(disc))
	t := e.times[i] + dt
	if t > e.times[i+1] {
		t = e.times[i+1]
	}
	return t, true
}

func (e *EmpiricalRate) InfectiousDuration() float64 {
	return e.times[len(e.times)-1]
}

// LoadEmpiricalLibrary reads a CSV library of empirical hazards with the
// header "id,time,value". Rows of the same id form one curve; curves are
// returned in order of first appearance, each sorted by time.
func LoadEmpiricalLibrary(r io.Reader, scale float64) ([]*EmpiricalRate, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empirical library is empty")
		}
		return nil, fmt.Errorf("reading empirical library header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"id", "time", "value"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("empirical library missing column %q", name)
		}
	}

	type knot struct{ t, v float64 }
	var order []string
	curves := map[string][]knot{}
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading empirical library line %d: %w", line, err)
		}
		id := rec[cols["id"]]
		t, err := strconv.ParseFloat(rec[cols["time"]], 64)
		if err != nil {
			return nil, fmt.Errorf("empirical library line %d: time: %w", line, err)
		}
		v, err := strconv.ParseFloat(rec[cols["value"]], 64)
		if err != nil {
			return nil, fmt.Errorf("empirical library line %d: value: %w", line, err)
		}
		if _, seen := curves[id]; !seen {
			order = append(order, id)
		}
		curves[id] = append(curves[id], knot{t, v})
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("empirical library has no curves")
	}

	lib := make([]*EmpiricalRate, 0, len(order))
	for _, id := range order {
		knots := curves[id]
		sort.SliceStable(knots, func(a, b int) bool { return knots[a].t < knots[b].t })
		times := make([]float64, len(knots))
		values := make([]float64, len(knots))
		for i, k := range knots {
			times[i], values[i] = k.t, k.v
		}
		curve, err := NewEmpiricalRate(times, values, scale)
		if err != nil {
			return nil, fmt.Errorf("curve %q: %w", id, err)
		}
		lib = append(lib, curve)
	}
	return lib, nil
}
