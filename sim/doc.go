// Package sim provides the discrete-event transmission simulator: a single
// infectious agent spreading through a well-mixed population, with each
// infected person's next transmission forecast by thinning their
// infectiousness hazard.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - infection_status.go: InfectionStatus state machine (susceptible → infectious → recovered)
//   - forecast.go: the forecast / evaluate / reschedule loop
//   - simulator.go: the event queue, clock, and run loop
//
// # Architecture
//
// The sim package owns the kernel; supporting pieces live in sub-packages:
//   - sim/ratefn/: hazard functions, the Scaled view, the per-person Registry, generators
//   - sim/kindindex/: process-wide lazy numbering of rate-function and property kinds
//   - sim/params/: run parameters with defaults, validators, and YAML loading
//   - sim/trace/: forecast decision records
//   - sim/output/: EventSink implementations (JSONL, SQLite, Prometheus, memory)
//
// # Forecasting
//
// When a person becomes infectious, ScheduleForecastLoop draws e ~ Exp(1) and
// inverts the person's hazard, scaled by an upper bound on their modifier and
// shifted by the time already spent infectious, to get the next candidate
// transmission time. At that time EvaluateForecast compares the actual hazard
// with the hazard the forecast was drawn against and accepts with probability
// current/forecast. Accepted forecasts become contacts; either way the loop
// reschedules until the hazard has no capacity left.
//
// # Key Interfaces
//
//   - Event: timestamped unit of work executed by the Simulator
//   - InfectiousnessModifier: forecast-time bound and actual multiplier on a person's hazard
//   - EventSink: destination for emitted SimulationEvents
//   - ratefn.Generator: builds each newly infected person's hazard
package sim
