package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/transmission-sim/transmission-sim/sim"
	"github.com/transmission-sim/transmission-sim/sim/output"
	"github.com/transmission-sim/transmission-sim/sim/params"
	"github.com/transmission-sim/transmission-sim/sim/trace"
)

// SummaryFileName is the JSON run summary written under the output directory.
const SummaryFileName = "summary.json"

var (
	// Parameter file and overrides; flags win only when explicitly set
	configPath     string  // YAML parameter file
	seed           int64   // Seed for every RNG stream
	maxTime        float64 // Simulation horizon
	populationSize int     // Number of people
	outputDir      string  // Directory for events.jsonl and summary.json
	traceLevel     string  // Forecast decision tracing: none or forecasts

	// Run outputs
	logLevel    string // Log verbosity level
	eventsDB    string // Optional SQLite event store
	metricsFile string // Optional Prometheus textfile
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "transmission-sim",
	Short: "Stochastic transmission simulator with forecast thinning",
}

// runCmd executes one simulation from a parameter file plus flag overrides
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the transmission simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		p, err := resolveParams(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Debugf("Parameters:\n%s", p)

		startTime := time.Now()
		if _, err := runSimulation(cmd.Context(), p, runOutputs{EventsDB: eventsDB, MetricsFile: metricsFile}, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Infof("Simulation complete in %v.", time.Since(startTime).Round(time.Millisecond))
	},
}

// runOutputs names the optional sinks of a run.
type runOutputs struct {
	EventsDB    string
	MetricsFile string
}

// runResult is what a finished run leaves behind.
type runResult struct {
	RunID string
	Stats *sim.RunStats
	Trace *trace.SimulationTrace
}

// registerParamFlags binds the parameter override flags to cmd.
func registerParamFlags(cmd *cobra.Command) {
	d := params.Default()
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML parameter file")
	cmd.Flags().Int64Var(&seed, "seed", d.Seed, "Seed for the simulation RNG streams")
	cmd.Flags().Float64Var(&maxTime, "max-time", d.MaxTime, "Simulation horizon")
	cmd.Flags().IntVar(&populationSize, "population", d.PopulationSize, "Number of people")
	cmd.Flags().StringVar(&outputDir, "output-dir", d.OutputDir, "Directory for events.jsonl and summary.json")
	cmd.Flags().StringVar(&traceLevel, "trace", d.TraceLevel, "Forecast decision tracing (none, forecasts)")
}

// resolveParams loads --config (or the defaults) and applies every flag the
// user set explicitly on cmd.
func resolveParams(cmd *cobra.Command) (*params.Params, error) {
	p := params.Default()
	if configPath != "" {
		loaded, err := params.Load(configPath)
		if err != nil {
			return nil, err
		}
		p = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		p.Seed = seed
	}
	if flags.Changed("max-time") {
		p.MaxTime = maxTime
	}
	if flags.Changed("population") {
		p.PopulationSize = populationSize
	}
	if flags.Changed("output-dir") {
		p.OutputDir = outputDir
	}
	if flags.Changed("trace") {
		p.TraceLevel = traceLevel
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// runSimulation runs p to completion, writing events.jsonl and summary.json
// under p.OutputDir plus the optional outputs, and prints the statistics to w.
func runSimulation(ctx context.Context, p *params.Params, outs runOutputs, w io.Writer) (*runResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	runID := uuid.NewString()
	logrus.Infof("Starting run %s: population=%d, horizon=%v, seed=%d", runID, p.PopulationSize, p.MaxTime, p.Seed)

	jsonl, err := output.NewJSONLSink(filepath.Join(p.OutputDir, output.EventsFileName))
	if err != nil {
		return nil, err
	}
	sinks := output.MultiSink{jsonl}

	if outs.EventsDB != "" {
		store := output.NewSQLiteSink(outs.EventsDB, runID)
		if err := store.Init(ctx); err != nil {
			_ = sinks.Close()
			return nil, fmt.Errorf("opening event store %s: %w", outs.EventsDB, err)
		}
		sinks = append(sinks, store)
	}

	var metrics *output.MetricsSink
	if outs.MetricsFile != "" {
		metrics, err = output.NewMetricsSink(prometheus.NewRegistry())
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}
		sinks = append(sinks, metrics)
	}

	var tr *trace.SimulationTrace
	if p.TraceLevel == params.TraceLevelForecasts {
		tr = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelForecasts})
	}

	s, err := sim.NewFromParams(p, sinks, tr)
	if err != nil {
		_ = sinks.Close()
		return nil, err
	}
	s.Run()
	if err := s.Close(); err != nil {
		return nil, err
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(outs.MetricsFile); err != nil {
			return nil, err
		}
	}

	s.Stats.Print(w)
	if tr != nil {
		printTraceSummary(w, trace.Summarize(tr))
	}
	if err := s.Stats.SaveSummary(filepath.Join(p.OutputDir, SummaryFileName)); err != nil {
		return nil, err
	}
	return &runResult{RunID: runID, Stats: s.Stats, Trace: tr}, nil
}

func printTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Forecast Trace ===")
	fmt.Fprintf(w, "Forecasts Evaluated  : %d (%d persons)\n", ts.TotalForecasts, ts.UniquePersons)
	fmt.Fprintf(w, "Accepted / Expected  : %d / %.1f\n", ts.AcceptedCount, ts.ExpectedAccepted)
	fmt.Fprintf(w, "Accept Probability   : mean %.4f, min %.4f\n", ts.MeanAcceptProbability, ts.MinAcceptProbability)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	registerParamFlags(runCmd)
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&eventsDB, "events-db", "", "SQLite file to store the event stream in (optional)")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Prometheus textfile to write event counters to (optional)")

	rootCmd.AddCommand(runCmd)
}
