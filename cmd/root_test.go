package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transmission-sim/transmission-sim/sim/output"
	"github.com/transmission-sim/transmission-sim/sim/params"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testRunParams(t *testing.T) *params.Params {
	t.Helper()
	p := params.Default()
	p.PopulationSize = 300
	p.PInitialIncidence = 0.03
	p.MaxTime = 25
	p.OutputDir = t.TempDir()
	return p
}

func TestResolveParams_FlagsOverrideOnlyWhenChanged(t *testing.T) {
	// GIVEN a config file setting seed and population
	path := writeConfig(t, "seed: 9\npopulation_size: 50\nmax_time: 12\n")
	cmd := &cobra.Command{Use: "test"}
	registerParamFlags(cmd)
	require.NoError(t, cmd.Flags().Set("config", path))

	// WHEN only --population is set on the command line
	require.NoError(t, cmd.Flags().Set("population", "70"))
	p, err := resolveParams(cmd)

	// THEN the flag wins for population and the file wins elsewhere
	require.NoError(t, err)
	assert.Equal(t, 70, p.PopulationSize)
	assert.Equal(t, int64(9), p.Seed)
	assert.Equal(t, 12.0, p.MaxTime)
	assert.Equal(t, params.Default().OutputDir, p.OutputDir)
}

func TestResolveParams_DefaultsWithoutConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	registerParamFlags(cmd)
	p, err := resolveParams(cmd)
	require.NoError(t, err)
	assert.Equal(t, params.Default(), p)
}

func TestResolveParams_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(cmd *cobra.Command)
	}{
		{"missing config file", func(cmd *cobra.Command) {
			_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "absent.yaml"))
		}},
		{"unknown config field", func(cmd *cobra.Command) {
			_ = cmd.Flags().Set("config", writeConfig(t, "populaton_size: 10\n"))
		}},
		{"invalid override", func(cmd *cobra.Command) {
			_ = cmd.Flags().Set("population", "0")
		}},
		{"invalid trace level", func(cmd *cobra.Command) {
			_ = cmd.Flags().Set("trace", "everything")
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "test"}
			registerParamFlags(cmd)
			tc.setup(cmd)
			_, err := resolveParams(cmd)
			assert.Error(t, err)
		})
	}
}

func TestRunSimulation_WritesEveryOutput(t *testing.T) {
	// GIVEN a traced run with the SQLite store and metrics file enabled
	p := testRunParams(t)
	p.TraceLevel = params.TraceLevelForecasts
	dir := t.TempDir()
	outs := runOutputs{
		EventsDB:    filepath.Join(dir, "events.db"),
		MetricsFile: filepath.Join(dir, "run.prom"),
	}
	var stdout bytes.Buffer

	// WHEN the run completes
	result, err := runSimulation(context.Background(), p, outs, &stdout)
	require.NoError(t, err)

	// THEN the run id is a UUID and the statistics were printed
	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err)
	assert.Contains(t, stdout.String(), "=== Simulation Statistics ===")
	assert.Contains(t, stdout.String(), "=== Forecast Trace ===")
	require.NotNil(t, result.Trace)
	assert.NotEmpty(t, result.Trace.Forecasts)

	// AND events.jsonl replays to the same statistics
	replayed, err := output.ReplayFile(filepath.Join(p.OutputDir, output.EventsFileName), p.PopulationSize)
	require.NoError(t, err)
	assert.Equal(t, result.Stats.Infections, replayed.Infections)
	assert.Equal(t, result.Stats.Contacts, replayed.Contacts)
	assert.Equal(t, result.Stats.ForecastsRejected, replayed.ForecastsRejected)

	// AND the SQLite store holds the same number of events under the run id
	stored, err := output.ReadRun(context.Background(), outs.EventsDB, result.RunID)
	require.NoError(t, err)
	total := replayed.Infections + replayed.Contacts + replayed.ForecastsRejected + replayed.Recoveries
	assert.Len(t, stored, total)

	// AND the metrics file and summary exist
	prom, err := os.ReadFile(outs.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), fmt.Sprintf(`transmission_sim_events_total{type="infection"} %d`, result.Stats.Infections))
	_, err = os.Stat(filepath.Join(p.OutputDir, SummaryFileName))
	assert.NoError(t, err)
}

func TestRunSimulation_SameSeedSameEventFile(t *testing.T) {
	a := testRunParams(t)
	b := testRunParams(t)

	_, err := runSimulation(context.Background(), a, runOutputs{}, &bytes.Buffer{})
	require.NoError(t, err)
	_, err = runSimulation(context.Background(), b, runOutputs{}, &bytes.Buffer{})
	require.NoError(t, err)

	first, err := os.ReadFile(filepath.Join(a.OutputDir, output.EventsFileName))
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(b.OutputDir, output.EventsFileName))
	require.NoError(t, err)
	assert.NotEmpty(t, first)
	assert.Equal(t, string(first), string(second))
}

func TestRunSimulation_BadEventStore(t *testing.T) {
	p := testRunParams(t)
	_, err := runSimulation(context.Background(), p,
		runOutputs{EventsDB: filepath.Join(t.TempDir(), "missing", "events.db")}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParamsCommand_PrintsEffectiveParameters(t *testing.T) {
	configPath = ""
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"params", "--population", "77"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	got, err := params.Parse(&out)
	require.NoError(t, err)
	assert.Equal(t, 77, got.PopulationSize)
	assert.Equal(t, params.Default().Seed, got.Seed)
}

func TestSummarizeCommand_ReplaysEventFile(t *testing.T) {
	// GIVEN a finished run
	p := testRunParams(t)
	result, err := runSimulation(context.Background(), p, runOutputs{}, &bytes.Buffer{})
	require.NoError(t, err)

	// WHEN the event file is summarized
	configPath = ""
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"summarize", filepath.Join(p.OutputDir, output.EventsFileName), "--population", "300"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	// THEN the printed statistics match the run
	assert.Contains(t, out.String(), fmt.Sprintf("Infections           : %d (%d seeded)",
		result.Stats.Infections, result.Stats.SeededInfections))
	assert.Contains(t, out.String(), "Population           : 300")
}
