package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/transmission-sim/transmission-sim/sim/output"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <events.jsonl>",
	Short: "Recompute run statistics from a saved event stream",
	Long:  "Replay an events.jsonl file into run statistics. The population size for the attack rate comes from --config or --population.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p, err := resolveParams(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		stats, err := output.ReplayFile(args[0], p.PopulationSize)
		if err != nil {
			logrus.Fatalf("Failed to summarize: %v", err)
		}
		stats.Print(cmd.OutOrStdout())
	},
}

func init() {
	registerParamFlags(summarizeCmd)
	rootCmd.AddCommand(summarizeCmd)
}
