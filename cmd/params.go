package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Print the effective parameters as YAML",
	Long:  "Load --config (or the defaults), apply flag overrides, validate, and print the result. Useful as a starting parameter file.",
	Run: func(cmd *cobra.Command, args []string) {
		p, err := resolveParams(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), p.String())
	},
}

func init() {
	registerParamFlags(paramsCmd)
	rootCmd.AddCommand(paramsCmd)
}
