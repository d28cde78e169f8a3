// Command grantcalc estimates SEAI EV grants from the terminal.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := NewGrantCalcCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewGrantCalcCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grantcalc [command]",
		Short: "grantcalc estimates the SEAI grant for a new electric vehicle.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	cmd.AddCommand(NewCmdEstimate())
	cmd.AddCommand(NewCmdTiers())
	cmd.AddCommand(NewCmdRepl())
	return cmd
}
