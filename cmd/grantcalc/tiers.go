package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"irishgrants/internal/estimator"

	"github.com/spf13/cobra"
)

func NewCmdTiers() *cobra.Command {
	o := DefaultGlobalOptions()
	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "Print the grant ladder.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTiers(cmd.OutOrStdout(), o.JSON)
		},
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&o.JSON, "json", o.JSON, "Print JSON instead of text")
	return cmd
}

func printTiers(out io.Writer, asJSON bool) error {
	if asJSON {
		return writeJSON(out, map[string]interface{}{
			"tiers":     estimator.Tiers(),
			"max_grant": estimator.MaxGrant(),
		})
	}
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "PRICE FROM\tGRANT")
	for _, t := range estimator.Tiers() {
		fmt.Fprintf(w, "%s\t%s\n", estimator.FormatEuro(float64(t.MinPrice)), estimator.FormatEuro(float64(t.Grant)))
	}
	fmt.Fprintf(w, "under %s\t%s\n", estimator.FormatEuro(estimator.MinPrice), estimator.FormatEuro(0))
	return w.Flush()
}
