package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"irishgrants/internal/estimator"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type EstimateOptions struct {
	GlobalOptions

	Price string
}

type estimateResult struct {
	Input         string  `json:"input"`
	VehiclePrice  float64 `json:"vehicle_price"`
	GrantAmount   int     `json:"grant_amount"`
	FinalPrice    float64 `json:"final_price"`
	Eligible      bool    `json:"eligible"`
	County        string  `json:"county"`
	InstallerPath string  `json:"installer_path"`
}

func DefaultEstimateOptions() *EstimateOptions {
	return &EstimateOptions{GlobalOptions: DefaultGlobalOptions()}
}

func NewCmdEstimate() *cobra.Command {
	o := DefaultEstimateOptions()
	cmd := &cobra.Command{
		Use:   "estimate [PRICE...]",
		Short: "Estimate the grant and final price for one or more vehicle prices.",
		Example: "  grantcalc estimate 42000 \"€29,995\"\n" +
			"  grantcalc estimate --price 35000 --county Cork --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd.OutOrStdout(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *EstimateOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVarP(&o.Price, "price", "p", o.Price, "Vehicle price, used when no PRICE argument is given")
}

func (o *EstimateOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if len(args) == 0 && o.Price == "" {
		return fmt.Errorf("give at least one price, or set --price")
	}
	return nil
}

// Run evaluates every price as typed. Like the HTTP estimate endpoint it does
// not clamp, so prices under €10,000 report no grant.
func (o *EstimateOptions) Run(ctx context.Context, out io.Writer, args []string) error {
	inputs := args
	if len(inputs) == 0 {
		inputs = []string{o.Price}
	}
	county := o.canonicalCounty()

	results := make([]estimateResult, 0, len(inputs))
	for _, in := range inputs {
		price, err := estimator.ParsePrice(in)
		if err == nil {
			err = estimator.CheckPrice(price)
		}
		if err != nil {
			return fmt.Errorf("%q: %w", in, err)
		}
		grant := estimator.EstimateGrant(price)
		results = append(results, estimateResult{
			Input:         in,
			VehiclePrice:  price,
			GrantAmount:   grant,
			FinalPrice:    estimator.FinalPrice(price),
			Eligible:      grant > 0,
			County:        county,
			InstallerPath: estimator.InstallerPath(county),
		})
	}

	if o.JSON {
		return writeJSON(out, results)
	}
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "PRICE\tGRANT\tFINAL PRICE")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", estimator.FormatEuro(r.VehiclePrice),
			estimator.FormatEuro(float64(r.GrantAmount)), estimator.FormatEuro(r.FinalPrice))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Chargers in %s: %s\n", county, estimator.InstallerPath(county))
	return nil
}
