package main

import (
	"fmt"
	"io"

	"irishgrants/internal/estimator"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type GlobalOptions struct {
	County string
	JSON   bool
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{County: estimator.DefaultCounty}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.County, "county", "c", o.County, "County used for the charger installer link")
	fs.BoolVar(&o.JSON, "json", o.JSON, "Print JSON instead of text")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	if _, ok := estimator.CanonicalCounty(o.County); !ok {
		return fmt.Errorf("unknown county %q", o.County)
	}
	return nil
}

// canonicalCounty is only called after Validate.
func (o *GlobalOptions) canonicalCounty() string {
	c, _ := estimator.CanonicalCounty(o.County)
	return c
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
