package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"irishgrants/internal/estimator"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const replHelp = `commands:
  county <name>   select a county
  price <text>    type a price, e.g. 35000 or €35,000
  slide <n>       move the slider to n
  show            print the current estimate
  quit            leave`

type ReplOptions struct {
	GlobalOptions

	Price string
}

func NewCmdRepl() *cobra.Command {
	o := &ReplOptions{GlobalOptions: DefaultGlobalOptions()}
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Drive the calculator interactively, one input per line.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ReplOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVarP(&o.Price, "price", "p", o.Price, "Starting vehicle price")
}

// Run reads commands from in until quit or EOF. Every command that changes
// the session prints the new state.
func (o *ReplOptions) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	st := estimator.New(o.canonicalCounty())
	if o.Price != "" {
		st = estimator.Reduce(st, estimator.Event{Kind: estimator.EnterPriceText, Text: o.Price})
	}
	if err := o.print(out, st); err != nil {
		return err
	}

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch strings.ToLower(cmd) {
		case "quit", "exit":
			return nil
		case "help", "?":
			fmt.Fprintln(out, replHelp)
			continue
		case "show":
		case "county":
			if _, ok := estimator.CanonicalCounty(arg); !ok {
				fmt.Fprintf(out, "unknown county %q\n", arg)
			}
			st = estimator.Reduce(st, estimator.Event{Kind: estimator.SelectCounty, County: arg})
		case "price":
			st = estimator.Reduce(st, estimator.Event{Kind: estimator.EnterPriceText, Text: arg})
		case "slide":
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				fmt.Fprintf(out, "slide needs a number, got %q\n", arg)
				continue
			}
			st = estimator.Reduce(st, estimator.Event{Kind: estimator.SlidePrice, Price: v})
		default:
			fmt.Fprintf(out, "unknown command %q (try help)\n", cmd)
			continue
		}
		if err := o.print(out, st); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (o *ReplOptions) print(out io.Writer, st estimator.State) error {
	if o.JSON {
		b, err := json.Marshal(st)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}
	fmt.Fprintf(out, "%s | price %s | grant %s | you pay %s\n", st.SelectedCounty,
		estimator.FormatEuro(st.VehiclePrice), estimator.FormatEuro(float64(st.GrantAmount)),
		estimator.FormatEuro(st.FinalPrice))
	if st.InputError != "" {
		fmt.Fprintf(out, "  ! %s\n", st.InputError)
	}
	return nil
}
