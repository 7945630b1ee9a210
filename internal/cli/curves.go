package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tween/internal/easing"
)

// CurvesOptions holds flags for the curves command.
type CurvesOptions struct {
	*RootOptions
	Steps int
}

// CurveTable is one curve evaluated at evenly spaced progress points.
type CurveTable struct {
	Name    string    `json:"name"`
	Samples []float64 `json:"samples"`
}

// CurvesResult holds the tabulated curves.
type CurvesResult struct {
	Steps  int          `json:"steps"`
	Curves []CurveTable `json:"curves"`
}

// NewCurvesCommand creates the curves command.
func NewCurvesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CurvesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "curves [curve...]",
		Short: "Tabulate easing curves",
		Long: `Evaluate easing curves at evenly spaced progress points from 0 to 1.

With no arguments every supported curve is listed. Names are case
insensitive. LINEAR is shown as the progress itself, which is the shape a
linear tween traces.

Examples:
  tween curves
  tween curves quad_in bounce_out --steps 20
  tween curves --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurves(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Steps, "steps", 10, "number of intervals between 0 and 1")

	return cmd
}

func runCurves(opts *CurvesOptions, names []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Steps < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--steps must be at least 1, got %d", opts.Steps))
	}

	curves := easing.All()
	if len(names) > 0 {
		curves = curves[:0:0]
		for _, name := range names {
			curve, ok := easing.Parse(name)
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown easing %q", name))
			}
			curves = append(curves, curve)
		}
	}

	result := CurvesResult{Steps: opts.Steps, Curves: make([]CurveTable, len(curves))}
	for i, curve := range curves {
		result.Curves[i] = CurveTable{Name: string(curve), Samples: easing.Sample(curve, opts.Steps)}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	outputCurvesText(formatter, result)
	return nil
}

func outputCurvesText(formatter *OutputFormatter, result CurvesResult) {
	w := formatter.Writer

	nameWidth := len("progress")
	for _, c := range result.Curves {
		nameWidth = max(nameWidth, len(c.Name))
	}

	var header strings.Builder
	fmt.Fprintf(&header, "%-*s", nameWidth, "progress")
	for i := 0; i <= result.Steps; i++ {
		fmt.Fprintf(&header, " %7.3f", float64(i)/float64(result.Steps))
	}
	fmt.Fprintln(w, header.String())

	for _, c := range result.Curves {
		var row strings.Builder
		fmt.Fprintf(&row, "%-*s", nameWidth, c.Name)
		for _, v := range c.Samples {
			fmt.Fprintf(&row, " %7.3f", v)
		}
		fmt.Fprintln(w, row.String())
	}
}
