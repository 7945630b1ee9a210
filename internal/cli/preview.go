package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/roach88/tween/internal/ir"
	"github.com/roach88/tween/internal/preview"
	"github.com/roach88/tween/internal/tween"
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions

	// NewScreen overrides the terminal screen (for testing).
	// If nil, stdout must be a terminal and tcell.NewScreen is used.
	NewScreen func() (tcell.Screen, error)

	// Scheduler overrides the tick source (for testing).
	Scheduler tween.Scheduler
}

// PreviewResult summarises a finished preview.
type PreviewResult struct {
	Name   string      `json:"name"`
	Frames int         `json:"frames"`
	Last   ir.ValueSet `json:"last"`
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preview <specs-dir> <name>",
		Short: "Animate a tween in the terminal",
		Long: `Animate a tween definition in the terminal in real time.

Each key is drawn as a bar that fills from its from value to its to value
as the tween runs. Press q, Esc or Ctrl-C to stop early.

Example:
  tween preview ./specs slide`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(opts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runPreview(opts *PreviewOptions, specsDir, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	specs, err := loadTweens(specsDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile specs", err)
	}
	spec, err := findTween(specs, name)
	if err != nil {
		return WrapExitError(ExitCommandError, "unknown tween", err)
	}

	newScreen := opts.NewScreen
	if newScreen == nil {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return NewExitError(ExitCommandError, "preview needs a terminal on stdout; use run to print samples instead")
		}
		newScreen = tcell.NewScreen
	}

	screen, err := newScreen()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open terminal", err)
	}
	if err := screen.Init(); err != nil {
		return WrapExitError(ExitCommandError, "failed to initialise terminal", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tweenOpts := []tween.Option{tween.WithLogger(logger.With("tween", spec.Name))}
	if opts.Scheduler != nil {
		tweenOpts = append(tweenOpts, tween.WithScheduler(opts.Scheduler))
	}

	renderer, runErr := preview.Run(ctx, screen, *spec, tweenOpts...)
	// The terminal is restored before anything else is printed.
	screen.Fini()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return WrapExitError(ExitCommandError, "preview failed", runErr)
	}

	result := PreviewResult{Name: spec.Name}
	if renderer != nil {
		result.Frames = renderer.Frames()
		result.Last = renderer.Last()
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "Previewed %s: %d frame(s), last %s\n", result.Name, result.Frames, formatValues(result.Last))
	return nil
}
