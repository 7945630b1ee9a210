package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tween/internal/compiler"
	"github.com/roach88/tween/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledTween is the output form of one compiled definition.
// Durations are rendered as Go duration strings.
type CompiledTween struct {
	Name     string      `json:"name"`
	From     ir.ValueSet `json:"from"`
	To       ir.ValueSet `json:"to"`
	Duration string      `json:"duration"`
	Refresh  string      `json:"refresh"`
	Easing   string      `json:"easing"`
	SpecHash string      `json:"spec_hash"`
}

// CompilationResult holds the compiled definitions.
type CompilationResult struct {
	IRVersion string                     `json:"ir_version"`
	Tweens    []CompiledTween            `json:"tweens"`
	Warnings  []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile CUE tween definitions to JSON",
		Long: `Compile CUE tween definitions to their JSON form.

The compiler parses CUE files, validates every definition under the
top-level "tween" field, and outputs one entry per definition together
with its content hash.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		return outputCompileError(formatter, code, message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)
	for _, spec := range loadResult.Tweens {
		formatter.VerboseLog("Compiled tween: %s", spec.Name)
	}

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	// Definitions that cannot run fail compilation; warnings are reported.
	var (
		invalid  []error
		warnings []compiler.ValidationError
	)
	for _, verr := range compiler.Validate(loadResult.Tweens) {
		if verr.IsWarning() {
			warnings = append(warnings, verr)
			continue
		}
		invalid = append(invalid, verr)
	}
	if len(invalid) > 0 {
		return outputCompileErrors(formatter, invalid)
	}

	result, err := buildCompilationResult(loadResult.Tweens, warnings)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	if opts.Output != "" {
		if err := writeIRToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

func buildCompilationResult(specs []*ir.TweenSpec, warnings []compiler.ValidationError) (*CompilationResult, error) {
	result := &CompilationResult{
		IRVersion: ir.IRVersion,
		Tweens:    make([]CompiledTween, 0, len(specs)),
		Warnings:  warnings,
	}
	for _, spec := range specs {
		hash, err := ir.SpecHash(*spec)
		if err != nil {
			return nil, fmt.Errorf("hashing tween %s: %w", spec.Name, err)
		}
		result.Tweens = append(result.Tweens, CompiledTween{
			Name:     spec.Name,
			From:     spec.From,
			To:       spec.To,
			Duration: spec.Duration.String(),
			Refresh:  spec.Refresh.String(),
			Easing:   spec.Easing,
			SpecHash: hash,
		})
	}
	return result, nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d tween(s)\n\n", len(result.Tweens))

	fmt.Fprintln(w, "Tweens:")
	for _, t := range result.Tweens {
		fmt.Fprintf(w, "  %s: %d key(s), %s over %s every %s\n",
			t.Name, len(t.From), t.Easing, t.Duration, t.Refresh)
	}
	fmt.Fprintln(w)

	printWarnings(formatter, result.Warnings)

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote compiled tweens to %s\n", outputFile)
	}

	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	failure := NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}
		if err := formatter.Failure(cliErrors[0], cliErrors); err != nil {
			return err
		}
		return failure
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✗ Compilation failed")
	fmt.Fprintln(w)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(w, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(w, "  %s: %s\n\n", code, message)
	}

	return failure
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var verr compiler.ValidationError
	if errors.As(err, &verr) {
		return verr.Code, fmt.Sprintf("tween.%s: %s: %s", verr.Tween, verr.Field, verr.Message)
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeIRToFile writes the compilation result to a file.
func writeIRToFile(result *CompilationResult, filename string) error {
	// Indented for readability; canonical JSON is used only for hashing.
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling tweens: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
