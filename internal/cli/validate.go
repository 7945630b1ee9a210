package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tween/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Tweens   int                        `json:"tweens"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate definitions without producing output",
		Long: `Validate CUE tween definitions without writing compiled output.

Reports every problem found rather than stopping at the first one.
Definitions that would run but behave surprisingly, such as an unknown
easing name or a refresh longer than the duration, are reported as
warnings and do not fail validation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result, err := ValidateSpecsDir(specsDir)
	if err != nil {
		code, message := parseCompileError(err)
		_ = formatter.Error(code, message, nil)
		// Unloadable directories are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
	}

	formatter.VerboseLog("Validated %d tween(s) in %s", result.Tweens, specsDir)

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// ValidateSpecsDir validates all definitions in a directory.
// The returned error is set only when the directory itself cannot be loaded.
func ValidateSpecsDir(specsDir string) (ValidationResult, error) {
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		return ValidationResult{}, loadErrors[0]
	}

	result := ValidationResult{Tweens: len(loadResult.Tweens)}

	for _, err := range loadErrors {
		result.Errors = append(result.Errors, loadErrorToValidation(err))
	}

	for _, verr := range compiler.Validate(loadResult.Tweens) {
		if verr.IsWarning() {
			result.Warnings = append(result.Warnings, verr)
		} else {
			result.Errors = append(result.Errors, verr)
		}
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// loadErrorToValidation converts a loader error, keeping its position.
func loadErrorToValidation(err error) compiler.ValidationError {
	verr := compiler.ValidationError{
		Field:    "load",
		Message:  err.Error(),
		Code:     ErrCodeGeneric,
		Severity: compiler.SeverityError,
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		verr.Tween = loadErr.Tween
		verr.Code = loadErr.Code
		verr.Message = loadErr.Message
		if loadErr.Field != "" {
			verr.Field = loadErr.Field
		}
		if loadErr.Pos.IsValid() {
			verr.Message = fmt.Sprintf("%s:%d: %s", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Message)
		}
	}
	return verr
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	printWarnings(formatter, result.Warnings)
	fmt.Fprintf(formatter.Writer, "✓ All %d tween(s) valid\n", result.Tweens)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	// Validation failures = exit code 1 (test/validation failure)
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))

	if formatter.JSON() {
		first := CLIError{Code: result.Errors[0].Code, Message: result.Errors[0].Message}
		if err := formatter.Failure(first, result); err != nil {
			return err
		}
		return failure
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)

	for _, verr := range result.Errors {
		fmt.Fprintf(w, "  %s\n\n", verr.Error())
	}
	printWarnings(formatter, result.Warnings)

	return failure
}

func printWarnings(formatter *OutputFormatter, warnings []compiler.ValidationError) {
	for _, warning := range warnings {
		fmt.Fprintf(formatter.Writer, "warning %s\n", warning.Error())
	}
	if len(warnings) > 0 {
		fmt.Fprintln(formatter.Writer)
	}
}
