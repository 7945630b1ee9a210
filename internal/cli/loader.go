package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/tween/internal/compiler"
	"github.com/roach88/tween/internal/ir"
)

// LoadMode controls how errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the tween definitions loaded from a directory.
type LoadResult struct {
	Tweens    []*ir.TweenSpec // in CUE declaration order
	CUEValue  cue.Value       // The raw CUE value for additional processing
	FileCount int             // Number of CUE files found
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Tween   string // definition label, if the error belongs to one
	Field   string // compiler field, e.g. "from.x" or "duration"
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads and compiles every definition under the top-level "tween"
// field of the CUE package in dir.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
//
// A nil result means the directory itself could not be loaded.
func LoadSpecs(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	var errs []error
	tweensVal := value.LookupPath(cue.ParsePath("tween"))
	if tweensVal.Exists() {
		iter, iterErr := tweensVal.Fields()
		if iterErr != nil {
			return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating tweens: %v", iterErr)}}
		}
		for iter.Next() {
			label := iter.Label()
			spec, compileErr := compiler.CompileTween(iter.Value())
			if compileErr != nil {
				errs = append(errs, convertCompileError(compileErr, label))
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			spec.Name = label
			result.Tweens = append(result.Tweens, spec)
		}
	}

	if len(result.Tweens) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoTweens, Message: "no tween definitions found in specs"})
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// loadTweens loads dir fail-fast and returns its definitions.
func loadTweens(dir string) ([]*ir.TweenSpec, error) {
	result, errs := LoadSpecs(dir, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return result.Tweens, nil
}

// findTween returns the definition called name.
func findTween(specs []*ir.TweenSpec, name string) (*ir.TweenSpec, error) {
	for _, spec := range specs {
		if spec.Name == name {
			return spec, nil
		}
	}
	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.Name
	}
	return nil, fmt.Errorf("tween %q not found (have %s)", name, strings.Join(names, ", "))
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, tween string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Tween:   tween,
			Field:   compileErr.Field,
			Message: fmt.Sprintf("tween.%s: %s", tween, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Tween:   tween,
		Message: fmt.Sprintf("tween.%s: %v", tween, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeNoTweens    = "E008" // No tween field in specs

	// Definition compile errors
	ErrCodeInvalidValues   = "E010" // from/to missing or not flat numbers
	ErrCodeInvalidDuration = "E011" // duration unparseable
	ErrCodeInvalidRefresh  = "E012" // refresh unparseable
	ErrCodeInvalidEasing   = "E013" // easing not a string
	ErrCodeCUE             = "E014" // CUE evaluation error inside a definition
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	root, _, _ := strings.Cut(field, ".")
	switch root {
	case "from", "to":
		return ErrCodeInvalidValues
	case "duration":
		return ErrCodeInvalidDuration
	case "refresh":
		return ErrCodeInvalidRefresh
	case "easing":
		return ErrCodeInvalidEasing
	case "cue":
		return ErrCodeCUE
	default:
		return ErrCodeGeneric
	}
}
