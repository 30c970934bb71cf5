package livecad

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Failure classes of the generation pipeline. All of them are recoverable:
// a failed regeneration leaves the previously generated mesh untouched.
var (
	// ErrInvalidParameterSpec is returned when a recipe declares a parameter
	// with inconsistent bounds.
	ErrInvalidParameterSpec = errors.New("invalid parameter spec")
	// ErrParameterValue is returned when a parameter value is unknown to the
	// recipe or falls outside of its declared bounds.
	ErrParameterValue = errors.New("bad parameter value")
	// ErrRecipeLoad is returned when a recipe does not expose the Generator contract.
	ErrRecipeLoad = errors.New("recipe load failure")
	// ErrGeneration is matched by every *GenerationError.
	ErrGeneration = errors.New("generation failure")
	// ErrIO is returned when a mesh cannot be written to its destination.
	ErrIO = errors.New("io failure")
)

// GenerationError is returned when a recipe fails to produce a valid mesh.
// It carries the parameter values that triggered the failure.
type GenerationError struct {
	Values Values
	Err    error
}

func (e *GenerationError) Error() string {
	return "generation failed with " + e.Values.String() + ": " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is reports GenerationError as an ErrGeneration.
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

func generationErr(v Values, format string, args ...any) *GenerationError {
	return &GenerationError{Values: v.Clone(), Err: fmt.Errorf(format, args...)}
}

// String formats the values sorted by name.
func (v Values) String() string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(v[name], 'g', -1, 64))
	}
	b.WriteByte('}')
	return b.String()
}
