// Package recipe loads part recipes written in Go source and interprets
// them with yaegi, so a recipe can be edited and reloaded without
// rebuilding the host program.
//
// A recipe source declares two functions:
//
//	func Parameters() []livecad.Parameter
//	func Generate(v livecad.Values) (*livecad.Mesh, error)
//
// It may import math, errors, fmt, the livecad packages and r3. The
// package clause may be omitted.
package recipe

import (
	_ "embed"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path"
	"sort"
	"strconv"

	"github.com/soypat/livecad"
	"github.com/soypat/livecad/form3/obj3/thread"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// DefaultSource is an interpreted hex head bolt recipe. It builds the same
// mesh as the compiled "hexbolt" builtin.
//
//go:embed source/hexbolt.go.txt
var DefaultSource string

// defaultPackage names recipes written without a package clause.
const defaultPackage = "recipe"

var allowedImports = map[string]bool{
	"math":     true,
	"errors":   true,
	"fmt":      true,
	pkgLivecad: true,
	pkgForm3:   true,
	pkgThread:  true,
	pkgMatter:  true,
	pkgR3:      true,
}

var builtins = map[string]livecad.Generator{
	"hexbolt": thread.HexBolt{},
}

// Recipe is a Generator defined by interpreted Go source.
type Recipe struct {
	// Package is the package name declared by the source.
	Package string
	params  []livecad.Parameter
	gen     func(livecad.Values) (*livecad.Mesh, error)
}

var _ livecad.Generator = (*Recipe)(nil) // Compile time check of interface implementation.

// Parameters returns a copy of the recipe's parameter declarations.
func (r *Recipe) Parameters() []livecad.Parameter {
	return append([]livecad.Parameter(nil), r.params...)
}

// Generate runs the interpreted Generate function.
func (r *Recipe) Generate(v livecad.Values) (*livecad.Mesh, error) {
	return r.gen(v)
}

// Load interprets src and returns the recipe it defines. Every failure,
// including invalid parameter declarations, wraps livecad.ErrRecipeLoad.
func Load(src string) (*Recipe, error) {
	r, err := load(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", livecad.ErrRecipeLoad, err)
	}
	return r, nil
}

// LoadFile reads and interprets the recipe at path.
func LoadFile(path string) (*Recipe, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", livecad.ErrRecipeLoad, err)
	}
	return Load(string(b))
}

// Builtin returns a compiled recipe by name.
func Builtin(name string) (livecad.Generator, error) {
	g, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: no builtin recipe %q", livecad.ErrRecipeLoad, name)
	}
	return g, nil
}

// Open returns the builtin recipe named ref or, if there is none,
// loads the recipe source file at path ref. The empty ref opens "hexbolt".
func Open(ref string) (livecad.Generator, error) {
	if ref == "" {
		ref = "hexbolt"
	}
	if g, ok := builtins[ref]; ok {
		return g, nil
	}
	r, err := LoadFile(ref)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Builtins returns the sorted names of compiled recipes.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func load(src string) (r *Recipe, err error) {
	src, pkg, err := checkSource(src)
	if err != nil {
		return nil, err
	}
	i := interp.New(interp.Options{})
	if err := i.Use(allowedStdlib()); err != nil {
		return nil, fmt.Errorf("loading stdlib symbols: %w", err)
	}
	if err := i.Use(symbols); err != nil {
		return nil, fmt.Errorf("loading kernel symbols: %w", err)
	}
	defer func() {
		if a := recover(); a != nil {
			r, err = nil, fmt.Errorf("recipe panicked during load: %v", a)
		}
	}()
	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}
	pv, err := i.Eval(pkg + ".Parameters")
	if err != nil {
		return nil, fmt.Errorf("Parameters function not found: %w", err)
	}
	paramsFunc, ok := pv.Interface().(func() []livecad.Parameter)
	if !ok {
		return nil, errors.New("Parameters has incorrect signature (expected: func() []livecad.Parameter)")
	}
	gv, err := i.Eval(pkg + ".Generate")
	if err != nil {
		return nil, fmt.Errorf("Generate function not found: %w", err)
	}
	genFunc, ok := gv.Interface().(func(livecad.Values) (*livecad.Mesh, error))
	if !ok {
		return nil, errors.New("Generate has incorrect signature (expected: func(livecad.Values) (*livecad.Mesh, error))")
	}
	params := paramsFunc()
	if err := livecad.ValidateParameters(params); err != nil {
		return nil, err
	}
	return &Recipe{Package: pkg, params: params, gen: genFunc}, nil
}

// checkSource adds a package clause to src if missing and verifies its
// imports are allowed. It returns the source to evaluate and its package name.
func checkSource(src string) (string, string, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "recipe.go", src, parser.ImportsOnly)
	if err != nil {
		wrapped := "package " + defaultPackage + "\n\n" + src
		var werr error
		f, werr = parser.ParseFile(fset, "recipe.go", wrapped, parser.ImportsOnly)
		if werr != nil {
			return "", "", fmt.Errorf("parsing recipe: %w", err)
		}
		src = wrapped
	}
	var forbidden []string
	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			return "", "", err
		}
		if !allowedImports[path] {
			forbidden = append(forbidden, path)
		}
	}
	if len(forbidden) > 0 {
		return "", "", fmt.Errorf("forbidden imports detected: %v", forbidden)
	}
	return src, f.Name.Name, nil
}

// allowedStdlib returns the yaegi symbols of the allowed standard library packages.
func allowedStdlib() interp.Exports {
	exports := make(interp.Exports)
	for imp := range allowedImports {
		// Keys have the form "importpath/pkgname".
		key := imp + "/" + path.Base(imp)
		if syms, ok := stdlib.Symbols[key]; ok {
			exports[key] = syms
		}
	}
	return exports
}
