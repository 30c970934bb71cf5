package recipe_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/soypat/livecad"
	"github.com/soypat/livecad/form3/obj3/thread"
	"github.com/soypat/livecad/helpers/matter"
	"github.com/soypat/livecad/recipe"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestDefaultSourceMatchesBuiltin(t *testing.T) {
	interpreted, err := recipe.Load(recipe.DefaultSource)
	if err != nil {
		t.Fatal(err)
	}
	if interpreted.Package != "hexbolt" {
		t.Errorf("package name: got %q", interpreted.Package)
	}
	compiled, err := recipe.Builtin("hexbolt")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(compiled.Parameters(), interpreted.Parameters()); diff != "" {
		t.Fatalf("parameter declarations differ (-compiled +interpreted):\n%s", diff)
	}
	v, err := livecad.Resolve(compiled.Parameters(), map[string]float64{
		thread.ParamLength:     12,
		thread.ParamPitch:      1.25,
		thread.ParamResolution: 32,
	})
	if err != nil {
		t.Fatal(err)
	}
	want, err := livecad.Run(compiled, v)
	if err != nil {
		t.Fatal(err)
	}
	got, err := livecad.Run(interpreted, v)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want.Faces, got.Faces); diff != "" {
		t.Fatalf("faces differ:\n%s", diff)
	}
	if len(want.Vertices) != len(got.Vertices) {
		t.Fatalf("vertex count: got %d, want %d", len(got.Vertices), len(want.Vertices))
	}
	for i := range want.Vertices {
		if r3.Norm(r3.Sub(want.Vertices[i], got.Vertices[i])) > 1e-9 {
			t.Fatalf("vertex %d: got %v, want %v", i, got.Vertices[i], want.Vertices[i])
		}
	}
}

func TestInterpretedGenerationFailure(t *testing.T) {
	r, err := recipe.Load(recipe.DefaultSource)
	if err != nil {
		t.Fatal(err)
	}
	v, err := livecad.Resolve(r.Parameters(), map[string]float64{"diameter_m": 3, "pitch": 4})
	if err != nil {
		t.Fatal(err)
	}
	_, err = livecad.Run(r, v)
	if !errors.Is(err, livecad.ErrGeneration) {
		t.Errorf("expected generation failure, got %v", err)
	}
}

func TestLoadWithoutPackageClause(t *testing.T) {
	const src = `
import (
	"github.com/soypat/livecad"
	"github.com/soypat/livecad/form3"
)

func Parameters() []livecad.Parameter {
	return []livecad.Parameter{
		livecad.Real("radius", 2, 1, 5),
		livecad.Integer("sections", 12, 3, 64),
	}
}

func Generate(v livecad.Values) (*livecad.Mesh, error) {
	return form3.Cylinder(v["radius"], 1, v.Int("sections"))
}
`
	r, err := recipe.Load(src)
	if err != nil {
		t.Fatal(err)
	}
	v, err := livecad.Resolve(r.Parameters(), map[string]float64{"sections": 8})
	if err != nil {
		t.Fatal(err)
	}
	m, err := livecad.Run(r, v)
	if err != nil {
		t.Fatal(err)
	}
	if m.NumVertices() != 2*8+2 || m.NumFaces() != 4*8 {
		t.Errorf("got %d vertices %d faces", m.NumVertices(), m.NumFaces())
	}
}

func TestRecipeCompensatesHoleForMaterial(t *testing.T) {
	const src = `package sleeve

import (
	"github.com/soypat/livecad"
	"github.com/soypat/livecad/form3"
	"github.com/soypat/livecad/helpers/matter"
)

func Parameters() []livecad.Parameter {
	return []livecad.Parameter{livecad.Real("hole", 6, 1, 20)}
}

func Generate(v livecad.Values) (*livecad.Mesh, error) {
	return form3.Cylinder(matter.PLA.InternalDimScale(v["hole"])/2, 1, 16)
}
`
	r, err := recipe.Load(src)
	if err != nil {
		t.Fatal(err)
	}
	v, err := livecad.Resolve(r.Parameters(), map[string]float64{"hole": 8})
	if err != nil {
		t.Fatal(err)
	}
	m, err := livecad.Run(r, v)
	if err != nil {
		t.Fatal(err)
	}
	want := matter.PLA.InternalDimScale(8) / 2
	if want <= 4 {
		t.Fatalf("compensated radius %g should exceed the nominal 4", want)
	}
	if got := m.Bounds().Max.X; math.Abs(got-want) > 1e-9 {
		t.Errorf("hole radius: got %g, want %g", got, want)
	}
}

func TestLoadFailures(t *testing.T) {
	for _, test := range []struct {
		name string
		src  string
	}{
		{
			name: "forbidden import",
			src: `package bad
import "os"
func Parameters() []livecad.Parameter { os.Exit(1); return nil }`,
		},
		{
			name: "syntax",
			src:  `package bad; func Parameters() [`,
		},
		{
			name: "missing generate",
			src: `package bad
import "github.com/soypat/livecad"
func Parameters() []livecad.Parameter { return nil }`,
		},
		{
			name: "wrong signature",
			src: `package bad
import "github.com/soypat/livecad"
func Parameters() []livecad.Parameter { return nil }
func Generate(v map[string]int) *livecad.Mesh { return nil }`,
		},
		{
			name: "bad parameters",
			src: `package bad
import "github.com/soypat/livecad"
func Parameters() []livecad.Parameter { return []livecad.Parameter{livecad.Real("a", 1, 2, 0)} }
func Generate(v livecad.Values) (*livecad.Mesh, error) { return nil, nil }`,
		},
	} {
		_, err := recipe.Load(test.src)
		if !errors.Is(err, livecad.ErrRecipeLoad) {
			t.Errorf("%s: expected ErrRecipeLoad, got %v", test.name, err)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bolt.go")
	if err := os.WriteFile(path, []byte(recipe.DefaultSource), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := recipe.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	_, err := recipe.LoadFile(filepath.Join(dir, "missing.go"))
	if !errors.Is(err, livecad.ErrRecipeLoad) {
		t.Errorf("expected ErrRecipeLoad, got %v", err)
	}
}

func TestBuiltins(t *testing.T) {
	if diff := cmp.Diff([]string{"hexbolt"}, recipe.Builtins()); diff != "" {
		t.Error(diff)
	}
	if _, err := recipe.Builtin("gear"); !errors.Is(err, livecad.ErrRecipeLoad) {
		t.Errorf("expected ErrRecipeLoad, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	g, err := recipe.Open("")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.(thread.HexBolt); !ok {
		t.Errorf("empty ref should open hexbolt, got %T", g)
	}
	path := filepath.Join(t.TempDir(), "bolt.go")
	if err := os.WriteFile(path, []byte(recipe.DefaultSource), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err = recipe.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.(*recipe.Recipe); !ok {
		t.Errorf("path ref should load a recipe, got %T", g)
	}
}
