package render_test

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/livecad/render"
	"gonum.org/v1/plot/cmpimg"
)

// imgDelta a normalized delta parameter to describe how close the matching
// should be performed (imgDelta=0: perfect match, imgDelta=1, loose match)
const imgDelta = 0.01

func TestPreviewDeterministic(t *testing.T) {
	model := smallBolt(t)
	view := render.DefaultView()
	view.Width, view.Height = 240, 180
	dir := t.TempDir()
	png1 := filepath.Join(dir, "a.png")
	png2 := filepath.Join(dir, "b.png")
	for _, path := range []string{png1, png2} {
		if err := render.SavePreview(path, model, view); err != nil {
			t.Fatal(err)
		}
	}
	if !equalImages(t, png1, png2) {
		t.Error("preview rendering is not deterministic")
	}
	img, err := render.Preview(model, view)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 240 || b.Dy() != 180 {
		t.Errorf("preview size %v", b)
	}
}

func TestRenderPNG(t *testing.T) {
	view := render.DefaultView()
	view.Width, view.Height, view.Scale = 64, 48, 1
	var buf bytes.Buffer
	if err := render.RenderPNG(&buf, smallBolt(t), view); err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Errorf("got %dx%d image", cfg.Width, cfg.Height)
	}
	if err := render.RenderPNG(&buf, nil, view); err == nil {
		t.Error("expected error rendering nil mesh")
	}
}

func TestSaveProfilePlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.png")
	z := []float64{0, 1, 2, 3}
	r := []float64{4, 5, 4, 5}
	if err := render.SaveProfilePlot(path, "profile", z, r); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("empty plot file")
	}
	if err := render.SaveProfilePlot(path, "bad", z[:1], r[:1]); err == nil {
		t.Error("expected error for single sample")
	}
}

func equalImages(t *testing.T, png1, png2 string) bool {
	b1, err := os.ReadFile(png1)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := os.ReadFile(png2)
	if err != nil {
		t.Fatal(err)
	}
	equal, err := cmpimg.EqualApprox("png", b1, b2, imgDelta)
	if err != nil {
		t.Fatal(err)
	}
	return equal
}
