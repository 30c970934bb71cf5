package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/livecad"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures an offscreen preview. The mesh is fitted in a bi-unit
// cube centered at the origin before rendering so the camera parameters
// do not depend on part size.
type View struct {
	// Width and Height of output image in pixels.
	Width, Height int
	// Supersampling factor, 1 disables antialiasing.
	Scale int
	// what position (point) to look at
	LookAt r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eye r3.Vec
	// Vertical field of view in degrees.
	Fovy      float64
	Near, Far float64
	// Object and background colors as hex strings.
	Color, Background string
}

// DefaultView looks at the part from an isometric-like position with Z up.
func DefaultView() View {
	return View{
		Width:      800,
		Height:     600,
		Scale:      2,
		Up:         r3.Vec{Z: 1},
		Eye:        r3.Vec{X: 3, Y: 3, Z: 3},
		Fovy:       30,
		Near:       1,
		Far:        10,
		Color:      "#468966",
		Background: "#FFF8E3",
	}
}

// Preview rasterizes m as seen from view using a phong shader.
func Preview(m *livecad.Mesh, view View) (image.Image, error) {
	if m == nil || len(m.Faces) == 0 {
		return nil, errors.New("empty mesh")
	}
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("preview dimensions must be positive")
	}
	if view.Scale < 1 {
		view.Scale = 1
	}
	var (
		eye    = fauxgl.V(view.Eye.X, view.Eye.Y, view.Eye.Z)          // camera position
		center = fauxgl.V(view.LookAt.X, view.LookAt.Y, view.LookAt.Z) // view center position
		up     = fauxgl.V(view.Up.X, view.Up.Y, view.Up.Z)             // up vector
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()                  // light direction
	)
	mesh := toFauxgl(m)
	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	// create a rendering context
	context := fauxgl.NewContext(view.Width*view.Scale, view.Height*view.Scale)
	context.ClearColorBufferWith(fauxgl.HexColor(view.Background))
	// create transformation matrix and light direction
	aspect := float64(view.Width) / float64(view.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(view.Fovy, aspect, view.Near, view.Far)
	// use builtin phong shader
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(view.Color)
	context.Shader = shader
	context.DrawMesh(mesh)
	img := context.Image()
	if view.Scale > 1 {
		// downsample image for antialiasing
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return img, nil
}

// SavePreview renders m and saves the result as a PNG file at path.
func SavePreview(path string, m *livecad.Mesh, view View) error {
	img, err := Preview(m, view)
	if err != nil {
		return err
	}
	if err := fauxgl.SavePNG(path, img); err != nil {
		return fmt.Errorf("%w: %w", livecad.ErrIO, err)
	}
	return nil
}

// RenderPNG renders m and writes the PNG encoded image to w.
func RenderPNG(w io.Writer, m *livecad.Mesh, view View) error {
	img, err := Preview(m, view)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("%w: %w", livecad.ErrIO, err)
	}
	return nil
}

func toFauxgl(m *livecad.Mesh) *fauxgl.Mesh {
	triangles := make([]*fauxgl.Triangle, 0, len(m.Faces))
	for _, t := range m.Triangles() {
		if t.Degenerate(0) {
			continue
		}
		triangles = append(triangles, fauxgl.NewTriangleForPoints(
			fauxgl.V(t[0].X, t[0].Y, t[0].Z),
			fauxgl.V(t[1].X, t[1].Y, t[1].Z),
			fauxgl.V(t[2].X, t[2].Y, t[2].Z),
		))
	}
	return fauxgl.NewTriangleMesh(triangles)
}
