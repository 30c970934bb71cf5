package render

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/soypat/livecad"
)

// Format is an STL file encoding.
type Format int

const (
	Binary Format = iota
	ASCII
)

func (f Format) String() string {
	switch f {
	case Binary:
		return "binary"
	case ASCII:
		return "ascii"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat parses "binary" or "ascii". The empty string is Binary.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "binary", "bin":
		return Binary, nil
	case "ascii", "text":
		return ASCII, nil
	}
	return 0, fmt.Errorf("unknown STL format %q", s)
}

// CreateSTL writes m to a new STL file at path. Any failure is
// returned wrapping livecad.ErrIO.
func CreateSTL(path string, m *livecad.Mesh, f Format) error {
	fp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", livecad.ErrIO, err)
	}
	bw := bufio.NewWriter(fp)
	switch f {
	case ASCII:
		err = WriteASCIISTL(bw, solidName(path), m)
	default:
		err = WriteSTL(bw, m)
	}
	if err == nil {
		err = bw.Flush()
	}
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: writing %s: %w", livecad.ErrIO, path, err)
	}
	return nil
}

// RenderAll reads the full contents of a Renderer and returns the slice read.
// It does not return error on io.EOF, like the io.ReadAll implementation.
func RenderAll(r Renderer) ([]livecad.Triangle, error) {
	var err error
	var nt int
	result := make([]livecad.Triangle, 0, 1<<12)
	buf := make([]livecad.Triangle, 1024)
	for err == nil {
		nt, err = r.ReadTriangles(buf)
		result = append(result, buf[:nt]...)
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}

func solidName(path string) string {
	name := path[strings.LastIndexAny(path, `/\`)+1:]
	return strings.TrimSuffix(name, ".stl")
}
