package render

import (
	"fmt"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/fncad/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// PreviewConfig controls how an STL file is shaded into an image.
type PreviewConfig struct {
	Width, Height int
	// Supersample renders at a multiple of the output size and downsamples
	// for antialiasing.
	Supersample int
	// FovY is the vertical field of view in degrees.
	FovY      float64
	Near, Far float64
	// Eye, LookAt and Up position the camera relative to the mesh after it
	// has been fit in the bi-unit cube.
	Eye, LookAt, Up r3.Vec
	Light           r3.Vec
	Color           string
	Background      string
}

// DefaultPreviewConfig returns a 3/4 view of the model.
func DefaultPreviewConfig() PreviewConfig {
	return PreviewConfig{
		Width:       800,
		Height:      600,
		Supersample: 2,
		FovY:        30,
		Near:        1,
		Far:         10,
		Eye:         d3.Elem(2.4), // iso view.
		Up:          r3.Vec{Z: 1},
		Light:       r3.Vec{X: -0.75, Y: 1, Z: 0.25},
		Color:       "#468966",
		Background:  "#FFF8E3",
	}
}

func fauxVec(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }

// Preview renders the binary STL file at stlPath with a Phong shader.
func Preview(stlPath string, cfg PreviewConfig) (image.Image, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid preview size %dx%d", cfg.Width, cfg.Height)
	}
	scale := max(cfg.Supersample, 1)
	mesh, err := fauxgl.LoadSTL(stlPath)
	if err != nil {
		return nil, err
	}
	var (
		eye    = fauxVec(cfg.Eye)
		center = fauxVec(cfg.LookAt)
		up     = fauxVec(cfg.Up)
		light  = fauxVec(cfg.Light).Normalize()
	)
	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(cfg.Width*scale, cfg.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor(cfg.Background))
	aspect := float64(cfg.Width) / float64(cfg.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(cfg.FovY, aspect, cfg.Near, cfg.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(cfg.Color)
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	img := context.Image()
	return resize.Resize(uint(cfg.Width), uint(cfg.Height), img, resize.Bilinear), nil
}

// WritePreviewPNG renders stlPath with Preview and saves it as a PNG file.
func WritePreviewPNG(stlPath, pngPath string, cfg PreviewConfig) error {
	img, err := Preview(stlPath, cfg)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(pngPath, img)
}
