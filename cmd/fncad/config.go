package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	sdfx "github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/fncad"
	"github.com/soypat/fncad/field"
	"gonum.org/v1/gonum/spatial/r3"
)

type config struct {
	Domain  domainConfig
	Octree  octreeConfig
	Mesh    meshConfig
	Export  exportConfig
	Logging logConfig
	Shape   []shapeConfig
}

type domainConfig struct {
	Center [3]float64
	Size   float64
}

type octreeConfig struct {
	MinSize float64 `toml:"min_size"`
	Budget  int
}

type meshConfig struct {
	Optimize bool
}

type exportConfig struct {
	STL   string
	PNG   string
	Scale float32
}

type logConfig struct {
	Level   string
	Logfile string
	MaxSize int `toml:"max_log_size"`
	MaxAge  int `toml:"max_log_age"`
}

// shapeConfig describes one primitive of the scene. The first shape is the
// base solid and each following shape is combined into it with Op.
type shapeConfig struct {
	Type string
	// Op is one of union (default), difference or intersection.
	Op        string
	Center    [3]float64
	Radius    float64
	Height    float64
	Round     float64
	Size      [3]float64
	Scale     float64
	Thickness float64
}

func defaultConfig() config {
	return config{
		Domain: domainConfig{Size: 4},
		Octree: octreeConfig{MinSize: 0.25, Budget: 100000},
		Mesh:   meshConfig{Optimize: true},
		Export: exportConfig{STL: "out.stl", Scale: 100},
		Logging: logConfig{
			Level:   "info",
			MaxSize: 10,
			MaxAge:  7,
		},
	}
}

// loadConfig returns the default configuration overridden by the TOML file
// at path, if path is not empty.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("could not decode TOML config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}
	return cfg, nil
}

func (cfg config) validate() error {
	switch {
	case !(cfg.Domain.Size > 0):
		return errors.New("domain size must be positive")
	case !(cfg.Octree.MinSize > 0):
		return errors.New("octree min_size must be positive")
	case cfg.Octree.Budget < 1:
		return errors.New("octree budget must be positive")
	case len(cfg.Shape) == 0:
		return errors.New("scene has no shapes")
	case cfg.Export.STL == "":
		return errors.New("no STL output path")
	case cfg.Export.Scale <= 0:
		return errors.New("export scale must be positive")
	}
	return nil
}

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

// buildField compiles the scene's shapes into a single field.
func buildField(shapes []shapeConfig) (fncad.Field, error) {
	var scene fncad.Field
	for i, sh := range shapes {
		f, err := sh.field()
		if err != nil {
			return nil, fmt.Errorf("shape %d (%s): %w", i, sh.Type, err)
		}
		if scene == nil {
			scene = f
			continue
		}
		switch strings.ToLower(sh.Op) {
		case "", "union":
			scene = field.Union(scene, f)
		case "difference":
			scene = field.Difference(scene, f)
		case "intersection":
			scene = field.Intersection(scene, f)
		default:
			return nil, fmt.Errorf("shape %d: unknown op %q", i, sh.Op)
		}
	}
	if scene == nil {
		return nil, errors.New("scene has no shapes")
	}
	return scene, nil
}

func (sh shapeConfig) field() (fncad.Field, error) {
	var f fncad.Field
	switch strings.ToLower(sh.Type) {
	case "sphere":
		if sh.Radius <= 0 {
			return nil, errors.New("radius must be positive")
		}
		f = field.Sphere(sh.Radius)
	case "box":
		size := vec(sh.Size)
		if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
			return nil, errors.New("box size must be positive")
		}
		f = field.Box(size)
	case "gyroid":
		if sh.Scale <= 0 || sh.Thickness <= 0 {
			return nil, errors.New("gyroid scale and thickness must be positive")
		}
		f = field.Gyroid(sh.Scale, sh.Thickness)
	case "cylinder":
		s, err := sdfx.Cylinder3D(sh.Height, sh.Radius, sh.Round)
		if err != nil {
			return nil, err
		}
		f = field.FromSDFX(s)
	case "sdfx-box":
		s, err := sdfx.Box3D(v3.Vec{X: sh.Size[0], Y: sh.Size[1], Z: sh.Size[2]}, sh.Round)
		if err != nil {
			return nil, err
		}
		f = field.FromSDFX(s)
	case "sdfx-sphere":
		s, err := sdfx.Sphere3D(sh.Radius)
		if err != nil {
			return nil, err
		}
		f = field.FromSDFX(s)
	default:
		return nil, fmt.Errorf("unknown shape type %q", sh.Type)
	}
	if c := vec(sh.Center); c != (r3.Vec{}) {
		f = field.Translate(f, c)
	}
	return f, nil
}
