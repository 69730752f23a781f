package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soypat/fncad/octree"
	"github.com/soypat/fncad/render"
	"gonum.org/v1/gonum/spatial/r3"
)

const sceneTOML = `
[domain]
center = [0, 0, 0]
size = 4

[octree]
min_size = 0.25
budget = 20000

[mesh]
optimize = false

[export]
scale = 10

[logging]
level = "warn"

[[shape]]
type = "sphere"
radius = 1

[[shape]]
type = "box"
op = "difference"
center = [1, 0, 0]
size = [1, 1, 1]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(writeFile(t, "scene.toml", sceneTOML))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Octree.Budget != 20000 || cfg.Octree.MinSize != 0.25 {
		t.Errorf("octree config not decoded: %+v", cfg.Octree)
	}
	if cfg.Mesh.Optimize {
		t.Error("optimize should be overridden to false")
	}
	if cfg.Export.Scale != 10 {
		t.Errorf("scale=%v, want 10", cfg.Export.Scale)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Export.STL != "out.stl" || cfg.Logging.MaxAge != 7 {
		t.Errorf("defaults lost: %+v %+v", cfg.Export, cfg.Logging)
	}
	if len(cfg.Shape) != 2 || cfg.Shape[1].Op != "difference" || cfg.Shape[1].Center != [3]float64{1, 0, 0} {
		t.Fatalf("shapes not decoded: %+v", cfg.Shape)
	}
	if err := cfg.validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	_, err := loadConfig(writeFile(t, "bad.toml", "[octree]\nbudjet = 10\n"))
	if err == nil || !strings.Contains(err.Error(), "budjet") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*config){
		"no shapes":   func(c *config) { c.Shape = nil },
		"zero size":   func(c *config) { c.Domain.Size = 0 },
		"nan min":     func(c *config) { c.Octree.MinSize = math.NaN() },
		"zero budget": func(c *config) { c.Octree.Budget = 0 },
		"no stl":      func(c *config) { c.Export.STL = "" },
	} {
		cfg := defaultConfig()
		cfg.Shape = []shapeConfig{{Type: "sphere", Radius: 1}}
		mutate(&cfg)
		if err := cfg.validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestBuildField(t *testing.T) {
	scene, err := buildField([]shapeConfig{
		{Type: "sphere", Radius: 1},
		{Type: "box", Op: "difference", Center: [3]float64{1, 0, 0}, Size: [3]float64{1, 1, 1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		p      r3.Vec
		inside bool
	}{
		{p: r3.Vec{X: -0.5}, inside: true},
		{p: r3.Vec{X: 0.8}, inside: false}, // carved out by the box
		{p: r3.Vec{Y: 0.8}, inside: true},
		{p: r3.Vec{Z: 1.5}, inside: false},
	} {
		got := scene.Evaluate(test.p) < 0
		if got != test.inside {
			t.Errorf("inside(%v)=%v, want %v", test.p, got, test.inside)
		}
	}
}

func TestBuildFieldSDFX(t *testing.T) {
	scene, err := buildField([]shapeConfig{
		{Type: "cylinder", Height: 2, Radius: 0.5},
		{Type: "sdfx-sphere", Op: "union", Radius: 0.75, Center: [3]float64{0, 0, 1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if scene.Evaluate(r3.Vec{}) >= 0 {
		t.Error("origin should be inside cylinder")
	}
	if scene.Evaluate(r3.Vec{Z: 1.6}) >= 0 {
		t.Error("point should be inside sphere cap")
	}
	if scene.Evaluate(r3.Vec{X: 1}) <= 0 {
		t.Error("point should be outside scene")
	}
}

func TestBuildFieldErrors(t *testing.T) {
	for _, shapes := range [][]shapeConfig{
		nil,
		{{Type: "torus"}},
		{{Type: "sphere", Radius: -1}},
		{{Type: "sphere", Radius: 1}, {Type: "sphere", Radius: 1, Op: "xor"}},
		{{Type: "box", Size: [3]float64{1, 0, 1}}},
	} {
		if _, err := buildField(shapes); err == nil {
			t.Errorf("expected error for %+v", shapes)
		}
	}
}

func TestExampleScenes(t *testing.T) {
	files, err := filepath.Glob("../../examples/*.toml")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no example scenes found")
	}
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			cfg, err := loadConfig(file)
			if err != nil {
				t.Fatal(err)
			}
			if err := cfg.validate(); err != nil {
				t.Fatal(err)
			}
			scene, err := buildField(cfg.Shape)
			if err != nil {
				t.Fatal(err)
			}
			if testing.Short() && cfg.Octree.Budget > 500000 {
				t.Skip("large scene skipped in short mode")
			}
			tree, err := octree.New(scene, vec(cfg.Domain.Center), cfg.Domain.Size)
			if err != nil {
				t.Fatal(err)
			}
			cells, err := tree.Subdivide(context.Background(), octree.SubdivideConfig{
				MinSize: cfg.Octree.MinSize,
				Budget:  cfg.Octree.Budget,
			})
			if err != nil {
				t.Fatal(err)
			}
			// Relaxation moves vertices but never changes connectivity.
			m, err := render.Extract(context.Background(), tree, render.ExtractConfig{})
			if err != nil {
				t.Fatal(err)
			}
			if m.IsEmpty() {
				t.Fatal("scene produced an empty mesh")
			}
			if err := m.CheckManifold(weldTolerance(cfg)); err != nil {
				t.Errorf("%d cells: %v", cells, err)
			}
		})
	}
}
