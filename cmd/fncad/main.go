// Command fncad meshes a scene of implicit shapes described in a TOML file
// and writes the result as a binary STL file, optionally with a PNG
// preview.
//
// Usage:
//
//	fncad -config scene.toml [-o out.stl] [-png preview.png] [-v]
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/natefinch/lumberjack"
	"github.com/soypat/fncad"
	"github.com/soypat/fncad/render"
	"github.com/soypat/fncad/task"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fncad:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("fncad", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath = fs.String("config", "", "TOML scene and settings file")
		stlPath = fs.String("o", "", "output STL file, overrides [export] stl")
		pngPath = fs.String("png", "", "write a PNG preview of the STL file, overrides [export] png")
		verbose = fs.Bool("v", false, "enable debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *stlPath != "" {
		cfg.Export.STL = *stlPath
	}
	if *pngPath != "" {
		cfg.Export.PNG = *pngPath
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg.Logging, stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	fncad.SetLogger(log)
	defer fncad.SetLogger(nil)

	scene, err := buildField(cfg.Shape)
	if err != nil {
		return err
	}
	q := task.NewQueue(ctx, 1)
	defer q.Close()
	remove := q.OnProgress(progressLogger(log))
	defer remove()

	start := time.Now()
	p, err := runTask(ctx, q, task.OctreeTask{
		Field:   scene,
		Center:  vec(cfg.Domain.Center),
		Size:    cfg.Domain.Size,
		MinSize: cfg.Octree.MinSize,
		Budget:  cfg.Octree.Budget,
	})
	if err != nil {
		return fmt.Errorf("building octree: %w", err)
	}
	tree := p.Result.(task.OctreeResult)
	log.Info("octree built", "cells", humanize.Comma(int64(tree.Cells)), "elapsed", time.Since(start).Round(time.Millisecond))

	start = time.Now()
	p, err = runTask(ctx, q, task.MeshTask{Field: scene, Octree: tree.Encoded, Optimize: cfg.Mesh.Optimize})
	if err != nil {
		return fmt.Errorf("extracting mesh: %w", err)
	}
	mesh := p.Result.(*render.Mesh)
	log.Info("mesh extracted", "vertices", humanize.Comma(int64(mesh.VertexCount())),
		"triangles", humanize.Comma(int64(mesh.TriangleCount())), "elapsed", time.Since(start).Round(time.Millisecond))
	if mesh.IsEmpty() {
		return errors.New("scene produced an empty mesh, check the domain encloses the shapes")
	}
	if err := mesh.CheckManifold(weldTolerance(cfg)); err != nil {
		log.Warn("mesh is not manifold, try a smaller octree min_size", "err", err)
	}

	n, err := writeSTL(cfg.Export.STL, mesh, cfg.Export.Scale)
	if err != nil {
		return err
	}
	log.Info("wrote STL", "path", cfg.Export.STL, "size", humanize.Bytes(uint64(n)))

	if cfg.Export.PNG != "" {
		if err := render.WritePreviewPNG(cfg.Export.STL, cfg.Export.PNG, render.DefaultPreviewConfig()); err != nil {
			return fmt.Errorf("rendering preview: %w", err)
		}
		log.Info("wrote preview", "path", cfg.Export.PNG)
	}
	return nil
}

// weldTolerance is the distance under which vertices of a mesh extracted
// with cfg are considered the same point. Lattice corners shared by
// neighboring cells coincide exactly, before and after relaxation.
func weldTolerance(cfg config) float64 { return 1e-6 * cfg.Octree.MinSize }

// runTask queues t and waits for it to finish successfully.
func runTask(ctx context.Context, q *task.Queue, t task.Task) (task.Progress, error) {
	id := q.Add(t)
	p, err := q.Wait(ctx, id)
	if err != nil {
		return p, err
	}
	if p.Status != task.StatusCompleted {
		return p, p.Err
	}
	return p, nil
}

func writeSTL(path string, m *render.Mesh, scale float32) (int, error) {
	fp, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer fp.Close()
	w := bufio.NewWriter(fp)
	n, err := render.WriteSTL(w, m, scale)
	if err != nil {
		return n, err
	}
	if err := w.Flush(); err != nil {
		return n, err
	}
	return n, fp.Close()
}

// newLogger returns a text logger writing to stderr and, if configured, to
// a rotating log file.
func newLogger(cfg logConfig, stderr io.Writer) (*slog.Logger, func() error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("logging level: %w", err)
	}
	w := stderr
	closer := func() error { return nil }
	if cfg.Logfile != "" {
		l := &lumberjack.Logger{
			Filename: cfg.Logfile,
			MaxSize:  cfg.MaxSize, // megabytes
			MaxAge:   cfg.MaxAge,  // days
		}
		w = io.MultiWriter(stderr, l)
		closer = l.Close
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}

// progressLogger logs task status changes and every tenth of progress.
func progressLogger(log *slog.Logger) func(task.Progress) {
	var (
		mu     sync.Mutex
		decile = make(map[string]int)
	)
	return func(p task.Progress) {
		mu.Lock()
		defer mu.Unlock()
		d := int(p.Progress * 10)
		last, seen := decile[p.ID]
		if seen && d == last && !p.Status.Done() {
			return
		}
		decile[p.ID] = d
		log.Debug("task progress", "id", p.ID, "kind", p.Kind, "status", string(p.Status), "progress", fmt.Sprintf("%.0f%%", 100*p.Progress))
	}
}
