package renderer

import (
	"fmt"
	"runtime"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/math"
	"github.com/spaghettifunk/rerender/engine/renderer/components"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
	"github.com/spaghettifunk/rerender/engine/renderer/software"
)

type RendererType uint8

const (
	Software RendererType = iota
)

type Renderer struct {
	backend   RendererBackend
	pointSize int
}

type Config struct {
	Type RendererType
	// Workers bounds the goroutines the backend rasterises with; 0 uses every CPU.
	Workers   int
	PointSize int
}

func New(cfg Config) (*Renderer, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pointSize := cfg.PointSize
	if pointSize <= 0 {
		pointSize = 1
	}

	var backend RendererBackend
	switch cfg.Type {
	case Software:
		backend = software.New(workers)
	default:
		return nil, fmt.Errorf("renderer type %d: %w", cfg.Type, core.ErrInvalidConfig)
	}
	return NewWithBackend(backend, pointSize), nil
}

// NewWithBackend wraps an already constructed backend.
func NewWithBackend(backend RendererBackend, pointSize int) *Renderer {
	return &Renderer{backend: backend, pointSize: pointSize}
}

func (r *Renderer) Initialize() error {
	return r.backend.Initialize()
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

// Render draws the instances with the given mode and background colour.
func (r *Renderer) Render(instances []metadata.Instance, camera *components.Camera, mode metadata.RenderMode, background math.Vec3) (*metadata.RenderedView, error) {
	view, err := r.backend.Render(instances, camera, metadata.RenderOptions{
		Mode:       mode,
		Background: background,
		PointSize:  r.pointSize,
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return view, nil
}
