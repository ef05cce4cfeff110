// Package software is a CPU renderer backend. Triangles are rasterised with a
// z-buffer and perspective correct colour interpolation; point clouds are drawn
// as square splats. Row bands of the target are rasterised concurrently.
package software

import (
	"fmt"
	m "math"
	"sync"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/math"
	"github.com/spaghettifunk/rerender/engine/renderer/components"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

const (
	// points closer than this to the camera plane are not drawn
	nearPlane = 1e-4
	// barycentric slack so pixels sitting exactly on an edge or vertex are kept
	edgeEpsilon = 1e-4
)

type Backend struct {
	workers int
}

func New(workers int) *Backend {
	if workers < 1 {
		workers = 1
	}
	return &Backend{workers: workers}
}

func (b *Backend) Initialize() error {
	core.LogDebug("software renderer using %d workers", b.workers)
	return nil
}

func (b *Backend) Shutdown() error {
	return nil
}

type vertex struct {
	u, v float64
	invZ float64
	ok   bool
}

type drawList struct {
	verts   []vertex
	colors  []math.Vec3
	indices []uint32
	points  bool
}

type target struct {
	width, height int
	depth         []float32
	color         []float32
	wantColor     bool
	pointSize     int
}

func (b *Backend) Render(instances []metadata.Instance, camera *components.Camera, opts metadata.RenderOptions) (*metadata.RenderedView, error) {
	if camera == nil || camera.Width <= 0 || camera.Height <= 0 {
		return nil, fmt.Errorf("render needs a camera with a positive size: %w", core.ErrInvalidConfig)
	}

	lists := make([]drawList, 0, len(instances))
	for i, inst := range instances {
		switch g := inst.Geometry.(type) {
		case *metadata.Mesh:
			if len(g.Colors) != len(g.Vertices) {
				return nil, fmt.Errorf("instance %d: %d colours for %d vertices: %w", i, len(g.Colors), len(g.Vertices), core.ErrDimensionMismatch)
			}
			lists = append(lists, drawList{verts: project(g.Vertices, inst.Offset, camera), colors: g.Colors, indices: g.Indices})
		case *metadata.PointCloud:
			if len(g.Colors) != len(g.Points) {
				return nil, fmt.Errorf("instance %d: %d colours for %d points: %w", i, len(g.Colors), len(g.Points), core.ErrCloudLengthMismatch)
			}
			lists = append(lists, drawList{verts: project(g.Points, inst.Offset, camera), colors: g.Colors, points: true})
		case nil:
			continue
		default:
			return nil, fmt.Errorf("instance %d: unsupported geometry %T", i, g)
		}
	}

	pointSize := opts.PointSize
	if pointSize < 1 {
		pointSize = 1
	}
	t := &target{
		width:     camera.Width,
		height:    camera.Height,
		depth:     make([]float32, camera.Width*camera.Height),
		wantColor: opts.Mode.WantsColor(),
		pointSize: pointSize,
	}
	if t.wantColor {
		t.color = make([]float32, camera.Width*camera.Height*3)
	}

	var wg sync.WaitGroup
	for _, r := range splitRows(t.height, b.workers) {
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			for li := range lists {
				t.drawBand(&lists[li], y0, y1)
			}
		}(r[0], r[1])
	}
	wg.Wait()

	view := &metadata.RenderedView{Width: t.width, Height: t.height}
	if t.wantColor {
		bg := opts.Background
		for i, z := range t.depth {
			if z == 0 {
				t.color[i*3], t.color[i*3+1], t.color[i*3+2] = bg.X, bg.Y, bg.Z
			}
		}
		view.Color = t.color
	}
	if opts.Mode.WantsDepth() {
		view.Depth = t.depth
	}
	return view, nil
}

func project(points []math.Vec3, offset math.Vec3, camera *components.Camera) []vertex {
	out := make([]vertex, len(points))
	for i, p := range points {
		p = p.Add(offset)
		if p.Z <= nearPlane {
			continue
		}
		u, v, ok := camera.Project(p)
		out[i] = vertex{u: u, v: v, invZ: 1 / float64(p.Z), ok: ok}
	}
	return out
}

func (t *target) drawBand(list *drawList, y0, y1 int) {
	if list.points {
		for i := range list.verts {
			if list.verts[i].ok {
				t.splat(list.verts[i], list.colors[i], y0, y1)
			}
		}
		return
	}
	for i := 0; i+2 < len(list.indices); i += 3 {
		ia, ib, ic := list.indices[i], list.indices[i+1], list.indices[i+2]
		a, b, c := list.verts[ia], list.verts[ib], list.verts[ic]
		if !a.ok || !b.ok || !c.ok {
			continue
		}
		t.triangle(a, b, c, list.colors[ia], list.colors[ib], list.colors[ic], y0, y1)
	}
}

func edge(a, b vertex, px, py float64) float64 {
	return (b.u-a.u)*(py-a.v) - (b.v-a.v)*(px-a.u)
}

func (t *target) triangle(a, b, c vertex, ca, cb, cc math.Vec3, y0, y1 int) {
	area := edge(a, b, c.u, c.v)
	if area == 0 {
		return
	}
	minX := max(0, int(m.Ceil(min(a.u, b.u, c.u)-edgeEpsilon)))
	maxX := min(t.width-1, int(m.Floor(max(a.u, b.u, c.u)+edgeEpsilon)))
	minY := max(y0, int(m.Ceil(min(a.v, b.v, c.v)-edgeEpsilon)))
	maxY := min(y1-1, int(m.Floor(max(a.v, b.v, c.v)+edgeEpsilon)))
	if minX > maxX || minY > maxY {
		return
	}

	for y := minY; y <= maxY; y++ {
		py := float64(y)
		for x := minX; x <= maxX; x++ {
			px := float64(x)
			l0 := edge(b, c, px, py) / area
			l1 := edge(c, a, px, py) / area
			l2 := edge(a, b, px, py) / area
			if l0 < -edgeEpsilon || l1 < -edgeEpsilon || l2 < -edgeEpsilon {
				continue
			}
			invZ := l0*a.invZ + l1*b.invZ + l2*c.invZ
			if invZ <= 0 {
				continue
			}
			z := float32(1 / invZ)
			idx := y*t.width + x
			if cur := t.depth[idx]; cur != 0 && z >= cur {
				continue
			}
			t.depth[idx] = z
			if t.wantColor {
				w0, w1, w2 := l0*a.invZ/invZ, l1*b.invZ/invZ, l2*c.invZ/invZ
				t.color[idx*3] = clamp01(w0*float64(ca.X) + w1*float64(cb.X) + w2*float64(cc.X))
				t.color[idx*3+1] = clamp01(w0*float64(ca.Y) + w1*float64(cb.Y) + w2*float64(cc.Y))
				t.color[idx*3+2] = clamp01(w0*float64(ca.Z) + w1*float64(cb.Z) + w2*float64(cc.Z))
			}
		}
	}
}

func (t *target) splat(p vertex, col math.Vec3, y0, y1 int) {
	half := (t.pointSize - 1) / 2
	left := int(m.Round(p.u)) - half
	top := int(m.Round(p.v)) - half
	z := float32(1 / p.invZ)
	for y := max(top, y0); y < min(top+t.pointSize, y1); y++ {
		for x := max(left, 0); x < min(left+t.pointSize, t.width); x++ {
			idx := y*t.width + x
			if cur := t.depth[idx]; cur != 0 && z >= cur {
				continue
			}
			t.depth[idx] = z
			if t.wantColor {
				t.color[idx*3], t.color[idx*3+1], t.color[idx*3+2] = col.X, col.Y, col.Z
			}
		}
	}
}

func clamp01(v float64) float32 {
	return float32(math.Clamp(v, 0, 1))
}

// splitRows divides h rows into at most workers contiguous bands.
func splitRows(h, workers int) [][2]int {
	if workers < 1 {
		workers = 1
	}
	if workers > h {
		workers = h
	}
	rows := make([][2]int, 0, workers)
	step := h / workers
	start := 0
	for i := 0; i < workers; i++ {
		end := start + step
		if i == workers-1 {
			end = h
		}
		rows = append(rows, [2]int{start, end})
		start = end
	}
	return rows
}
