package systems

import (
	"fmt"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/frame"
	"github.com/spaghettifunk/rerender/engine/math"
	"github.com/spaghettifunk/rerender/engine/renderer/components"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

/** @brief Default relative depth spread above which a triangle counts as an occlusion edge. */
const DefaultEdgeThreshold float64 = 0.05

/**
 * @brief The grid topology of the previous frame. Handing it back to Build
 * lets frames of the same size skip rebuilding the triangle list.
 */
type MeshHint struct {
	Width  int
	Height int
	grid   []uint32
}

func (h *MeshHint) matches(width, height int) bool {
	return h != nil && h.Width == width && h.Height == height && h.grid != nil
}

type MeshSystem struct {
	edgeThreshold float64
}

func NewMeshSystem(edgeThreshold float64) *MeshSystem {
	if edgeThreshold <= 0 {
		edgeThreshold = DefaultEdgeThreshold
	}
	return &MeshSystem{edgeThreshold: edgeThreshold}
}

/**
 * @brief Builds a triangle mesh from a depth map, one vertex per pixel.
 *
 * @param depth The depth map in metres.
 * @param camera Intrinsics of the camera the depth map was captured with.
 * @param color Colour of every pixel, same size as depth.
 * @param hint Topology of the previous frame, may be nil.
 * @param removeEdges Drop triangles spanning a depth discontinuity.
 * @return The mesh, the ascending indices of vertices used by a kept triangle,
 * and the hint for the next frame.
 */
func (ms *MeshSystem) Build(depth *frame.Depth, camera *components.Camera, color *frame.RGB, hint *MeshHint, removeEdges bool) (*metadata.Mesh, []int, *MeshHint, error) {
	w, h := depth.Width, depth.Height
	if color.Width != w || color.Height != h {
		err := fmt.Errorf("depth %dx%d, colour %dx%d: %w", w, h, color.Width, color.Height, core.ErrDimensionMismatch)
		core.LogError(err.Error())
		return nil, nil, nil, err
	}
	if camera.Width != w || camera.Height != h {
		err := fmt.Errorf("depth %dx%d, camera %dx%d: %w", w, h, camera.Width, camera.Height, core.ErrDimensionMismatch)
		core.LogError(err.Error())
		return nil, nil, nil, err
	}

	if !hint.matches(w, h) {
		hint = &MeshHint{Width: w, Height: h, grid: gridIndices(w, h)}
	}

	mesh := &metadata.Mesh{
		Vertices: make([]math.Vec3, w*h),
		Colors:   make([]math.Vec3, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			mesh.Vertices[i] = camera.Unproject(float64(x), float64(y), float64(depth.Data[i]))
			r, g, b := color.RGBAt(x, y)
			mesh.Colors[i] = math.NewVec3(float32(r)/255, float32(g)/255, float32(b)/255)
		}
	}

	used := make([]bool, w*h)
	mesh.Indices = make([]uint32, 0, len(hint.grid))
	for t := 0; t+2 < len(hint.grid); t += 3 {
		a, b, c := hint.grid[t], hint.grid[t+1], hint.grid[t+2]
		da, db, dc := depth.Data[a], depth.Data[b], depth.Data[c]
		if da <= 0 || db <= 0 || dc <= 0 {
			continue
		}
		if removeEdges && ms.isEdge(da, db, dc) {
			continue
		}
		mesh.Indices = append(mesh.Indices, a, b, c)
		used[a], used[b], used[c] = true, true, true
	}

	notEdge := make([]int, 0, w*h)
	for i, u := range used {
		if u {
			notEdge = append(notEdge, i)
		}
	}
	return mesh, notEdge, hint, nil
}

// isEdge reports whether the depth spread of a triangle, relative to its nearest vertex, exceeds the threshold.
func (ms *MeshSystem) isEdge(a, b, c float32) bool {
	lo := min(a, b, c)
	hi := max(a, b, c)
	return float64(hi-lo)/float64(lo) > ms.edgeThreshold
}

// gridIndices returns two triangles per pixel quad.
func gridIndices(w, h int) []uint32 {
	if w < 2 || h < 2 {
		return []uint32{}
	}
	out := make([]uint32, 0, (w-1)*(h-1)*6)
	for y := 0; y+1 < h; y++ {
		for x := 0; x+1 < w; x++ {
			i := uint32(y*w + x)
			right := i + 1
			below := i + uint32(w)
			out = append(out, i, right, below, right, below+1, below)
		}
	}
	return out
}
