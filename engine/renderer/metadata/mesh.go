package metadata

import (
	"github.com/spaghettifunk/rerender/engine/math"
)

/**
 * @brief A triangle mesh with one colour per vertex. Built from a depth map
 * it has exactly one vertex per pixel, so a vertex index is also a pixel index.
 */
type Mesh struct {
	/** @brief Vertex positions in camera space, metres. */
	Vertices []math.Vec3
	/** @brief Vertex colours, RGB in [0, 1]. */
	Colors []math.Vec3
	/** @brief Triangle list, three vertex indices per triangle. */
	Indices []uint32
}

func (mesh *Mesh) Kind() GeometryKind { return GeometryKindMesh }

func (mesh *Mesh) VertexCount() int { return len(mesh.Vertices) }

func (mesh *Mesh) TriangleCount() int { return len(mesh.Indices) / 3 }

/**
 * @brief Moves every vertex by offset, in place.
 */
func (mesh *Mesh) Translate(offset math.Vec3) {
	for i := range mesh.Vertices {
		mesh.Vertices[i] = mesh.Vertices[i].Add(offset)
	}
}

/**
 * @brief Applies the matrix to every vertex, in place.
 */
func (mesh *Mesh) Transform(matrix math.Mat4) {
	for i := range mesh.Vertices {
		mesh.Vertices[i] = mesh.Vertices[i].Transform(matrix)
	}
}

// Select copies the positions and colours of the given vertices.
func (mesh *Mesh) Select(indices []int) ([]math.Vec3, []math.Vec3) {
	points := make([]math.Vec3, len(indices))
	colors := make([]math.Vec3, len(indices))
	for i, idx := range indices {
		points[i] = mesh.Vertices[idx]
		colors[i] = mesh.Colors[idx]
	}
	return points, colors
}
