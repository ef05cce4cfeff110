package metadata

import (
	"github.com/spaghettifunk/rerender/engine/math"
)

type GeometryKind uint8

const (
	GeometryKindMesh GeometryKind = iota
	GeometryKindPointCloud
)

/**
 * @brief Anything the render backend can draw.
 */
type Geometry interface {
	Kind() GeometryKind
	VertexCount() int
}

/**
 * @brief Represents one placement of a geometry in the scene. The offset is
 * added to every vertex at draw time and leaves the geometry untouched.
 */
type Instance struct {
	Geometry Geometry
	Offset   math.Vec3
}

/**
 * @brief A point cloud with one colour per point, RGB in [0, 1].
 */
type PointCloud struct {
	Points []math.Vec3
	Colors []math.Vec3
}

func NewPointCloud(points, colors []math.Vec3) *PointCloud {
	return &PointCloud{Points: points, Colors: colors}
}

func (pc *PointCloud) Kind() GeometryKind { return GeometryKindPointCloud }

func (pc *PointCloud) VertexCount() int { return len(pc.Points) }

// Len returns the number of points.
func (pc *PointCloud) Len() int {
	if pc == nil {
		return 0
	}
	return len(pc.Points)
}

// Clone returns a deep copy.
func (pc *PointCloud) Clone() *PointCloud {
	out := &PointCloud{
		Points: make([]math.Vec3, len(pc.Points)),
		Colors: make([]math.Vec3, len(pc.Colors)),
	}
	copy(out.Points, pc.Points)
	copy(out.Colors, pc.Colors)
	return out
}
