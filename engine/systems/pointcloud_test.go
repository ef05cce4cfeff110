package systems

import (
	"testing"

	"github.com/spaghettifunk/rerender/engine/math"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

func TestDownsampleMergesNeighbours(t *testing.T) {
	cloud := metadata.NewPointCloud(
		[]math.Vec3{
			math.NewVec3(0, 0, 2),
			math.NewVec3(0, 0, 4),
			math.NewVec3(0.000001, 0, 2),
		},
		[]math.Vec3{
			math.NewVec3(1, 0, 0),
			math.NewVec3(0, 1, 0),
			math.NewVec3(0, 0, 1),
		},
	)

	out := PerspectiveDownsampler{}.Downsample(cloud, 0.003)
	if out.Len() != 2 {
		t.Fatalf("got %d points, want 2", out.Len())
	}
	// first occurrence order, merged colour is the mean
	if c := out.Colors[0]; c.X != 0.5 || c.Y != 0 || c.Z != 0.5 {
		t.Errorf("merged colour = %v", c)
	}
	if p := out.Points[1]; p != math.NewVec3(0, 0, 4) {
		t.Errorf("second point = %v", p)
	}
	if cloud.Len() != 3 {
		t.Error("input cloud was modified")
	}
}

func TestDownsampleCellGrowsWithDistance(t *testing.T) {
	colors := []math.Vec3{math.NewVec3One(), math.NewVec3One()}
	far := metadata.NewPointCloud([]math.Vec3{math.NewVec3(0.01, 0, 100), math.NewVec3(0.1, 0, 100)}, colors)
	near := metadata.NewPointCloud([]math.Vec3{math.NewVec3(0.01, 0, 1), math.NewVec3(0.1, 0, 1)}, colors)

	if n := (PerspectiveDownsampler{}).Downsample(far, 0.003).Len(); n != 1 {
		t.Errorf("far points should merge, got %d", n)
	}
	if n := (PerspectiveDownsampler{}).Downsample(near, 0.003).Len(); n != 2 {
		t.Errorf("near points should stay apart, got %d", n)
	}
}

func TestDownsampleEmpty(t *testing.T) {
	out := PerspectiveDownsampler{}.Downsample(&metadata.PointCloud{}, 0.003)
	if out.Len() != 0 {
		t.Errorf("got %d points", out.Len())
	}
}
