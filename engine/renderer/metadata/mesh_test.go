package metadata

import (
	"testing"

	"github.com/spaghettifunk/rerender/engine/math"
)

func newTestMesh() *Mesh {
	return &Mesh{
		Vertices: []math.Vec3{math.NewVec3(0, 0, 1), math.NewVec3(1, 0, 2), math.NewVec3(0, 1, 3)},
		Colors:   []math.Vec3{math.NewVec3(1, 0, 0), math.NewVec3(0, 1, 0), math.NewVec3(0, 0, 1)},
		Indices:  []uint32{0, 1, 2},
	}
}

func TestMeshMovesVerticesInPlace(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*Mesh)
		want  []math.Vec3
	}{
		{
			name:  "translate",
			apply: func(m *Mesh) { m.Translate(math.NewVec3(0.5, -1, 2)) },
			want:  []math.Vec3{math.NewVec3(0.5, -1, 3), math.NewVec3(1.5, -1, 4), math.NewVec3(0.5, 0, 5)},
		},
		{
			name:  "transform by translation",
			apply: func(m *Mesh) { m.Transform(math.NewMat4Translation(math.NewVec3(0, 0, -1))) },
			want:  []math.Vec3{math.NewVec3(0, 0, 0), math.NewVec3(1, 0, 1), math.NewVec3(0, 1, 2)},
		},
		{
			name:  "transform by scale",
			apply: func(m *Mesh) { m.Transform(math.NewMat4Scale(math.NewVec3(2, 2, 2))) },
			want:  []math.Vec3{math.NewVec3(0, 0, 2), math.NewVec3(2, 0, 4), math.NewVec3(0, 2, 6)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := newTestMesh()
			colors := append([]math.Vec3(nil), mesh.Colors...)
			tt.apply(mesh)
			for i, want := range tt.want {
				if !mesh.Vertices[i].Compare(want, 1e-6) {
					t.Errorf("vertex %d = %v; want %v", i, mesh.Vertices[i], want)
				}
				if mesh.Colors[i] != colors[i] {
					t.Errorf("colour %d changed to %v", i, mesh.Colors[i])
				}
			}
			if mesh.TriangleCount() != 1 {
				t.Errorf("TriangleCount() = %d; want 1", mesh.TriangleCount())
			}
		})
	}
}

func TestMeshSelectCopies(t *testing.T) {
	mesh := newTestMesh()
	points, colors := mesh.Select([]int{2, 0})
	if len(points) != 2 || len(colors) != 2 {
		t.Fatalf("Select returned %d points and %d colours; want 2 each", len(points), len(colors))
	}
	if points[0] != mesh.Vertices[2] || colors[1] != mesh.Colors[0] {
		t.Errorf("Select returned %v %v", points, colors)
	}
	points[0] = math.NewVec3(9, 9, 9)
	if mesh.Vertices[2] == points[0] {
		t.Errorf("Select aliases the mesh vertices")
	}
}
