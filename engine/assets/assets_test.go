package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/math"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTransformationsLockFrame(t *testing.T) {
	var mats []math.Mat4
	for i := 0; i < 8; i++ {
		m := math.NewMat4EulerY(float64(i) * 0.2).Mul(math.NewMat4Translation(math.NewVec3(float32(i), 0.5, -float32(i)/2)))
		mats = append(mats, m)
	}

	tr, err := NewTransformations(mats, 5)
	if err != nil {
		t.Fatal(err)
	}
	got, err := tr.At(5)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Compare(math.NewMat4Identity(), 1e-4) {
		t.Errorf("lock frame is not identity: %v", got.Data)
	}

	other, _ := tr.At(2)
	if other.Compare(math.NewMat4Identity(), 1e-4) {
		t.Error("other frames should not become identity")
	}
}

func TestTransformationsNoLock(t *testing.T) {
	m := math.NewMat4Translation(math.NewVec3(1, 2, 3))
	tr, err := NewTransformations([]math.Mat4{m}, NoLockFrame)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := tr.At(0)
	if got != m {
		t.Errorf("matrix changed without a lock frame")
	}
	if _, err := tr.At(1); !errors.Is(err, core.ErrTransformationMissing) {
		t.Errorf("expected ErrTransformationMissing, got %v", err)
	}
}

func TestTransformationsInvalidLock(t *testing.T) {
	if _, err := NewTransformations([]math.Mat4{math.NewMat4Identity()}, 3); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := NewTransformations([]math.Mat4{{}}, 0); !errors.Is(err, core.ErrSingularMatrix) {
		t.Errorf("expected ErrSingularMatrix, got %v", err)
	}
}

func TestLoadTransformationsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "transforms.json", []byte(`[
		[[1,0,0,5],[0,1,0,6],[0,0,1,7],[0,0,0,1]],
		[[1,0,0,0],[0,1,0,0],[0,0,1,0],[0,0,0,1]]
	]`))

	am := NewAssetManager()
	tr, err := am.LoadTransformations(path, NoLockFrame)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Len() != 2 {
		t.Fatalf("got %d matrices", tr.Len())
	}
	m, _ := tr.At(0)
	p := math.NewVec3Zero().Transform(m)
	if p != math.NewVec3(5, 6, 7) {
		t.Errorf("translation applied as %v", p)
	}
	if _, ok := am.Loaded(path); !ok {
		t.Error("asset was not recorded")
	}

	bad := writeFile(t, dir, "bad.json", []byte(`[[[1,0,0],[0,1,0],[0,0,1]]]`))
	if _, err := am.LoadTransformations(bad, NoLockFrame); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for 3x3, got %v", err)
	}
	if _, err := am.LoadTransformations(filepath.Join(dir, "missing.json"), NoLockFrame); !errors.Is(err, core.ErrMissingInput) {
		t.Errorf("expected ErrMissingInput, got %v", err)
	}
}

func TestBackgroundRoundTrip(t *testing.T) {
	cloud := metadata.NewPointCloud(
		[]math.Vec3{math.NewVec3(0.1, -2.5, 3.75), math.NewVec3(1e-3, 4, 9.125)},
		[]math.Vec3{math.NewVec3(1, 0, 0.5), math.NewVec3(0.2, 0.4, 0.6)},
	)
	path := filepath.Join(t.TempDir(), "clip_background.cbor")

	am := NewAssetManager()
	if err := am.SaveBackground(path, cloud); err != nil {
		t.Fatal(err)
	}
	loaded, err := am.LoadBackground(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded %d points", loaded.Len())
	}
	for i := range cloud.Points {
		if loaded.Points[i] != cloud.Points[i] || loaded.Colors[i] != cloud.Colors[i] {
			t.Errorf("point %d: %v/%v vs %v/%v", i, loaded.Points[i], loaded.Colors[i], cloud.Points[i], cloud.Colors[i])
		}
	}
}

func TestBackgroundRejectsMismatch(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		payload interface{}
		want    error
	}{
		{"length mismatch", []interface{}{[][3]float64{{1, 2, 3}, {4, 5, 6}}, [][3]float64{{0, 0, 0}}}, core.ErrCloudLengthMismatch},
		{"three elements", []interface{}{[][3]float64{}, [][3]float64{}, [][3]float64{}}, core.ErrInvalidConfig},
		{"pairs instead of triples", []interface{}{[][2]float64{{1, 2}}, [][2]float64{{1, 2}}}, core.ErrInvalidConfig},
	}
	am := NewAssetManager()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := cbor.Marshal(tt.payload)
			if err != nil {
				t.Fatal(err)
			}
			path := writeFile(t, dir, "bg.cbor", data)
			if _, err := am.LoadBackground(path); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDetermineAssetType(t *testing.T) {
	tests := []struct {
		path string
		want metadata.ResourceType
	}{
		{"/in/clip_depth.mkv", metadata.ResourceTypeDepthVideo},
		{"/in/clip_depth.MP4", metadata.ResourceTypeDepthVideo},
		{"/in/clip_depth.mkv_stereo.mkv", metadata.ResourceTypeNone},
		{"/in/clip_depth.mkv_Touchly1.mp4", metadata.ResourceTypeNone},
		{"/in/clip.mkv", metadata.ResourceTypeNone},
		{"/in/clip_transformations.json", metadata.ResourceTypeTransformations},
		{"/in/mask.png", metadata.ResourceTypeImage},
		{"/in/clip_depth.mkv_background.cbor", metadata.ResourceTypeBackground},
	}
	for _, tt := range tests {
		if got := DetermineAssetType(tt.path); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestInboxReportsDepthVideos(t *testing.T) {
	dir := t.TempDir()
	existing := writeFile(t, dir, "old_depth.mkv", []byte("x"))

	in, err := NewInbox(dir, 40*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	found, err := in.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "notes.txt", []byte("x"))
	writeFile(t, dir, "old_depth.mkv_stereo.mkv", []byte("x"))
	fresh := writeFile(t, dir, "new_depth.mp4", []byte("x"))

	want := map[string]bool{existing: true, fresh: true}
	timeout := time.After(5 * time.Second)
	for len(want) > 0 {
		select {
		case path := <-found:
			if !want[path] {
				t.Fatalf("unexpected file %s", path)
			}
			delete(want, path)
		case <-timeout:
			t.Fatalf("timed out, still waiting for %v", want)
		}
	}

	cancel()
	for range found {
	}
}
