package systems

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spaghettifunk/rerender/engine/assets"
	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/frame"
	"github.com/spaghettifunk/rerender/engine/math"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

func points(n int, z float32) ([]math.Vec3, []math.Vec3) {
	ps := make([]math.Vec3, n)
	cs := make([]math.Vec3, n)
	for i := range ps {
		ps[i] = math.NewVec3(0, 0, z)
		cs[i] = math.NewVec3(float32(i)/float32(n), 0, 0)
	}
	return ps, cs
}

func TestSelectCandidates(t *testing.T) {
	mask := frame.NewGray(4, 2)
	copy(mask.Pix, []uint8{0, 200, 127, 128, 10, 255, 50, 0})

	got := SelectCandidates([]int{7, 2, 0, 2, 5, 3, 9, -1, 0}, mask)
	if want := []int{0, 2, 7}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAccumulatorUpdateGrowsByK(t *testing.T) {
	ba := NewBackgroundAccumulator(PerspectiveDownsampler{}, 0, 0)
	for k, want := range []int{3, 5, 12} {
		before := ba.CurrentCloud()
		prev := before.Len()
		ps, cs := points(want-prev, float32(k+1))
		if err := ba.Update(ps, cs); err != nil {
			t.Fatal(err)
		}
		if ba.CurrentCloud().Len() != want {
			t.Fatalf("cloud has %d points, want %d", ba.CurrentCloud().Len(), want)
		}
		if before.Len() != prev {
			t.Fatal("update changed a cloud a reader was holding")
		}
	}
}

func TestAccumulatorUpdateKeepsHeldCloud(t *testing.T) {
	ba := NewBackgroundAccumulator(PerspectiveDownsampler{}, 0, 0)
	ps, cs := points(4, 1)
	if err := ba.Update(ps, cs); err != nil {
		t.Fatal(err)
	}
	held := ba.CurrentCloud()
	want := held.Clone()

	for i := 0; i < 3; i++ {
		more, colors := points(5, float32(i+2))
		if err := ba.Update(more, colors); err != nil {
			t.Fatal(err)
		}
	}
	if !reflect.DeepEqual(held.Points, want.Points) || !reflect.DeepEqual(held.Colors, want.Colors) {
		t.Error("update changed the contents of a cloud a reader was holding")
	}
	cur := ba.CurrentCloud()
	if cur.Len() != 19 || len(cur.Colors) != 19 {
		t.Fatalf("cloud has %d points and %d colours, want 19", cur.Len(), len(cur.Colors))
	}
	if !reflect.DeepEqual(cur.Points[:4], want.Points) {
		t.Error("new cloud does not start with the held points")
	}
	if cur.Points[18].Z != 4 {
		t.Errorf("last point z = %v, want 4", cur.Points[18].Z)
	}
}

func TestAccumulatorReplaceCopiesCloud(t *testing.T) {
	ba := NewBackgroundAccumulator(PerspectiveDownsampler{}, 0, 0)
	ps, cs := points(2, 1)
	src := &metadata.PointCloud{
		Points: append(make([]math.Vec3, 0, 8), ps...),
		Colors: append(make([]math.Vec3, 0, 8), cs...),
	}
	if err := ba.Replace(src); err != nil {
		t.Fatal(err)
	}
	more, colors := points(3, 7)
	if err := ba.Update(more, colors); err != nil {
		t.Fatal(err)
	}
	if spare := src.Points[:3]; spare[2].Z == 7 {
		t.Error("update wrote into the spare capacity of the replaced cloud")
	}
}

func TestAccumulatorRejectsMismatch(t *testing.T) {
	ba := NewBackgroundAccumulator(PerspectiveDownsampler{}, 0, 0)
	ps, _ := points(2, 1)
	_, cs := points(3, 1)
	if err := ba.Update(ps, cs); !errors.Is(err, core.ErrCloudLengthMismatch) {
		t.Errorf("expected length mismatch, got %v", err)
	}
}

func TestAccumulatorDecimationCadence(t *testing.T) {
	ba := NewBackgroundAccumulator(PerspectiveDownsampler{}, DefaultDecimationCell, DefaultDecimationInterval)
	for frameIndex := 1; frameIndex <= 20; frameIndex++ {
		ps, cs := points(4, 2)
		if err := ba.Update(ps, cs); err != nil {
			t.Fatal(err)
		}
		before := ba.CurrentCloud().Len()
		snapshot := ba.CurrentCloud()
		decimated := ba.MaybeDecimate(frameIndex)
		if decimated != (frameIndex%10 == 0) {
			t.Fatalf("frame %d: decimated=%v", frameIndex, decimated)
		}
		if ba.CurrentCloud().Len() > before {
			t.Fatalf("frame %d: cloud grew on decimation", frameIndex)
		}
		if snapshot.Len() != before {
			t.Fatalf("frame %d: a held cloud changed under the reader", frameIndex)
		}
		if decimated && ba.CurrentCloud().Len() != 1 {
			t.Errorf("frame %d: identical points should collapse to one, got %d", frameIndex, ba.CurrentCloud().Len())
		}
	}
}

func TestAccumulatorSaveLoad(t *testing.T) {
	store := assets.NewAssetManager()
	path := filepath.Join(t.TempDir(), "bg.cbor")

	ba := NewBackgroundAccumulator(PerspectiveDownsampler{}, 0, 0)
	ps, cs := points(5, 1.25)
	if err := ba.Update(ps, cs); err != nil {
		t.Fatal(err)
	}
	if err := ba.Save(store, path); err != nil {
		t.Fatal(err)
	}

	loaded := NewBackgroundAccumulator(PerspectiveDownsampler{}, 0, 0)
	if err := loaded.Load(store, path); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded.CurrentCloud().Points, ps) || !reflect.DeepEqual(loaded.CurrentCloud().Colors, cs) {
		t.Error("save and load did not round trip")
	}
}
