package systems

import (
	"fmt"
	"sync/atomic"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/frame"
	"github.com/spaghettifunk/rerender/engine/math"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

const (
	DefaultDecimationCell     float64 = 0.003
	DefaultDecimationInterval int     = 10
	// mask luminance below this is background
	backgroundThreshold uint8 = 128
)

type Downsampler interface {
	Downsample(cloud *metadata.PointCloud, cellSize float64) *metadata.PointCloud
}

/**
 * @brief Grows a background point cloud from the masked background of every
 * frame and periodically collapses it. The cloud is published through an
 * atomic pointer: every update and decimation installs a new cloud, readers
 * keep whichever complete cloud they loaded. Update, MaybeDecimate and
 * Replace must come from a single goroutine.
 */
type BackgroundAccumulator struct {
	cloud       atomic.Pointer[metadata.PointCloud]
	downsampler Downsampler
	cellSize    float64
	interval    int
}

func NewBackgroundAccumulator(downsampler Downsampler, cellSize float64, interval int) *BackgroundAccumulator {
	if cellSize <= 0 {
		cellSize = DefaultDecimationCell
	}
	if interval <= 0 {
		interval = DefaultDecimationInterval
	}
	ba := &BackgroundAccumulator{
		downsampler: downsampler,
		cellSize:    cellSize,
		interval:    interval,
	}
	ba.cloud.Store(&metadata.PointCloud{})
	return ba
}

/**
 * @brief Returns the ascending, duplicate free indices present in notEdge whose
 * mask luminance is below 128.
 */
func SelectCandidates(notEdge []int, mask *frame.Gray) []int {
	n := len(mask.Pix)
	bits := make([]uint64, (n+63)/64)
	for _, i := range notEdge {
		if i >= 0 && i < n && mask.Pix[i] < backgroundThreshold {
			bits[i/64] |= 1 << (i % 64)
		}
	}
	out := make([]int, 0, len(notEdge))
	for w, word := range bits {
		for b := 0; word != 0; b++ {
			if word&1 != 0 {
				out = append(out, w*64+b)
			}
			word >>= 1
		}
	}
	return out
}

// Update appends the points and colours to the cloud.
func (ba *BackgroundAccumulator) Update(points, colors []math.Vec3) error {
	if len(points) != len(colors) {
		err := fmt.Errorf("%d points, %d colours: %w", len(points), len(colors), core.ErrCloudLengthMismatch)
		core.LogError(err.Error())
		return err
	}
	if len(points) == 0 {
		return nil
	}
	// Appending past len leaves every published cloud's view intact, so the
	// new cloud may share the backing array with the one readers hold.
	cur := ba.cloud.Load()
	ba.cloud.Store(&metadata.PointCloud{
		Points: append(cur.Points, points...),
		Colors: append(cur.Colors, colors...),
	})
	return nil
}

/**
 * @brief Collapses the cloud when frameIndex (1-indexed) is a multiple of the
 * decimation interval. Returns true when it did.
 */
func (ba *BackgroundAccumulator) MaybeDecimate(frameIndex int) bool {
	if frameIndex <= 0 || frameIndex%ba.interval != 0 {
		return false
	}
	cur := ba.cloud.Load()
	before := cur.Len()
	ba.cloud.Store(ba.downsampler.Downsample(cur, ba.cellSize))
	core.LogInfo("clearing up point cloud: %d -> %d points", before, ba.cloud.Load().Len())
	return true
}

// CurrentCloud returns the latest complete cloud. Callers must not modify it.
func (ba *BackgroundAccumulator) CurrentCloud() *metadata.PointCloud {
	return ba.cloud.Load()
}

// Replace installs a copy of cloud, used when a saved background is loaded.
func (ba *BackgroundAccumulator) Replace(cloud *metadata.PointCloud) error {
	if len(cloud.Points) != len(cloud.Colors) {
		return fmt.Errorf("%d points, %d colours: %w", len(cloud.Points), len(cloud.Colors), core.ErrCloudLengthMismatch)
	}
	ba.cloud.Store(cloud.Clone())
	return nil
}

/** @brief Where a background cloud is persisted. */
type BackgroundStore interface {
	SaveBackground(path string, cloud *metadata.PointCloud) error
	LoadBackground(path string) (*metadata.PointCloud, error)
}

func (ba *BackgroundAccumulator) Save(store BackgroundStore, path string) error {
	return store.SaveBackground(path, ba.CurrentCloud())
}

func (ba *BackgroundAccumulator) Load(store BackgroundStore, path string) error {
	cloud, err := store.LoadBackground(path)
	if err != nil {
		return err
	}
	return ba.Replace(cloud)
}
