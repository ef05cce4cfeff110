package systems

import (
	m "math"

	"github.com/spaghettifunk/rerender/engine/math"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

// PerspectiveDownsampler merges points that look the same from the origin.
// Points are bucketed by view direction and by the logarithm of their distance,
// so a cell of cellSize at one metre spans cellSize*d at distance d.
type PerspectiveDownsampler struct{}

type cellKey struct {
	dx, dy, dz, dist int64
}

type cellSum struct {
	px, py, pz float64
	cr, cg, cb float64
	n          float64
}

func (PerspectiveDownsampler) Downsample(cloud *metadata.PointCloud, cellSize float64) *metadata.PointCloud {
	if cloud.Len() == 0 || cellSize <= 0 {
		return cloud.Clone()
	}

	index := make(map[cellKey]int, cloud.Len()/2)
	sums := make([]cellSum, 0, cloud.Len()/2)
	for i, p := range cloud.Points {
		key := keyFor(p, cellSize)
		j, ok := index[key]
		if !ok {
			j = len(sums)
			index[key] = j
			sums = append(sums, cellSum{})
		}
		c := cloud.Colors[i]
		s := &sums[j]
		s.px += float64(p.X)
		s.py += float64(p.Y)
		s.pz += float64(p.Z)
		s.cr += float64(c.X)
		s.cg += float64(c.Y)
		s.cb += float64(c.Z)
		s.n++
	}

	out := &metadata.PointCloud{
		Points: make([]math.Vec3, len(sums)),
		Colors: make([]math.Vec3, len(sums)),
	}
	for i, s := range sums {
		out.Points[i] = math.NewVec3(float32(s.px/s.n), float32(s.py/s.n), float32(s.pz/s.n))
		out.Colors[i] = math.NewVec3(float32(s.cr/s.n), float32(s.cg/s.n), float32(s.cb/s.n))
	}
	return out
}

func keyFor(p math.Vec3, cellSize float64) cellKey {
	d := float64(p.Length())
	if d == 0 {
		return cellKey{dist: m.MinInt64}
	}
	return cellKey{
		dx:   int64(m.Floor(float64(p.X) / d / cellSize)),
		dy:   int64(m.Floor(float64(p.Y) / d / cellSize)),
		dz:   int64(m.Floor(float64(p.Z) / d / cellSize)),
		dist: int64(m.Floor(m.Log(d) / cellSize)),
	}
}
