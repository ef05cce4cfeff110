package metadata

import (
	"github.com/spaghettifunk/rerender/engine/math"
)

/** @brief Which buffers a render pass produces. */
type RenderMode uint8

const (
	RenderModeColor RenderMode = iota
	RenderModeDepth
	RenderModeColorDepth
)

func (mode RenderMode) WantsColor() bool { return mode != RenderModeDepth }

func (mode RenderMode) WantsDepth() bool { return mode != RenderModeColor }

type RenderOptions struct {
	Mode RenderMode
	/** @brief Colour written where nothing was drawn, RGB in [0, 1]. */
	Background math.Vec3
	/** @brief Side of the square drawn for each point of a point cloud, in pixels. */
	PointSize int
}

/**
 * @brief The output of one render pass. Color holds three floats per pixel in
 * [0, 1], Depth holds camera space Z in metres with 0 where nothing was drawn.
 * A buffer that was not requested is nil.
 */
type RenderedView struct {
	Width  int
	Height int
	Color  []float32
	Depth  []float32
}
