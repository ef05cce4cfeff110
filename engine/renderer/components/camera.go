package components

import (
	"fmt"
	m "math"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/math"
)

/**
 * @brief A pinhole camera sitting at the origin, looking down +Z with
 * +X to the right and +Y down. Points are projected with the intrinsics
 * u = Fx*x/z + Cx and v = Fy*y/z + Cy.
 */
type Camera struct {
	/** @brief Image width in pixels. */
	Width int
	/** @brief Image height in pixels. */
	Height int
	/** @brief Focal lengths in pixels. */
	Fx, Fy float64
	/** @brief Principal point in pixels. */
	Cx, Cy float64
	/** @brief Field of view in degrees, horizontal and vertical. */
	XFOV, YFOV float64
}

/** @brief The smallest camera field of view used for VR180 renders, in degrees. */
const MinVR180FOV float64 = 75

/**
 * @brief Builds a camera from its field of view. One of xfov or yfov may be
 * zero, it is then derived from the other through the aspect ratio.
 *
 * @param xfov Horizontal field of view in degrees.
 * @param yfov Vertical field of view in degrees.
 * @param width Image width in pixels.
 * @param height Image height in pixels.
 * @return The camera, or ErrInvalidFOV when neither angle is usable.
 */
func NewCameraFromFOV(xfov, yfov float64, width, height int) (*Camera, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("camera size %dx%d: %w", width, height, core.ErrInvalidConfig)
	}
	if xfov <= 0 && yfov <= 0 {
		return nil, fmt.Errorf("either xfov or yfov is required: %w", core.ErrInvalidFOV)
	}
	if xfov >= 180 || yfov >= 180 {
		return nil, fmt.Errorf("fov %v/%v must stay below 180: %w", xfov, yfov, core.ErrInvalidFOV)
	}

	aspect := float64(width) / float64(height)
	if xfov <= 0 {
		xfov = math.RadToDeg(2 * m.Atan(m.Tan(math.DegToRad(yfov)/2)*aspect))
	}
	if yfov <= 0 {
		yfov = math.RadToDeg(2 * m.Atan(m.Tan(math.DegToRad(xfov)/2)/aspect))
	}

	return &Camera{
		Width:  width,
		Height: height,
		Fx:     (float64(width) / 2) / m.Tan(math.DegToRad(xfov)/2),
		Fy:     (float64(height) / 2) / m.Tan(math.DegToRad(yfov)/2),
		Cx:     float64(width) / 2,
		Cy:     float64(height) / 2,
		XFOV:   xfov,
		YFOV:   yfov,
	}, nil
}

/**
 * @brief Builds the square camera used for VR180 renders. The field of view is
 * the larger input angle, at least MinVR180FOV degrees.
 */
func NewVR180Camera(xfov, yfov float64, size int) (*Camera, error) {
	fov := m.Max(MinVR180FOV, m.Max(xfov, yfov))
	if fov >= 180 {
		return nil, fmt.Errorf("fov %v: the tool does not handle fisheye input: %w", fov, core.ErrInvalidFOV)
	}
	return NewCameraFromFOV(fov, fov, size, size)
}

// Project maps a camera space point to pixel coordinates. ok is false behind the camera.
func (c *Camera) Project(p math.Vec3) (u, v float64, ok bool) {
	if p.Z <= 0 {
		return 0, 0, false
	}
	z := float64(p.Z)
	return c.Fx*float64(p.X)/z + c.Cx, c.Fy*float64(p.Y)/z + c.Cy, true
}

// Unproject lifts pixel (u, v) at depth z to camera space.
func (c *Camera) Unproject(u, v, z float64) math.Vec3 {
	return math.NewVec3(
		float32((u-c.Cx)*z/c.Fx),
		float32((v-c.Cy)*z/c.Fy),
		float32(z),
	)
}

// FOV returns the larger of the two angles.
func (c *Camera) FOV() float64 {
	return m.Max(c.XFOV, c.YFOV)
}
