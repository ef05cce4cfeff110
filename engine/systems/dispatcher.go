package systems

import (
	"fmt"
	m "math"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/frame"
	"github.com/spaghettifunk/rerender/engine/math"
	"github.com/spaghettifunk/rerender/engine/projection"
	"github.com/spaghettifunk/rerender/engine/renderer/components"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

// Sentinel is the render background used when infill masks are extracted.
// A pixel is infill only when it equals the sentinel exactly.
var Sentinel = [3]uint8{0, 255, 0}

var (
	sentinelColor = math.NewVec3(0, 1, 0)
	blackColor    = math.NewVec3(0, 0, 0)
)

/** @brief The render collaborator the dispatcher draws with. */
type SceneRenderer interface {
	Render(instances []metadata.Instance, camera *components.Camera, mode metadata.RenderMode, background math.Vec3) (*metadata.RenderedView, error)
}

// Buffers holds the 8 bit planes of one output frame, by slot.
type Buffers map[Slot]*frame.RGB

// Masks holds the infill masks of one output frame, by slot.
type Masks map[Slot]*frame.Gray

type DispatcherConfig struct {
	Format Format
	// PupillaryDistance in millimetres.
	PupillaryDistance float64
	// TouchlyMaxDepth is the depth, in metres, mapped to the far end of the 8 bit range.
	TouchlyMaxDepth float64
	InfillMask      bool
}

/**
 * @brief Produces the buffers of each output frame for the configured format.
 */
type ViewSynthesisDispatcher struct {
	cfg      DispatcherConfig
	layout   Layout
	renderer SceneRenderer
	camera   *components.Camera
	equirect *projection.Equirect
}

func NewViewSynthesisDispatcher(cfg DispatcherConfig, renderer SceneRenderer, camera *components.Camera) (*ViewSynthesisDispatcher, error) {
	if cfg.TouchlyMaxDepth <= 0 {
		return nil, fmt.Errorf("touchly max depth %v: %w", cfg.TouchlyMaxDepth, core.ErrInvalidConfig)
	}
	layout, ok := layouts[cfg.Format]
	if !ok {
		return nil, fmt.Errorf("%s: %w", cfg.Format, core.ErrUnknownFormat)
	}
	d := &ViewSynthesisDispatcher{
		cfg:      cfg,
		layout:   layout,
		renderer: renderer,
		camera:   camera,
	}
	if layout.Equirect {
		eq, err := projection.NewEquirect(camera.Width, camera.Height, camera.FOV())
		if err != nil {
			core.LogError(err.Error())
			return nil, err
		}
		d.equirect = eq
	}
	return d, nil
}

func (d *ViewSynthesisDispatcher) Format() Format {
	return d.cfg.Format
}

// CanFastPath reports whether the format allows skipping the render entirely.
func (d *ViewSynthesisDispatcher) CanFastPath() bool {
	return d.cfg.Format == FormatMonoDepth
}

/**
 * @brief Mono fast path: the decoded depth goes straight to the depth slot,
 * the input colour to the colour slot.
 */
func (d *ViewSynthesisDispatcher) Fast(depth *frame.Depth, color *frame.RGB) (Buffers, error) {
	if !d.CanFastPath() {
		return nil, fmt.Errorf("fast path needs %s, have %s: %w", FormatMonoDepth, d.cfg.Format, core.ErrInvalidConfig)
	}
	if depth.Width != color.Width || depth.Height != color.Height {
		return nil, fmt.Errorf("depth %dx%d, colour %dx%d: %w", depth.Width, depth.Height, color.Width, color.Height, core.ErrDimensionMismatch)
	}
	out := frame.NewRGB(depth.Width, depth.Height)
	for i, z := range depth.Data {
		v := 255 - DepthTo8(z, d.cfg.TouchlyMaxDepth)
		out.Pix[i*3], out.Pix[i*3+1], out.Pix[i*3+2] = v, v, v
	}
	return Buffers{SlotColor: color, SlotDepth: out}, nil
}

/**
 * @brief Renders the scene for the configured format. Masks is nil unless
 * infill masks were requested.
 */
func (d *ViewSynthesisDispatcher) Synthesize(scene metadata.Geometry) (Buffers, Masks, error) {
	bg := blackColor
	if d.cfg.InfillMask {
		bg = sentinelColor
	}
	inst := []metadata.Instance{{Geometry: scene}}

	buffers := Buffers{}
	masks := Masks{}

	if d.cfg.Format == FormatMonoDepth {
		view, err := d.renderer.Render(inst, d.camera, metadata.RenderModeColorDepth, bg)
		if err != nil {
			return nil, nil, err
		}
		buffers[SlotColor] = ColorTo8(view)
		buffers[SlotDepth] = d.renderedDepthTo8(view)
		if d.cfg.InfillMask {
			masks[SlotColor] = SentinelMask(buffers[SlotColor])
		}
		return buffers, d.masksOrNil(masks), nil
	}

	// moving the scene by +pd/2 is the same as moving the camera to the left eye
	half := float32(d.cfg.PupillaryDistance / 1000 / 2)

	inst[0].Offset = math.NewVec3(half, 0, 0)
	leftMode := metadata.RenderModeColor
	if d.cfg.Format == FormatStereoDepth {
		leftMode = metadata.RenderModeColorDepth
	}
	left, err := d.renderer.Render(inst, d.camera, leftMode, bg)
	if err != nil {
		return nil, nil, err
	}
	buffers[SlotLeft] = ColorTo8(left)
	if d.cfg.Format == FormatStereoDepth {
		buffers[SlotLeftDepth] = d.renderedDepthTo8(left)
	}

	inst[0].Offset = math.NewVec3(-half, 0, 0)
	right, err := d.renderer.Render(inst, d.camera, metadata.RenderModeColor, bg)
	if err != nil {
		return nil, nil, err
	}
	buffers[SlotRight] = ColorTo8(right)

	if d.cfg.InfillMask {
		masks[SlotLeft] = SentinelMask(buffers[SlotLeft])
		masks[SlotRight] = SentinelMask(buffers[SlotRight])
	}

	if d.layout.Equirect {
		if err := d.project(buffers, masks); err != nil {
			return nil, nil, err
		}
	}
	return buffers, d.masksOrNil(masks), nil
}

func (d *ViewSynthesisDispatcher) masksOrNil(masks Masks) Masks {
	if !d.cfg.InfillMask {
		return nil
	}
	return masks
}

// project remaps every buffer, and every mask so it stays aligned with its buffer.
func (d *ViewSynthesisDispatcher) project(buffers Buffers, masks Masks) error {
	for slot, buf := range buffers {
		out, err := d.equirect.Project(buf)
		if err != nil {
			return err
		}
		buffers[slot] = out
	}
	for slot, mask := range masks {
		out, err := d.equirect.ProjectGray(mask)
		if err != nil {
			return err
		}
		for i, v := range out.Pix {
			if v >= 128 {
				out.Pix[i] = 255
			} else {
				out.Pix[i] = 0
			}
		}
		masks[slot] = out
	}
	return nil
}

// renderedDepthTo8 converts a render depth buffer. Pixels the render never
// hit are pushed to the far end before the inversion.
func (d *ViewSynthesisDispatcher) renderedDepthTo8(view *metadata.RenderedView) *frame.RGB {
	out := frame.NewRGB(view.Width, view.Height)
	for i, z := range view.Depth {
		v := DepthTo8(z, d.cfg.TouchlyMaxDepth)
		if v == 0 {
			v = 255
		}
		v = 255 - v
		out.Pix[i*3], out.Pix[i*3+1], out.Pix[i*3+2] = v, v, v
	}
	return out
}

/**
 * @brief Clips depth to maxDepth and scales it to [0, 255], rounding half to even.
 */
func DepthTo8(depth float32, maxDepth float64) uint8 {
	z := float64(depth)
	if z > maxDepth {
		z = maxDepth
	}
	if z < 0 {
		z = 0
	}
	return uint8(m.RoundToEven(z * (255 / maxDepth)))
}

/**
 * @brief Converts a float colour buffer to 8 bit by truncation.
 */
func ColorTo8(view *metadata.RenderedView) *frame.RGB {
	out := frame.NewRGB(view.Width, view.Height)
	for i, c := range view.Color {
		out.Pix[i] = uint8(c * 255)
	}
	return out
}

// SentinelMask marks with 255 every pixel that equals the sentinel colour exactly.
func SentinelMask(f *frame.RGB) *frame.Gray {
	out := frame.NewGray(f.Width, f.Height)
	for i := range out.Pix {
		p := f.Pix[i*3 : i*3+3]
		if p[0] == Sentinel[0] && p[1] == Sentinel[1] && p[2] == Sentinel[2] {
			out.Pix[i] = 255
		}
	}
	return out
}
