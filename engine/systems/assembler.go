package systems

import (
	"fmt"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/frame"
)

/**
 * @brief Lays the buffers of a frame out as the format's layout table says.
 */
type FrameAssembler struct{}

func (FrameAssembler) Assemble(format Format, buffers Buffers) (*frame.RGB, error) {
	layout, ok := layouts[format]
	if !ok {
		return nil, fmt.Errorf("%s: %w", format, core.ErrUnknownFormat)
	}
	planes := make([]*frame.RGB, len(layout.Slots))
	for i, slot := range layout.Slots {
		buf, ok := buffers[slot]
		if !ok || buf == nil {
			return nil, fmt.Errorf("%s frame is missing slot %d", format, slot)
		}
		planes[i] = buf
	}
	return concat(layout.Axis, planes)
}

/**
 * @brief Lays out the infill masks like Assemble lays out the buffers. Slots
 * without a mask get an all zero plane. Returns nil when there are no masks.
 */
func (FrameAssembler) AssembleMask(format Format, masks Masks) (*frame.RGB, error) {
	if len(masks) == 0 {
		return nil, nil
	}
	layout, ok := layouts[format]
	if !ok {
		return nil, fmt.Errorf("%s: %w", format, core.ErrUnknownFormat)
	}

	var w, h int
	for _, mask := range masks {
		if mask != nil {
			w, h = mask.Width, mask.Height
			break
		}
	}
	planes := make([]*frame.RGB, len(layout.Slots))
	for i, slot := range layout.Slots {
		if mask := masks[slot]; mask != nil {
			planes[i] = mask.ToRGB()
		} else {
			planes[i] = frame.NewRGB(w, h)
		}
	}
	return concat(layout.Axis, planes)
}

func concat(axis Axis, planes []*frame.RGB) (*frame.RGB, error) {
	if axis == AxisVertical {
		return frame.VConcat(planes...)
	}
	return frame.HConcat(planes...)
}
