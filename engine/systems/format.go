package systems

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/rerender/engine/core"
)

/** @brief The output layout, chosen once per run. */
type Format uint8

const (
	/** @brief Left and right eye side by side. */
	FormatStereo Format = iota
	/** @brief Left and right eye side by side, each remapped to a 180 degree equirectangular image. */
	FormatVR180
	/** @brief Touchly1: one colour image stacked above its inverted depth image. */
	FormatMonoDepth
	/** @brief Touchly0: left eye, right eye and left eye depth side by side, all equirectangular. */
	FormatStereoDepth
)

/** @brief A buffer position inside an output frame. */
type Slot uint8

const (
	SlotColor Slot = iota
	SlotDepth
	SlotLeft
	SlotRight
	SlotLeftDepth
)

type Axis uint8

const (
	AxisHorizontal Axis = iota
	AxisVertical
)

/**
 * @brief Everything a format needs: which buffers it carries, in which order
 * they are concatenated, and whether the eye renders are remapped to VR180.
 */
type Layout struct {
	Axis     Axis
	Slots    []Slot
	Equirect bool
	Suffix   string
}

var layouts = map[Format]Layout{
	FormatStereo:      {Axis: AxisHorizontal, Slots: []Slot{SlotLeft, SlotRight}, Suffix: "_stereo"},
	FormatVR180:       {Axis: AxisHorizontal, Slots: []Slot{SlotLeft, SlotRight}, Equirect: true, Suffix: "_stereo"},
	FormatMonoDepth:   {Axis: AxisVertical, Slots: []Slot{SlotColor, SlotDepth}, Suffix: "_Touchly1"},
	FormatStereoDepth: {Axis: AxisHorizontal, Slots: []Slot{SlotLeft, SlotRight, SlotLeftDepth}, Equirect: true, Suffix: "_Touchly0"},
}

func (f Format) Layout() Layout {
	return layouts[f]
}

func (f Format) String() string {
	switch f {
	case FormatStereo:
		return "stereo"
	case FormatVR180:
		return "vr180"
	case FormatMonoDepth:
		return "touchly1"
	case FormatStereoDepth:
		return "touchly0"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stereo":
		return FormatStereo, nil
	case "vr180":
		return FormatVR180, nil
	case "touchly1", "mono":
		return FormatMonoDepth, nil
	case "touchly0", "3in1":
		return FormatStereoDepth, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, core.ErrUnknownFormat)
	}
}
