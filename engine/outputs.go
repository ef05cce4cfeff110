package engine

import (
	"github.com/spaghettifunk/rerender/engine/systems"
)

// OutputPaths are the files a run writes, all named after the depth video.
type OutputPaths struct {
	Output     string
	InfillMask string
	Background string
}

func NewOutputPaths(depthVideo string, format systems.Format, compressed bool) OutputPaths {
	ext := "mkv"
	if compressed {
		ext = "mp4"
	}
	out := depthVideo + format.Layout().Suffix + "." + ext
	return OutputPaths{
		Output:     out,
		InfillMask: out + "_infillmask.mkv",
		Background: depthVideo + "_background.cbor",
	}
}
