// Package video reads and writes frame streams. Files go through ffmpeg as
// raw rgb24 pipes; in-memory streams back tests and still images.
package video

import (
	"github.com/spaghettifunk/rerender/engine/frame"
)

// Source yields frames in order. Next returns io.EOF after the last frame.
type Source interface {
	Next() (*frame.RGB, error)
	Close() error
}

// Sink consumes complete frames.
type Sink interface {
	Write(f *frame.RGB) error
	Close() error
}

// Info describes a video stream.
type Info struct {
	Width  int
	Height int
	FPS    float64
	// Frames is 0 when the container does not record it.
	Frames int
}
