package video

import (
	"fmt"
	"io"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/frame"
)

// MemorySource replays a fixed list of frames.
type MemorySource struct {
	frames []*frame.RGB
	next   int
}

func NewMemorySource(frames ...*frame.RGB) *MemorySource {
	return &MemorySource{frames: frames}
}

func (ms *MemorySource) Next() (*frame.RGB, error) {
	if ms.next >= len(ms.frames) {
		return nil, io.EOF
	}
	f := ms.frames[ms.next]
	ms.next++
	return f, nil
}

func (ms *MemorySource) Close() error { return nil }

// StillSource returns the same image for every frame, never ending.
type StillSource struct {
	image *frame.RGB
}

func NewStillSource(image *frame.RGB) *StillSource {
	return &StillSource{image: image}
}

func (ss *StillSource) Next() (*frame.RGB, error) {
	return ss.image, nil
}

func (ss *StillSource) Close() error { return nil }

// MemorySink keeps a copy of every frame written.
type MemorySink struct {
	Width, Height int
	Frames        []*frame.RGB
	Closed        bool
}

func NewMemorySink(width, height int) *MemorySink {
	return &MemorySink{Width: width, Height: height}
}

func (ms *MemorySink) Write(f *frame.RGB) error {
	if ms.Closed {
		return fmt.Errorf("write to closed sink")
	}
	if !f.SameSize(ms.Width, ms.Height) {
		return fmt.Errorf("sink is %dx%d, frame %dx%d: %w", ms.Width, ms.Height, f.Width, f.Height, core.ErrDimensionMismatch)
	}
	ms.Frames = append(ms.Frames, f.Clone())
	return nil
}

func (ms *MemorySink) Close() error {
	ms.Closed = true
	return nil
}
