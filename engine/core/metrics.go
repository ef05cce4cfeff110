package core

import (
	"time"

	"github.com/spaghettifunk/rerender/engine/containers"
)

const AVG_COUNT = 30

// Metrics keeps a rolling frame time average and the overall throughput of a run.
type Metrics struct {
	frameTimes *containers.RingQueue[time.Duration]
	frames     int
	total      time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{
		frameTimes: containers.NewRingQueue[time.Duration](AVG_COUNT),
	}
}

func (m *Metrics) Update(frameElapsed time.Duration) {
	m.frameTimes.Push(frameElapsed)
	m.frames++
	m.total += frameElapsed
}

// FrameTime is the average over the last AVG_COUNT frames.
func (m *Metrics) FrameTime() time.Duration {
	if m.frameTimes.IsEmpty() {
		return 0
	}
	var sum time.Duration
	m.frameTimes.Each(func(d time.Duration) { sum += d })
	return sum / time.Duration(m.frameTimes.Len())
}

// FPS is the number of frames processed per second of processing time.
func (m *Metrics) FPS() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.frames) / m.total.Seconds()
}

func (m *Metrics) Frames() int {
	return m.frames
}

// ShouldReport is true once every AVG_COUNT frames.
func (m *Metrics) ShouldReport() bool {
	return m.frames > 0 && m.frames%AVG_COUNT == 0
}
