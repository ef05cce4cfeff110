package core

import (
	"testing"
	"time"
)

func TestMetricsRollingAverage(t *testing.T) {
	m := NewMetrics()
	if m.FrameTime() != 0 || m.FPS() != 0 {
		t.Fatalf("empty metrics should report zero")
	}

	for i := 0; i < AVG_COUNT; i++ {
		m.Update(10 * time.Millisecond)
	}
	m.Update(40 * time.Millisecond)

	want := (time.Duration(AVG_COUNT-1)*10*time.Millisecond + 40*time.Millisecond) / AVG_COUNT
	if got := m.FrameTime(); got != want {
		t.Errorf("FrameTime() = %v; want %v", got, want)
	}
	if m.Frames() != AVG_COUNT+1 {
		t.Errorf("Frames() = %d; want %d", m.Frames(), AVG_COUNT+1)
	}
	if m.ShouldReport() {
		t.Errorf("ShouldReport() = true at frame %d", m.Frames())
	}
}

func TestClockElapsed(t *testing.T) {
	c := NewClock()
	c.Update()
	if c.Elapsed() != 0 {
		t.Errorf("non-started clock elapsed = %v; want 0", c.Elapsed())
	}
	c.Start()
	time.Sleep(2 * time.Millisecond)
	c.Update()
	if c.Elapsed() <= 0 {
		t.Errorf("started clock elapsed = %v; want > 0", c.Elapsed())
	}
	c.Stop()
	before := c.Elapsed()
	c.Update()
	if c.Elapsed() != before {
		t.Errorf("stopped clock kept counting")
	}
}
