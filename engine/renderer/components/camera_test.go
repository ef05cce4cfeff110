package components

import (
	"errors"
	m "math"
	"testing"

	"github.com/spaghettifunk/rerender/engine/core"
)

func TestCameraFromFOV(t *testing.T) {
	c, err := NewCameraFromFOV(90, 0, 200, 100)
	if err != nil {
		t.Fatal(err)
	}
	if m.Abs(c.Fx-100) > 1e-9 {
		t.Errorf("fx = %v, want 100", c.Fx)
	}
	// square pixels: derived yfov keeps fx == fy
	if m.Abs(c.Fy-c.Fx) > 1e-9 {
		t.Errorf("fy = %v, want %v", c.Fy, c.Fx)
	}
	if c.Cx != 100 || c.Cy != 50 {
		t.Errorf("principal point %v,%v", c.Cx, c.Cy)
	}
}

func TestCameraRejectsFOV(t *testing.T) {
	tests := []struct {
		name       string
		xfov, yfov float64
	}{
		{"none", 0, 0},
		{"x too wide", 180, 0},
		{"y too wide", 60, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCameraFromFOV(tt.xfov, tt.yfov, 10, 10); !errors.Is(err, core.ErrInvalidFOV) {
				t.Errorf("expected ErrInvalidFOV, got %v", err)
			}
		})
	}
}

func TestVR180Camera(t *testing.T) {
	c, err := NewVR180Camera(60, 40, 64)
	if err != nil {
		t.Fatal(err)
	}
	if c.Width != 64 || c.Height != 64 || c.XFOV != MinVR180FOV || c.YFOV != MinVR180FOV {
		t.Errorf("unexpected camera %+v", c)
	}
	c, err = NewVR180Camera(120, 90, 64)
	if err != nil {
		t.Fatal(err)
	}
	if c.FOV() != 120 {
		t.Errorf("fov = %v, want 120", c.FOV())
	}
	if _, err := NewVR180Camera(179.99, 0, 64); err != nil {
		t.Errorf("179.99 should be accepted: %v", err)
	}
	if _, err := NewVR180Camera(180, 0, 64); !errors.Is(err, core.ErrInvalidFOV) {
		t.Errorf("expected ErrInvalidFOV, got %v", err)
	}
}

func TestProjectUnprojectRoundTrip(t *testing.T) {
	c, err := NewCameraFromFOV(70, 50, 320, 240)
	if err != nil {
		t.Fatal(err)
	}
	p := c.Unproject(12, 200, 3.5)
	u, v, ok := c.Project(p)
	if !ok || m.Abs(u-12) > 1e-3 || m.Abs(v-200) > 1e-3 {
		t.Errorf("round trip gave %v,%v,%v", u, v, ok)
	}
	if _, _, ok := c.Project(c.Unproject(1, 1, 0)); ok {
		t.Error("point on the camera plane must not project")
	}
}
