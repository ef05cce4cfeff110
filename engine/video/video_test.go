package video

import (
	"bytes"
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/frame"
)

func TestParseProbe(t *testing.T) {
	info, err := parseProbe([]byte(`{"streams":[{"width":1280,"height":720,"r_frame_rate":"30000/1001","nb_frames":"240"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if info.Width != 1280 || info.Height != 720 || info.Frames != 240 {
		t.Errorf("unexpected info %+v", info)
	}
	if info.FPS < 29.97 || info.FPS > 29.98 {
		t.Errorf("fps = %v", info.FPS)
	}

	if _, err := parseProbe([]byte(`{"streams":[]}`)); !errors.Is(err, core.ErrMissingInput) {
		t.Errorf("expected ErrMissingInput, got %v", err)
	}
}

func TestParseRate(t *testing.T) {
	tests := map[string]float64{
		"25":    25,
		"50/2":  25,
		"0/0":   DefaultFPS,
		"":      DefaultFPS,
		"30/0":  DefaultFPS,
		"abc/1": DefaultFPS,
	}
	for in, want := range tests {
		if got := parseRate(in); got != want {
			t.Errorf("parseRate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMemorySourceEndsWithEOF(t *testing.T) {
	src := NewMemorySource(frame.NewRGB(1, 1), frame.NewRGB(1, 1))
	for i := 0; i < 2; i++ {
		if _, err := src.Next(); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := src.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReadFrame(t *testing.T) {
	tests := []struct {
		name    string
		stream  []byte
		wantErr error
		clean   bool
	}{
		{"full frame", bytes.Repeat([]byte{7}, 2*2*3), nil, false},
		{"end of stream", nil, io.EOF, true},
		{"truncated frame", bytes.Repeat([]byte{7}, 5), io.ErrUnexpectedEOF, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := readFrame(bytes.NewReader(tt.stream), 2, 2)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatal(err)
				}
				if f.Width != 2 || f.Height != 2 || f.Pix[11] != 7 {
					t.Errorf("unexpected frame %+v", f)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if isClean := err == io.EOF; isClean != tt.clean {
				t.Errorf("err == io.EOF is %v, want %v", isClean, tt.clean)
			}
		})
	}
}

func TestWaitResult(t *testing.T) {
	exitErr := &exec.ExitError{}
	tests := []struct {
		name    string
		err     error
		drained bool
		wantErr bool
	}{
		{"clean exit", nil, true, false},
		{"broken pipe after early close", exitErr, false, false},
		{"failure after the end of the stream", exitErr, true, true},
		{"not an exit status", errors.New("wait failed"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := waitResult(tt.err, tt.drained, "  moov atom not found\n")
			if (err != nil) != tt.wantErr {
				t.Fatalf("waitResult() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "moov atom not found") {
				t.Errorf("error %q does not carry ffmpeg's stderr", err)
			}
		})
	}
}

func TestMemorySinkCopiesAndChecksSize(t *testing.T) {
	sink := NewMemorySink(2, 1)
	f := frame.NewRGB(2, 1)
	if err := sink.Write(f); err != nil {
		t.Fatal(err)
	}
	f.Fill(9, 9, 9)
	if sink.Frames[0].Pix[0] != 0 {
		t.Error("sink should keep its own copy")
	}
	if err := sink.Write(frame.NewRGB(1, 1)); !errors.Is(err, core.ErrDimensionMismatch) {
		t.Errorf("expected mismatch, got %v", err)
	}
}

func TestMaskReader(t *testing.T) {
	white := frame.NewRGB(4, 4)
	white.Fill(255, 255, 255)

	same := NewMaskReader(NewMemorySource(white), 4, 4)
	g, err := same.Next()
	if err != nil {
		t.Fatal(err)
	}
	if g.Width != 4 || g.Pix[5] != 255 {
		t.Errorf("mask %dx%d value %d", g.Width, g.Height, g.Pix[5])
	}

	scaled := NewMaskReader(NewStillSource(white), 8, 2)
	for i := 0; i < 3; i++ {
		g, err := scaled.Next()
		if err != nil {
			t.Fatal(err)
		}
		if g.Width != 8 || g.Height != 2 {
			t.Fatalf("scaled mask is %dx%d", g.Width, g.Height)
		}
		for _, v := range g.Pix {
			if v != 255 {
				t.Fatalf("scaled white mask has value %d", v)
			}
		}
	}
}
