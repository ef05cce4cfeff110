package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spaghettifunk/rerender/engine/core"
)

// DefaultFPS is used when a stream does not report a usable frame rate.
const DefaultFPS = 30.0

type probeOutput struct {
	Streams []struct {
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		NbFrames   string `json:"nb_frames"`
	} `json:"streams"`
}

// Probe asks ffprobe for the size, frame rate and frame count of the first video stream.
func Probe(ctx context.Context, path string) (Info, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,nb_frames",
		"-print_format", "json",
		path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe %s failed: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}
	return parseProbe(out)
}

func parseProbe(out []byte) (Info, error) {
	var p probeOutput
	if err := json.Unmarshal(out, &p); err != nil {
		return Info{}, fmt.Errorf("parsing ffprobe output: %w", err)
	}
	if len(p.Streams) == 0 {
		return Info{}, fmt.Errorf("no video stream: %w", core.ErrMissingInput)
	}
	s := p.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return Info{}, fmt.Errorf("video stream reports %dx%d: %w", s.Width, s.Height, core.ErrMissingInput)
	}
	info := Info{Width: s.Width, Height: s.Height, FPS: parseRate(s.RFrameRate)}
	if n, err := strconv.Atoi(s.NbFrames); err == nil {
		info.Frames = n
	}
	return info, nil
}

// parseRate reads "30000/1001" or "25" style rates.
func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return DefaultFPS
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return DefaultFPS
	}
	return n / d
}
