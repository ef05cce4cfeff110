// Package config holds the run configuration, read from TOML and
// overridden from the command line.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/rerender/engine/assets"
	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/systems"
)

type Config struct {
	DepthVideo string `toml:"depth_video"`
	// ColorVideo may also be a still image. Empty uses the depth frames as colour.
	ColorVideo string `toml:"color_video"`
	MaskVideo  string `toml:"mask_video"`

	XFOV     float64 `toml:"xfov"`
	YFOV     float64 `toml:"yfov"`
	MaxDepth float64 `toml:"max_depth"`

	TransformationFile string `toml:"transformation_file"`
	// LockFrame re-bases every transformation on this frame; -1 disables it.
	LockFrame int `toml:"transformation_lock_frame"`

	PupillaryDistance float64 `toml:"pupillary_distance"`
	// MaxFrames stops the run after this many frames; 0 reads to the end.
	MaxFrames         int     `toml:"max_frames"`
	Format            string  `toml:"format"`
	TouchlyMaxDepth   float64 `toml:"touchly_max_depth"`
	Compressed        bool    `toml:"compressed"`
	InfillMask        bool    `toml:"infill_mask"`
	RemoveEdges       bool    `toml:"remove_edges"`
	SaveBackground    bool    `toml:"save_background"`
	LoadBackground    string  `toml:"load_background"`

	VR180Size          int     `toml:"vr180_size"`
	PointSize          int     `toml:"point_size"`
	EdgeThreshold      float64 `toml:"edge_threshold"`
	DecimationCell     float64 `toml:"decimation_cell"`
	DecimationInterval int     `toml:"decimation_interval"`
	Workers            int     `toml:"workers"`
	PreviewEvery       int     `toml:"preview_every"`
	PreviewWidth       uint    `toml:"preview_width"`
	LogLevel           string  `toml:"log_level"`
	WatchDir           string  `toml:"watch_dir"`
}

func Default() *Config {
	return &Config{
		MaxDepth:           20,
		LockFrame:          assets.NoLockFrame,
		PupillaryDistance:  63,
		Format:             systems.FormatStereo.String(),
		TouchlyMaxDepth:    5,
		VR180Size:          1920,
		PointSize:          1,
		EdgeThreshold:      systems.DefaultEdgeThreshold,
		DecimationCell:     systems.DefaultDecimationCell,
		DecimationInterval: systems.DefaultDecimationInterval,
		PreviewWidth:       480,
		LogLevel:           "info",
	}
}

// Load reads a TOML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %s: %w", path, row, col, derr.Error(), core.ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%s: %v: %w", path, err, core.ErrInvalidConfig)
	}
	return cfg, nil
}

// Save writes the configuration as TOML.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// OutputFormat parses Format. Validate has already rejected unknown names.
func (c *Config) OutputFormat() systems.Format {
	f, _ := systems.ParseFormat(c.Format)
	return f
}

func (c *Config) Validate() error {
	var problems []string
	if c.DepthVideo == "" && c.WatchDir == "" {
		return fmt.Errorf("depth_video is required: %w", core.ErrMissingInput)
	}
	if c.XFOV == 0 && c.YFOV == 0 {
		return fmt.Errorf("xfov or yfov is required: %w", core.ErrInvalidFOV)
	}
	if c.XFOV < 0 || c.XFOV >= 180 || c.YFOV < 0 || c.YFOV >= 180 {
		return fmt.Errorf("xfov=%v yfov=%v: %w", c.XFOV, c.YFOV, core.ErrInvalidFOV)
	}
	if _, err := systems.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.MaxDepth <= 0 {
		problems = append(problems, "max_depth must be positive")
	}
	if c.TouchlyMaxDepth <= 0 {
		problems = append(problems, "touchly_max_depth must be positive")
	}
	if c.LockFrame < assets.NoLockFrame {
		problems = append(problems, "transformation_lock_frame must be -1 or a frame index")
	}
	if c.MaxFrames < 0 {
		problems = append(problems, "max_frames must not be negative")
	}
	if c.VR180Size < 2 {
		problems = append(problems, "vr180_size must be at least 2")
	}
	if c.PointSize < 1 {
		problems = append(problems, "point_size must be at least 1")
	}
	if c.EdgeThreshold <= 0 {
		problems = append(problems, "edge_threshold must be positive")
	}
	if c.DecimationCell <= 0 || c.DecimationInterval < 1 {
		problems = append(problems, "decimation_cell and decimation_interval must be positive")
	}
	if (c.SaveBackground || c.LoadBackground != "") && c.MaskVideo == "" {
		problems = append(problems, "save_background and load_background need a mask_video")
	}
	if c.PreviewEvery < 0 {
		problems = append(problems, "preview_every must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(problems, "; "), core.ErrInvalidConfig)
	}
	return nil
}
