/*
Re-renders a depth video as side by side stereo, VR180 or Touchly video.

	rerender -depth_video clip_depth.mkv -color_video clip.mp4 -xfov 70 -format vr180

With -watch_dir every new *_depth video dropped in the directory is rendered
with the same settings.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/spaghettifunk/rerender/engine"
	"github.com/spaghettifunk/rerender/engine/assets"
	"github.com/spaghettifunk/rerender/engine/config"
	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
	"github.com/spaghettifunk/rerender/engine/systems"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	core.SetLogLevel(cfg.LogLevel)
	core.WithRun(uuid.NewString())

	// signal channel to capture system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if cfg.WatchDir != "" {
		err = watch(ctx, cfg)
	} else {
		err = render(ctx, cfg)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		core.LogFatal(err.Error())
	}
}

// parseConfig loads the optional -config file, then applies the flags that were set.
func parseConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("rerender", flag.ContinueOnError)
	file := fs.String("config", "", "TOML configuration file")

	def := config.Default()
	flags := *def
	fs.StringVar(&flags.DepthVideo, "depth_video", def.DepthVideo, "depth video to render")
	fs.StringVar(&flags.ColorVideo, "color_video", def.ColorVideo, "colour video or image, the depth video is used when empty")
	fs.StringVar(&flags.MaskVideo, "mask_video", def.MaskVideo, "mask video, black marks background accumulated as infill")
	fs.Float64Var(&flags.XFOV, "xfov", def.XFOV, "horizontal field of view in degrees")
	fs.Float64Var(&flags.YFOV, "yfov", def.YFOV, "vertical field of view in degrees")
	fs.Float64Var(&flags.MaxDepth, "max_depth", def.MaxDepth, "depth in metres of the largest encoded value")
	fs.StringVar(&flags.TransformationFile, "transformation_file", def.TransformationFile, "JSON list of 4x4 per frame transformations")
	fs.IntVar(&flags.LockFrame, "transformation_lock_frame", def.LockFrame, "frame whose transformation becomes the identity, -1 for none")
	fs.Float64Var(&flags.PupillaryDistance, "pupillary_distance", def.PupillaryDistance, "pupillary distance in mm")
	fs.IntVar(&flags.MaxFrames, "max_frames", def.MaxFrames, "stop after this many frames, 0 for all")
	fs.StringVar(&flags.Format, "format", def.Format, "stereo, vr180, touchly1 or touchly0")
	fs.Float64Var(&flags.TouchlyMaxDepth, "touchly_max_depth", def.TouchlyMaxDepth, "depth in metres mapped to the far end of touchly depth")
	fs.BoolVar(&flags.Compressed, "compressed", def.Compressed, "write H.264 mp4 instead of lossless FFV1 mkv")
	fs.BoolVar(&flags.InfillMask, "infill_mask", def.InfillMask, "also write a video marking pixels the render did not cover")
	fs.BoolVar(&flags.RemoveEdges, "remove_edges", def.RemoveEdges, "drop mesh triangles across depth discontinuities")
	fs.BoolVar(&flags.SaveBackground, "save_background", def.SaveBackground, "only accumulate the background and save it")
	fs.StringVar(&flags.LoadBackground, "load_background", def.LoadBackground, "background file to start from")
	fs.IntVar(&flags.VR180Size, "vr180_size", def.VR180Size, "size of each VR180 eye")
	fs.IntVar(&flags.Workers, "workers", def.Workers, "render goroutines, 0 for one per CPU")
	fs.IntVar(&flags.PreviewEvery, "preview_every", def.PreviewEvery, "write a PNG preview every n frames, 0 disables")
	fs.StringVar(&flags.LogLevel, "log_level", def.LogLevel, "debug, info, warn or error")
	fs.StringVar(&flags.WatchDir, "watch_dir", def.WatchDir, "render every depth video dropped in this directory")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := def
	if *file != "" {
		loaded, err := config.Load(*file)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	// flags given on the command line win over the file
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	override(cfg, &flags, set)
	return cfg, cfg.Validate()
}

func override(cfg, flags *config.Config, set map[string]bool) {
	apply := map[string]func(){
		"depth_video":               func() { cfg.DepthVideo = flags.DepthVideo },
		"color_video":               func() { cfg.ColorVideo = flags.ColorVideo },
		"mask_video":                func() { cfg.MaskVideo = flags.MaskVideo },
		"xfov":                      func() { cfg.XFOV = flags.XFOV },
		"yfov":                      func() { cfg.YFOV = flags.YFOV },
		"max_depth":                 func() { cfg.MaxDepth = flags.MaxDepth },
		"transformation_file":       func() { cfg.TransformationFile = flags.TransformationFile },
		"transformation_lock_frame": func() { cfg.LockFrame = flags.LockFrame },
		"pupillary_distance":        func() { cfg.PupillaryDistance = flags.PupillaryDistance },
		"max_frames":                func() { cfg.MaxFrames = flags.MaxFrames },
		"format":                    func() { cfg.Format = flags.Format },
		"touchly_max_depth":         func() { cfg.TouchlyMaxDepth = flags.TouchlyMaxDepth },
		"compressed":                func() { cfg.Compressed = flags.Compressed },
		"infill_mask":               func() { cfg.InfillMask = flags.InfillMask },
		"remove_edges":              func() { cfg.RemoveEdges = flags.RemoveEdges },
		"save_background":           func() { cfg.SaveBackground = flags.SaveBackground },
		"load_background":           func() { cfg.LoadBackground = flags.LoadBackground },
		"vr180_size":                func() { cfg.VR180Size = flags.VR180Size },
		"workers":                   func() { cfg.Workers = flags.Workers },
		"preview_every":             func() { cfg.PreviewEvery = flags.PreviewEvery },
		"log_level":                 func() { cfg.LogLevel = flags.LogLevel },
		"watch_dir":                 func() { cfg.WatchDir = flags.WatchDir },
	}
	for name := range set {
		if fn, ok := apply[name]; ok {
			fn()
		}
	}
}

func render(ctx context.Context, cfg *config.Config) error {
	e, err := engine.New(cfg, engine.Deps{})
	if err != nil {
		return err
	}
	if err := e.Initialize(ctx); err != nil {
		return err
	}
	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if runErr != nil {
		return runErr
	}
	core.LogInfo("done, wrote %s", e.Paths().Output)
	return nil
}

// watch renders the depth videos arriving in cfg.WatchDir one at a time.
func watch(ctx context.Context, cfg *config.Config) error {
	inbox, err := assets.NewInbox(cfg.WatchDir, assets.DefaultSettle)
	if err != nil {
		return err
	}
	paths, err := inbox.Start(ctx)
	if err != nil {
		return err
	}
	jobs, err := systems.NewJobSystem(1, 16)
	if err != nil {
		return err
	}
	defer jobs.Shutdown()

	core.EventRegister(core.EVENT_CODE_RUN_FINISHED, jobs, func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		core.LogInfo("finished %s after %d frames, waiting for the next video", data.Data.C[0], data.Data.U64[0])
		return true
	})
	core.LogInfo("watching %s for depth videos", cfg.WatchDir)
	for path := range paths {
		job := *cfg
		job.DepthVideo = path
		job.WatchDir = ""
		jobs.Submit(metadata.JobTask{
			ID:          uuid.NewString(),
			JobType:     metadata.JOB_TYPE_RENDER,
			InputParams: &job,
			OnStart: func(params interface{}, results chan<- interface{}) error {
				c := params.(*config.Config)
				if err := render(ctx, c); err != nil {
					return err
				}
				results <- c.DepthVideo
				return nil
			},
			OnComplete: func(results <-chan interface{}) {
				for r := range results {
					core.LogInfo("rendered %v", r)
				}
			},
		})
	}
	return ctx.Err()
}
