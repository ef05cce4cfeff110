package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spaghettifunk/rerender/engine/assets"
	"github.com/spaghettifunk/rerender/engine/codec"
	"github.com/spaghettifunk/rerender/engine/config"
	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/frame"
	"github.com/spaghettifunk/rerender/engine/renderer"
	"github.com/spaghettifunk/rerender/engine/renderer/components"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
	"github.com/spaghettifunk/rerender/engine/systems"
	"github.com/spaghettifunk/rerender/engine/video"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Inputs are open and every component is built
	EngineStageInitialized
	// Frames are being processed
	EngineStageRunning
	// Outputs are being flushed
	EngineStageShuttingDown
	EngineStageStopped
)

// SinkFactory opens an output stream.
type SinkFactory func(ctx context.Context, path string, opts video.SinkOptions) (video.Sink, error)

// Deps replaces the collaborators the engine would otherwise build from the
// configuration. Every field is optional.
type Deps struct {
	Assets *assets.AssetManager
	// Depth, Color and Mask take the place of the configured files.
	Depth video.Source
	Color video.Source
	Mask  video.Source
	// FPS of the output when the depth source is not a file.
	FPS      float64
	Sinks    SinkFactory
	Renderer systems.SceneRenderer
}

type Engine struct {
	currentStage Stage
	cfg          *config.Config
	deps         Deps

	assetManager    *assets.AssetManager
	codec           *codec.Codec
	renderer        systems.SceneRenderer
	ownedRenderer   *renderer.Renderer
	meshSystem      *systems.MeshSystem
	background      *systems.BackgroundAccumulator
	dispatcher      *systems.ViewSynthesisDispatcher
	assembler       systems.FrameAssembler
	transformations *assets.Transformations
	camera          *components.Camera

	depthSource video.Source
	colorSource video.Source
	maskSource  video.Source
	maskReader  *video.MaskReader
	output      video.Sink
	infill      video.Sink
	previews    *previewWriter

	// first depth frame, read during initialization to learn the size
	pending *frame.RGB
	width   int
	height  int
	fps     float64

	paths    OutputPaths
	fastPath bool
	hint     *systems.MeshHint
	frameN   int

	clock   *core.Clock
	metrics *core.Metrics
}

func New(cfg *config.Config, deps Deps) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	am := deps.Assets
	if am == nil {
		am = assets.NewAssetManager()
	}
	if deps.Sinks == nil {
		deps.Sinks = func(ctx context.Context, path string, opts video.SinkOptions) (video.Sink, error) {
			return video.CreateFile(ctx, path, opts)
		}
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		cfg:          cfg,
		deps:         deps,
		assetManager: am,
		codec:        codec.New(float32(cfg.MaxDepth)),
		meshSystem:   systems.NewMeshSystem(cfg.EdgeThreshold),
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
	}, nil
}

// Initialize opens every input and output and builds the render pipeline.
// Nothing is rendered before all inputs are known to exist.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized: %w", core.ErrInvalidConfig)
	}
	if err := e.openInputs(ctx); err != nil {
		return e.abort(err)
	}
	if err := e.buildPipeline(); err != nil {
		return e.abort(err)
	}
	if err := e.openOutputs(ctx); err != nil {
		return e.abort(err)
	}
	e.currentStage = EngineStageInitialized
	return nil
}

// abort releases whatever a failed Initialize had already opened.
func (e *Engine) abort(err error) error {
	core.LogError(err.Error())
	for _, msg := range e.release() {
		core.LogWarn("releasing after failed initialization: %s", msg)
	}
	e.currentStage = EngineStageStopped
	return err
}

func (e *Engine) openInputs(ctx context.Context) error {
	e.depthSource = e.deps.Depth
	e.fps = e.deps.FPS
	if e.depthSource == nil {
		fs, err := video.OpenFile(ctx, e.cfg.DepthVideo)
		if err != nil {
			return err
		}
		e.depthSource = fs
		e.fps = fs.Info.FPS
	}
	if e.fps <= 0 {
		e.fps = video.DefaultFPS
	}

	e.colorSource = e.deps.Color
	if e.colorSource == nil && e.cfg.ColorVideo != "" {
		src, err := e.openColor(ctx, e.cfg.ColorVideo)
		if err != nil {
			return err
		}
		e.colorSource = src
	}

	e.maskSource = e.deps.Mask
	if e.maskSource == nil && e.cfg.MaskVideo != "" {
		fs, err := video.OpenFile(ctx, e.cfg.MaskVideo)
		if err != nil {
			return err
		}
		e.maskSource = fs
	}

	if e.cfg.TransformationFile != "" {
		t, err := e.assetManager.LoadTransformations(e.cfg.TransformationFile, e.cfg.LockFrame)
		if err != nil {
			return err
		}
		e.transformations = t
	}

	first, err := e.depthSource.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("depth video has no frames: %w", core.ErrMissingInput)
		}
		return err
	}
	e.pending = first
	e.width, e.height = first.Width, first.Height

	if e.maskSource != nil {
		e.maskReader = video.NewMaskReader(e.maskSource, e.width, e.height)
	}
	return nil
}

// openColor accepts a video or a still image used for every frame.
func (e *Engine) openColor(ctx context.Context, path string) (video.Source, error) {
	if assets.DetermineAssetType(path) == metadata.ResourceTypeImage {
		img, err := e.assetManager.LoadImage(path)
		if err != nil {
			return nil, err
		}
		return video.NewStillSource(img), nil
	}
	return video.OpenFile(ctx, path)
}

func (e *Engine) buildPipeline() error {
	cam, err := components.NewCameraFromFOV(e.cfg.XFOV, e.cfg.YFOV, e.width, e.height)
	if err != nil {
		return err
	}
	e.camera = cam

	format := e.cfg.OutputFormat()
	renderCam := cam
	if format.Layout().Equirect {
		renderCam, err = components.NewVR180Camera(cam.XFOV, cam.YFOV, e.cfg.VR180Size)
		if err != nil {
			return err
		}
	}

	e.renderer = e.deps.Renderer
	if e.renderer == nil {
		r, err := renderer.New(renderer.Config{
			Type:      renderer.Software,
			Workers:   e.cfg.Workers,
			PointSize: e.cfg.PointSize,
		})
		if err != nil {
			return err
		}
		if err := r.Initialize(); err != nil {
			return err
		}
		e.ownedRenderer = r
		e.renderer = r
	}

	e.dispatcher, err = systems.NewViewSynthesisDispatcher(systems.DispatcherConfig{
		Format:            format,
		PupillaryDistance: e.cfg.PupillaryDistance,
		TouchlyMaxDepth:   e.cfg.TouchlyMaxDepth,
		InfillMask:        e.cfg.InfillMask,
	}, e.renderer, renderCam)
	if err != nil {
		return err
	}

	// the fast path would ignore the pose, the mask and the sentinel
	e.fastPath = e.dispatcher.CanFastPath() &&
		e.transformations == nil &&
		e.maskReader == nil &&
		!e.cfg.InfillMask

	if e.maskReader != nil {
		e.background = systems.NewBackgroundAccumulator(systems.PerspectiveDownsampler{}, e.cfg.DecimationCell, e.cfg.DecimationInterval)
		if e.cfg.LoadBackground != "" {
			if err := e.background.Load(e.assetManager, e.cfg.LoadBackground); err != nil {
				return err
			}
			core.LogInfo("loaded background %s: %d points", e.cfg.LoadBackground, e.background.CurrentCloud().Len())
		}
	}

	e.paths = NewOutputPaths(e.cfg.DepthVideo, format, e.cfg.Compressed)
	return nil
}

func (e *Engine) openOutputs(ctx context.Context) error {
	if e.saveOnly() {
		core.LogInfo("saving background only, no video is written")
		return nil
	}
	w, h := e.outputSize()
	opts := video.SinkOptions{Width: w, Height: h, FPS: e.fps, Compressed: e.cfg.Compressed}
	out, err := e.deps.Sinks(ctx, e.paths.Output, opts)
	if err != nil {
		return err
	}
	e.output = out
	core.LogInfo("writing %s (%dx%d)", e.paths.Output, w, h)

	if e.cfg.InfillMask {
		opts.Compressed = false
		infill, err := e.deps.Sinks(ctx, e.paths.InfillMask, opts)
		if err != nil {
			return err
		}
		e.infill = infill
	}
	if e.cfg.PreviewEvery > 0 {
		e.previews = newPreviewWriter(e.paths.Output, e.cfg.PreviewEvery, e.cfg.PreviewWidth)
	}
	return nil
}

// saveOnly is set when the run only accumulates the background.
func (e *Engine) saveOnly() bool {
	return e.cfg.SaveBackground && e.background != nil
}

// outputSize is the size of one assembled frame.
func (e *Engine) outputSize() (int, int) {
	w, h := e.width, e.height
	layout := e.cfg.OutputFormat().Layout()
	if layout.Equirect {
		w, h = e.cfg.VR180Size, e.cfg.VR180Size
	}
	n := len(layout.Slots)
	if layout.Axis == systems.AxisHorizontal {
		return w * n, h
	}
	return w, h * n
}

// Run processes frames until the depth video ends, MaxFrames is reached or
// ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine is not initialized: %w", core.ErrInvalidConfig)
	}
	e.currentStage = EngineStageRunning
	e.clock.Start()

	for e.cfg.MaxFrames == 0 || e.frameN < e.cfg.MaxFrames {
		if err := ctx.Err(); err != nil {
			return err
		}
		depthRGB, err := e.nextDepth()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			core.LogError(err.Error())
			return err
		}

		core.LogInfo("Frame: %d %.3fs", e.frameN, float64(e.frameN)/e.fps)
		e.frameN++
		start := time.Now()

		err = e.processFrame(depthRGB)
		if errors.Is(err, io.EOF) {
			core.LogWarn("a companion video ended before the depth video")
			break
		}
		if err != nil {
			core.LogError(err.Error())
			return err
		}

		e.clock.Update()
		e.metrics.Update(time.Since(start))
		if e.metrics.ShouldReport() {
			core.LogInfo("avg frame time %s, %.2f fps, %s elapsed", e.metrics.FrameTime(), e.metrics.FPS(), e.clock.Elapsed().Round(time.Second))
		}
	}
	core.LogInfo("processed %d frames", e.frameN)
	return nil
}

func (e *Engine) nextDepth() (*frame.RGB, error) {
	if e.pending != nil {
		f := e.pending
		e.pending = nil
		return f, nil
	}
	return e.depthSource.Next()
}

func (e *Engine) processFrame(depthRGB *frame.RGB) error {
	color := depthRGB
	if e.colorSource != nil {
		c, err := e.colorSource.Next()
		if err != nil {
			return err
		}
		if err := frame.CheckSize(c, depthRGB); err != nil {
			return fmt.Errorf("colour and depth frames need the same size: %w", err)
		}
		color = c
	}
	if !depthRGB.SameSize(e.width, e.height) {
		return fmt.Errorf("frame %d is %dx%d, video started at %dx%d: %w", e.frameN, depthRGB.Width, depthRGB.Height, e.width, e.height, core.ErrDimensionMismatch)
	}

	depth := e.codec.DecodeFrame(depthRGB)

	if e.fastPath {
		buffers, err := e.dispatcher.Fast(depth, color)
		if err != nil {
			return err
		}
		return e.write(buffers, nil)
	}

	mesh, notEdge, hint, err := e.meshSystem.Build(depth, e.camera, color, e.hint, e.cfg.RemoveEdges || e.cfg.InfillMask)
	if err != nil {
		return err
	}
	e.hint = hint

	if e.transformations != nil {
		t, err := e.transformations.At(e.frameN - 1)
		if err != nil {
			return err
		}
		mesh.Transform(t)
	}

	var scene metadata.Geometry = mesh
	if e.background != nil {
		mask, err := e.maskReader.Next()
		if err != nil {
			return err
		}
		points, colors := mesh.Select(systems.SelectCandidates(notEdge, mask))
		if err := e.background.Update(points, colors); err != nil {
			return err
		}
		before := e.background.CurrentCloud().Len()
		if e.background.MaybeDecimate(e.frameN) {
			var ctx core.EventContext
			ctx.Data.U64[0] = uint64(before)
			ctx.Data.U64[1] = uint64(e.background.CurrentCloud().Len())
			core.EventFire(core.EVENT_CODE_BACKGROUND_DECIMATED, e, ctx)
		}
		if e.saveOnly() {
			return nil
		}
		scene = e.background.CurrentCloud()
	}

	buffers, masks, err := e.dispatcher.Synthesize(scene)
	if err != nil {
		return err
	}
	return e.write(buffers, masks)
}

func (e *Engine) write(buffers systems.Buffers, masks systems.Masks) error {
	format := e.dispatcher.Format()
	out, err := e.assembler.Assemble(format, buffers)
	if err != nil {
		return err
	}
	if e.infill != nil {
		maskFrame, err := e.assembler.AssembleMask(format, masks)
		if err != nil {
			return err
		}
		if maskFrame == nil {
			maskFrame = frame.NewRGB(out.Width, out.Height)
		}
		if err := e.infill.Write(maskFrame); err != nil {
			return err
		}
	}
	if err := e.output.Write(out); err != nil {
		return err
	}
	var ctx core.EventContext
	ctx.Data.U64[0] = uint64(e.frameN)
	ctx.Data.F64[0] = float64(e.frameN) / e.fps
	core.EventFire(core.EVENT_CODE_FRAME_WRITTEN, e, ctx)

	if e.previews != nil {
		if err := e.previews.maybeWrite(e.frameN, out); err != nil {
			core.LogWarn("preview for frame %d: %s", e.frameN, err.Error())
		}
	}
	return nil
}

// Shutdown flushes the outputs, saves the background when asked to and
// releases every input. It is safe to call more than once.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageStopped {
		return nil
	}
	ran := e.currentStage == EngineStageRunning
	e.currentStage = EngineStageShuttingDown

	var errs []string
	if ran && e.cfg.SaveBackground && e.background != nil {
		if err := e.background.Save(e.assetManager, e.paths.Background); err != nil {
			errs = append(errs, err.Error())
		} else {
			core.LogInfo("saved background %s: %d points", e.paths.Background, e.background.CurrentCloud().Len())
		}
	}
	errs = append(errs, e.release()...)

	e.currentStage = EngineStageStopped
	if ran {
		var ctx core.EventContext
		ctx.Data.U64[0] = uint64(e.frameN)
		ctx.Data.C[0] = e.paths.Output
		core.EventFire(core.EVENT_CODE_RUN_FINISHED, e, ctx)
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown: %s", strings.Join(errs, "; "))
	}
	return nil
}

// release closes the sinks, the sources and the renderer. Each is closed at
// most once, so it is safe after a partial Initialize.
func (e *Engine) release() []string {
	var errs []string
	for _, sink := range []video.Sink{e.output, e.infill} {
		if sink == nil {
			continue
		}
		if err := sink.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	e.output, e.infill = nil, nil

	for _, src := range []video.Source{e.depthSource, e.colorSource, e.maskSource} {
		if src == nil {
			continue
		}
		if err := src.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	e.depthSource, e.colorSource, e.maskSource, e.maskReader = nil, nil, nil, nil

	if e.ownedRenderer != nil {
		if err := e.ownedRenderer.Shutdown(); err != nil {
			errs = append(errs, err.Error())
		}
		e.ownedRenderer = nil
	}
	return errs
}

// Frames is the number of frames processed so far.
func (e *Engine) Frames() int {
	return e.frameN
}

func (e *Engine) Paths() OutputPaths {
	return e.paths
}
