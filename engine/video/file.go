package video

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/frame"
)

// FileSource decodes a video file with ffmpeg.
type FileSource struct {
	Info Info

	cmd    *exec.Cmd
	stdout io.ReadCloser
	reader *bufio.Reader
	stderr bytes.Buffer
	// set once stdout has been read to its end
	drained bool
}

func OpenFile(ctx context.Context, path string) (*FileSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", path, core.ErrMissingInput)
	}
	info, err := Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	fs := &FileSource{Info: info}
	fs.cmd = exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-")
	fs.cmd.Stderr = &fs.stderr
	fs.stdout, err = fs.cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := fs.cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffmpeg for %s: %w", path, err)
	}
	fs.reader = bufio.NewReaderSize(fs.stdout, info.Width*info.Height*3)
	core.LogDebug("decoding %s: %dx%d at %.3f fps", path, info.Width, info.Height, info.FPS)
	return fs, nil
}

func (fs *FileSource) Next() (*frame.RGB, error) {
	f, err := readFrame(fs.reader, fs.Info.Width, fs.Info.Height)
	if err != nil {
		fs.drained = true
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(fs.stderr.String()))
		}
		return nil, err
	}
	return f, nil
}

// readFrame reads one packed rgb24 frame. It returns io.EOF only when the
// stream ends exactly on a frame boundary.
func readFrame(r io.Reader, width, height int) (*frame.RGB, error) {
	f := frame.NewRGB(width, height)
	n, err := io.ReadFull(r, f.Pix)
	switch {
	case err == nil:
		return f, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("truncated frame, %d of %d bytes: %w", n, len(f.Pix), err)
	default:
		return nil, err
	}
}

func (fs *FileSource) Close() error {
	fs.stdout.Close()
	return waitResult(fs.cmd.Wait(), fs.drained, fs.stderr.String())
}

// waitResult maps the exit status of the decoder. Closing stdout before the
// end of the stream makes ffmpeg exit on a broken pipe, which is not a failure.
func waitResult(err error, drained bool, stderr string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if !drained && errors.As(err, &exitErr) {
		return nil
	}
	return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr))
}

// SinkOptions selects the encoder.
type SinkOptions struct {
	Width, Height int
	FPS           float64
	// Compressed encodes H.264 (mp4), otherwise lossless FFV1 (mkv).
	Compressed bool
}

// Extension returns the container extension matching the options.
func (o SinkOptions) Extension() string {
	if o.Compressed {
		return "mp4"
	}
	return "mkv"
}

// FileSink encodes frames with ffmpeg.
type FileSink struct {
	opts   SinkOptions
	path   string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
}

func CreateFile(ctx context.Context, path string, opts SinkOptions) (*FileSink, error) {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	args := []string{
		"-y", "-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", strconv.FormatFloat(opts.FPS, 'f', -1, 64),
		"-i", "-",
	}
	if opts.Compressed {
		args = append(args, "-c:v", "libx264", "-pix_fmt", "yuv420p", "-crf", "18")
	} else {
		args = append(args, "-c:v", "ffv1")
	}
	args = append(args, path)

	sink := &FileSink{opts: opts, path: path}
	sink.cmd = exec.CommandContext(ctx, "ffmpeg", args...)
	sink.cmd.Stderr = &sink.stderr
	var err error
	sink.stdin, err = sink.cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := sink.cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffmpeg for %s: %w", path, err)
	}
	core.LogDebug("encoding %s: %dx%d %s", path, opts.Width, opts.Height, strings.Join(args, " "))
	return sink, nil
}

func (s *FileSink) Write(f *frame.RGB) error {
	if !f.SameSize(s.opts.Width, s.opts.Height) {
		return fmt.Errorf("sink %s is %dx%d, frame %dx%d: %w", s.path, s.opts.Width, s.opts.Height, f.Width, f.Height, core.ErrDimensionMismatch)
	}
	if _, err := s.stdin.Write(f.Pix); err != nil {
		return fmt.Errorf("writing %s: %w: %s", s.path, err, strings.TrimSpace(s.stderr.String()))
	}
	return nil
}

func (s *FileSink) Close() error {
	if err := s.stdin.Close(); err != nil {
		return err
	}
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg %s: %w: %s", s.path, err, strings.TrimSpace(s.stderr.String()))
	}
	return nil
}
