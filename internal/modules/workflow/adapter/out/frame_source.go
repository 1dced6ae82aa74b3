package out

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// ExecFrameSource grabs single JPEG frames by shelling out to the
// platform capture tool. Camera access stays in the external tool; this
// adapter only runs it.
type ExecFrameSource struct {
	goos   string
	index  int
	width  int
	height int
}

func NewExecFrameSource(index, width, height int) *ExecFrameSource {
	return &ExecFrameSource{goos: runtime.GOOS, index: index, width: width, height: height}
}

func (s *ExecFrameSource) Grab(ctx context.Context) ([]byte, error) {
	name, args, err := captureCommand(s.goos, s.index, s.width, s.height)
	if err != nil {
		return nil, err
	}
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("grab frame from camera %d: %w", s.index, err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("camera %d produced an empty frame", s.index)
	}
	return stdout.Bytes(), nil
}

func (s *ExecFrameSource) Close() error {
	// One process per grab, nothing held open between frames.
	return nil
}

func captureCommand(goos string, index, width, height int) (string, []string, error) {
	size := fmt.Sprintf("%dx%d", width, height)
	switch goos {
	case "linux":
		return "ffmpeg", []string{
			"-loglevel", "error",
			"-f", "v4l2",
			"-video_size", size,
			"-i", fmt.Sprintf("/dev/video%d", index),
			"-frames:v", "1",
			"-f", "mjpeg", "pipe:1",
		}, nil
	case "darwin":
		return "ffmpeg", []string{
			"-loglevel", "error",
			"-f", "avfoundation",
			"-video_size", size,
			"-i", fmt.Sprintf("%d", index),
			"-frames:v", "1",
			"-f", "mjpeg", "pipe:1",
		}, nil
	default:
		return "", nil, fmt.Errorf("frame capture is not supported on %s", goos)
	}
}
