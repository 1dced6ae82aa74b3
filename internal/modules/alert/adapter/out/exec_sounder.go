package out

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	alertout "habitwatch/internal/modules/alert/port/out"
)

// ExecSounder plays the platform notification sound through the OS tools.
// When no player works it writes the terminal bell and reports the failure
// so the caller can log it at debug level; the alert is never lost.
type ExecSounder struct {
	goos string
	bell io.Writer
	run  func(ctx context.Context, name string, args ...string) error
}

func NewExecSounder() alertout.Sounder {
	return &ExecSounder{
		goos: runtime.GOOS,
		bell: os.Stderr,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

func (s *ExecSounder) Play(ctx context.Context, toneHz int) error {
	var lastErr error
	for _, c := range soundCommands(s.goos, toneHz) {
		if err := s.run(ctx, c[0], c[1:]...); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	_, _ = io.WriteString(s.bell, "\a")
	if lastErr == nil {
		lastErr = fmt.Errorf("no sound player for %s", s.goos)
	}
	return fmt.Errorf("sound playback unavailable, rang terminal bell: %w", lastErr)
}

func soundCommands(goos string, toneHz int) [][]string {
	switch goos {
	case "darwin":
		return [][]string{
			{"afplay", "/System/Library/Sounds/Ping.aiff"},
		}
	case "linux":
		return [][]string{
			{"paplay", "/usr/share/sounds/alsa/Front_Left.wav"},
			{"aplay", "/usr/share/sounds/alsa/Front_Left.wav"},
			{"speaker-test", "-t", "sine", "-f", fmt.Sprint(toneHz), "-l", "1"},
		}
	case "windows":
		return [][]string{
			{"powershell", "-c", fmt.Sprintf("[console]::beep(%d,300)", toneHz)},
		}
	default:
		return nil
	}
}
