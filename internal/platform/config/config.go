package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	apperrors "habitwatch/internal/platform/errors"
)

// Settings holds the resolved runtime configuration. Precedence is
// defaults < .env file < process environment < CLI flags; flags are
// applied by the command layer after Load.
type Settings struct {
	APIKey        string `envconfig:"ROBOFLOW_API_KEY"`
	WorkspaceName string `envconfig:"WORKSPACE_NAME"`
	WorkflowID    string `envconfig:"WORKFLOW_ID"`

	ConfidenceThreshold float64 `envconfig:"CONFIDENCE_THRESHOLD" default:"0.5"`

	CameraIndex  int `envconfig:"CAMERA_INDEX" default:"0"`
	CameraWidth  int `envconfig:"CAMERA_WIDTH" default:"640"`
	CameraHeight int `envconfig:"CAMERA_HEIGHT" default:"480"`
	CameraFPS    int `envconfig:"CAMERA_FPS" default:"15"`

	EnableAudioWarnings  bool    `envconfig:"ENABLE_AUDIO_WARNINGS" default:"true"`
	AudioWarningCooldown float64 `envconfig:"AUDIO_WARNING_COOLDOWN" default:"5"`

	RefreshRate    float64 `envconfig:"REFRESH_RATE" default:"1.0"`
	ShowWebcamFeed bool    `envconfig:"SHOW_WEBCAM_FEED" default:"false"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogDir   string `envconfig:"LOG_DIR" default:"logs"`

	HabitsFile string `envconfig:"HABITS_FILE"`
	HistoryDB  string `envconfig:"HISTORY_DB"`
}

// Load reads an optional .env file and the process environment.
func Load() (Settings, error) {
	// Missing .env is the common case, not an error.
	_ = godotenv.Load()

	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return Settings{}, fmt.Errorf("read environment: %w", err)
	}
	if s.HistoryDB == "" {
		s.HistoryDB = filepath.Join(s.LogDir, "history.db")
	}
	return s, nil
}

// Validate checks required settings and value ranges. The first missing
// required variable wins so the user sees one actionable message.
func (s Settings) Validate() error {
	if s.APIKey == "" {
		return apperrors.ErrMissingAPIKey
	}
	if s.WorkspaceName == "" {
		return apperrors.ErrMissingWorkspace
	}
	if s.WorkflowID == "" {
		return apperrors.ErrMissingWorkflow
	}
	if s.ConfidenceThreshold < 0 || s.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: CONFIDENCE_THRESHOLD must be between 0.0 and 1.0, got %v",
			apperrors.ErrInvalidConfig, s.ConfidenceThreshold)
	}
	if s.CameraFPS <= 0 {
		return fmt.Errorf("%w: CAMERA_FPS must be positive, got %d",
			apperrors.ErrInvalidConfig, s.CameraFPS)
	}
	if s.RefreshRate <= 0 {
		return fmt.Errorf("%w: REFRESH_RATE must be positive, got %v",
			apperrors.ErrInvalidConfig, s.RefreshRate)
	}
	if s.AudioWarningCooldown < 0 {
		return fmt.Errorf("%w: AUDIO_WARNING_COOLDOWN must not be negative, got %v",
			apperrors.ErrInvalidConfig, s.AudioWarningCooldown)
	}
	return nil
}

// Cooldown returns the audio cooldown as a duration. The environment
// variable carries plain seconds for compatibility with earlier releases.
func (s Settings) Cooldown() time.Duration {
	return time.Duration(s.AudioWarningCooldown * float64(time.Second))
}

// RefreshInterval returns the dashboard refresh rate as a duration.
func (s Settings) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshRate * float64(time.Second))
}

// FrameInterval returns the pacing interval derived from CAMERA_FPS.
func (s Settings) FrameInterval() time.Duration {
	if s.CameraFPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.CameraFPS)
}

// Redacted returns a copy safe to print: the API key keeps its last four
// characters only.
func (s Settings) Redacted() Settings {
	s.APIKey = maskKey(s.APIKey)
	return s
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
