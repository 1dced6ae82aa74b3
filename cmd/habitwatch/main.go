package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"habitwatch/internal/bootstrap"
	"habitwatch/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		workspace      string
		workflowID     string
		confidence     float64
		camera         int
		skipValidation bool
		showConfig     bool
		noDashboard    bool
	)

	root := &cobra.Command{
		Use:           "habitwatch",
		Short:         "Monitor your webcam for bad habits through a hosted vision workflow",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("workspace") {
				settings.WorkspaceName = workspace
			}
			if flags.Changed("workflow-id") {
				settings.WorkflowID = workflowID
			}
			if flags.Changed("confidence") {
				settings.ConfidenceThreshold = confidence
			}
			if flags.Changed("camera") {
				settings.CameraIndex = camera
			}

			if showConfig {
				printConfig(cmd.OutOrStdout(), settings.Redacted())
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap.New(settings)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			return app.Run(ctx, cmd.OutOrStdout(), bootstrap.RunOptions{
				SkipValidation: skipValidation,
				NoDashboard:    noDashboard,
			})
		},
	}

	root.Flags().StringVar(&workspace, "workspace", "", "Roboflow workspace name")
	root.Flags().StringVar(&workflowID, "workflow-id", "", "workflow id for habit detection")
	root.Flags().Float64Var(&confidence, "confidence", 0.5, "confidence threshold for habit detection")
	root.Flags().IntVar(&camera, "camera", 0, "camera index to use")
	root.Flags().BoolVar(&skipValidation, "skip-validation", false, "skip setup validation (not recommended)")
	root.Flags().BoolVar(&showConfig, "show-config", false, "print the resolved configuration and exit")
	root.Flags().BoolVar(&noDashboard, "no-dashboard", false, "disable the live dashboard, log to file only")
	return root
}

func printConfig(out io.Writer, s config.Settings) {
	fmt.Fprintln(out, "Resolved configuration:")
	fmt.Fprintf(out, "  ROBOFLOW_API_KEY: %s\n", s.APIKey)
	fmt.Fprintf(out, "  WORKSPACE_NAME: %s\n", s.WorkspaceName)
	fmt.Fprintf(out, "  WORKFLOW_ID: %s\n", s.WorkflowID)
	fmt.Fprintf(out, "  CONFIDENCE_THRESHOLD: %v\n", s.ConfidenceThreshold)
	fmt.Fprintf(out, "  CAMERA_INDEX: %d (%dx%d @ %d fps)\n", s.CameraIndex, s.CameraWidth, s.CameraHeight, s.CameraFPS)
	fmt.Fprintf(out, "  ENABLE_AUDIO_WARNINGS: %v\n", s.EnableAudioWarnings)
	fmt.Fprintf(out, "  AUDIO_WARNING_COOLDOWN: %vs\n", s.AudioWarningCooldown)
	fmt.Fprintf(out, "  REFRESH_RATE: %vs\n", s.RefreshRate)
	fmt.Fprintf(out, "  LOG_LEVEL: %s\n", s.LogLevel)
	fmt.Fprintf(out, "  LOG_DIR: %s\n", s.LogDir)
	fmt.Fprintf(out, "  HISTORY_DB: %s\n", s.HistoryDB)
}
