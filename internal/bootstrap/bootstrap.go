package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	alertadapter "habitwatch/internal/modules/alert/adapter/out"
	alertservice "habitwatch/internal/modules/alert/service"
	monitorusecase "habitwatch/internal/modules/monitor/usecase"
	statsadapter "habitwatch/internal/modules/stats/adapter/out"
	statsdto "habitwatch/internal/modules/stats/dto"
	statsout "habitwatch/internal/modules/stats/port/out"
	statsservice "habitwatch/internal/modules/stats/service"
	workflowadapter "habitwatch/internal/modules/workflow/adapter/out"
	"habitwatch/internal/platform/clock"
	"habitwatch/internal/platform/config"
	apperrors "habitwatch/internal/platform/errors"
	"habitwatch/internal/platform/habits"
	"habitwatch/internal/platform/id"
	"habitwatch/internal/platform/logging"
	"habitwatch/internal/ui/dashboard"
)

// App holds the wired components for one monitoring run.
type App struct {
	Settings config.Settings
	Catalog  habits.Catalog
	Logger   *log.Logger
	LogFile  string
	RunID    string

	monitor *monitorusecase.Interactor
	history statsout.HistoryStore
}

func New(settings config.Settings) (*App, error) {
	clk := clock.SystemClock{}
	runID := id.UUID{}.New()
	startedAt := clk.Now()

	logger, logFile, err := logging.Open(settings.LogDir, settings.LogLevel, startedAt)
	if err != nil {
		return nil, err
	}

	catalog, err := habits.Load(settings.HabitsFile)
	if err != nil {
		return nil, err
	}

	// History is best-effort; a broken database must not block monitoring.
	history, err := statsadapter.NewSQLiteHistoryStore(settings.HistoryDB)
	if err != nil {
		logger.Warn("history store unavailable", "err", err)
		history = nil
	}

	grace := 2 * settings.FrameInterval()
	stats := statsservice.New(clk, history, logger, runID, grace)

	frames := workflowadapter.NewExecFrameSource(settings.CameraIndex, settings.CameraWidth, settings.CameraHeight)
	client := workflowadapter.NewClient(settings.APIKey, settings.WorkspaceName, settings.WorkflowID, clk)
	pipeline := workflowadapter.NewStreamPipeline(frames, client, settings.FrameInterval())

	notifier := alertservice.NewNotifier(
		settings.Cooldown(), settings.EnableAudioWarnings,
		alertadapter.NewExecSounder(), clk, catalog, logger,
	)

	monitor := monitorusecase.NewInteractor(settings, catalog, pipeline, stats, notifier, clk, logger)

	logger.Info("habitwatch starting",
		"run_id", runID,
		"workspace", settings.WorkspaceName,
		"workflow", settings.WorkflowID,
		"threshold", settings.ConfidenceThreshold,
		"camera", settings.CameraIndex,
		"fps", settings.CameraFPS,
		"tracked", catalog.TrackedClasses(),
	)
	if history != nil {
		if n, err := history.SessionCount(context.Background()); err == nil {
			logger.Info("history loaded", "prior_habit_sessions", n)
		}
	}

	return &App{
		Settings: settings,
		Catalog:  catalog,
		Logger:   logger,
		LogFile:  logFile,
		RunID:    runID,
		monitor:  monitor,
		history:  history,
	}, nil
}

type RunOptions struct {
	SkipValidation bool
	NoDashboard    bool
}

// Run executes the monitor, either under the live dashboard or headless
// with file-only logging, and prints the shutdown summary.
func (a *App) Run(ctx context.Context, out io.Writer, opts RunOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.NoDashboard {
		snap, err := a.monitor.Run(ctx, opts.SkipValidation)
		a.printSummary(out, snap, err)
		return err
	}

	model := dashboard.New(a.monitor, a.Catalog, cancel, a.Settings.RefreshInterval())
	program := tea.NewProgram(model, tea.WithAltScreen())

	var (
		snap   statsdto.Snapshot
		runErr error
		done   = make(chan struct{})
	)
	go func() {
		defer close(done)
		snap, runErr = a.monitor.Run(ctx, opts.SkipValidation)
		program.Send(dashboard.DoneMsg{Err: runErr})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("dashboard: %w", err)
	}
	<-done

	a.printSummary(out, snap, runErr)
	return runErr
}

func (a *App) printSummary(out io.Writer, snap statsdto.Snapshot, runErr error) {
	// No summary when monitoring never started.
	if errors.Is(runErr, apperrors.ErrValidationFailed) {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, dashboard.Summary(snap))
	fmt.Fprintf(out, "Log file: %s\n", a.LogFile)
}

func (a *App) Close() error {
	if a.history != nil {
		return a.history.Close()
	}
	return nil
}
