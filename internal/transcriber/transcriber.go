package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"repost/internal/config"
	"repost/internal/logging"
	"repost/internal/queue"
	"repost/internal/services"
	"repost/internal/stage"
)

// processGrace bounds how long we wait for the tool to exit on its own after
// the task sheet already says the job is done.
const processGrace = 30 * time.Second

// Transcriber drives the external batch tool for one work item: prime the
// task sheet, launch the tool, poll the status cell until done.
type Transcriber struct {
	cfg    *config.Config
	logger *slog.Logger
	sheet  *TaskSheet
	runner *Runner
	probe  StatusProbe
}

// New builds the transcription stage from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Transcriber {
	sheet := NewTaskSheet(cfg.Transcriber.TaskSheet)
	return &Transcriber{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "transcriber"),
		sheet:  sheet,
		runner: NewRunner(cfg.Transcriber.Command, cfg.Transcriber.Args, cfg.Transcriber.WorkDir, logger),
		probe:  sheet,
	}
}

// SetLogger swaps in a context-scoped logger for the current item.
func (t *Transcriber) SetLogger(logger *slog.Logger) {
	if logger != nil {
		t.logger = logger
	}
}

// SetProbe overrides the status probe. Tests use this to decouple the
// monitor loop from the workbook on disk.
func (t *Transcriber) SetProbe(probe StatusProbe) {
	if probe != nil {
		t.probe = probe
	}
}

// Prepare writes the work item into the task sheet and clears stale status.
func (t *Transcriber) Prepare(ctx context.Context, item *queue.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.sheet.Prime(item.SourceURL); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribe", "prime task sheet",
			"could not stage the work item for the batch tool", err)
	}
	item.SetProgress("Transcribing", "Task sheet primed")
	t.logger.Info("task sheet primed",
		logging.String("sheet", t.sheet.Path()),
		logging.String("url", item.SourceURL),
	)
	return nil
}

// Execute launches the batch tool and waits for the status cell to flip.
func (t *Transcriber) Execute(ctx context.Context, item *queue.Item) error {
	proc, err := t.runner.Start(ctx)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribe", "start tool", "", err)
	}

	interval := time.Duration(t.cfg.Transcriber.PollIntervalSeconds) * time.Second
	timeout := time.Duration(t.cfg.Transcriber.TimeoutMinutes) * time.Minute
	monitor := NewMonitor(t.probe, interval, t.logger)

	done, err := monitor.AwaitCompletion(ctx, timeout)
	if err != nil {
		_ = proc.Kill()
		return err
	}
	if !done {
		_ = proc.Kill()
		return services.Wrap(services.ErrTimeout, "transcribe", "await completion",
			fmt.Sprintf("batch tool did not finish within %s", timeout), nil)
	}

	// The sheet says done; give the tool a moment to exit cleanly.
	select {
	case <-proc.Done():
	case <-time.After(processGrace):
		t.logger.Warn("batch tool still running after completion, killing")
		_ = proc.Kill()
	case <-ctx.Done():
		_ = proc.Kill()
		return ctx.Err()
	}

	item.SetProgress("Transcribing", "Batch tool reported done")
	return nil
}

// HealthCheck verifies the tool command and task sheet are reachable.
func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcriber"
	if _, err := exec.LookPath(t.cfg.Transcriber.Command); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("command %q not found", t.cfg.Transcriber.Command))
	}
	if _, err := os.Stat(t.cfg.Transcriber.TaskSheet); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("task sheet unreadable: %v", err))
	}
	return stage.Healthy(name)
}
