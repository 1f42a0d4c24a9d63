package transcriber

import (
	"context"
	"log/slog"
	"time"

	"repost/internal/logging"
	"repost/internal/services"
)

// StatusProbe reports where the external job stands. The task sheet adapter
// is the production probe; tests substitute their own.
type StatusProbe interface {
	Status(ctx context.Context) (JobStatus, error)
}

// Monitor polls a status probe until the job completes, fails, or the
// timeout elapses.
type Monitor struct {
	probe    StatusProbe
	interval time.Duration
	logger   *slog.Logger
}

// NewMonitor builds a monitor polling at the given interval.
func NewMonitor(probe StatusProbe, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Monitor{
		probe:    probe,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, "job-monitor"),
	}
}

// AwaitCompletion polls until the job reports done. It returns false when the
// timeout elapses first. The first probe happens only after one full poll
// interval, so a timeout shorter than the interval always comes back false
// even if the job already finished.
func (m *Monitor) AwaitCompletion(ctx context.Context, timeout time.Duration) (bool, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.C:
			m.logger.Warn("job monitor timed out",
				logging.Duration("waited", time.Since(start)),
				logging.Duration("timeout", timeout),
			)
			return false, nil
		case <-ticker.C:
		}

		status, err := m.probe.Status(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			// The tool may hold the sheet open mid-write; keep polling.
			m.logger.Warn("status probe failed", logging.Error(err))
			continue
		}

		switch status.State {
		case StateDone:
			m.logger.Info("job reported done", logging.Duration("waited", time.Since(start)))
			return true, nil
		case StateError:
			return false, services.Wrap(services.ErrExternalTool, "transcribe", "job status",
				status.Reason, nil)
		default:
			m.logger.Debug("job still running",
				logging.String("state", status.State.String()),
				logging.String("detail", status.Reason),
			)
		}
	}
}
