package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"repost/internal/config"
	"repost/internal/logging"
	"repost/internal/queue"
	"repost/internal/services"
	"repost/internal/stage"
)

// publishFunc lets tests replace the browser automation.
type publishFunc func(ctx context.Context, req Request) (Result, error)

// Stage is the pipeline stage that publishes a packaged item.
type Stage struct {
	cfg     *config.Config
	logger  *slog.Logger
	publish publishFunc
}

// NewStage builds the publishing stage.
func NewStage(cfg *config.Config, logger *slog.Logger) *Stage {
	s := &Stage{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "publisher"),
	}
	s.publish = func(ctx context.Context, req Request) (Result, error) {
		automator := NewAutomator(cfg.Publisher, cfg.Paths.LogDir, s.logger)
		return automator.Publish(ctx, req)
	}
	return s
}

// SetLogger swaps in a context-scoped logger for the current item.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetPublishFunc overrides the automation entry point (used by tests).
func (s *Stage) SetPublishFunc(fn publishFunc) {
	if fn != nil {
		s.publish = fn
	}
}

func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(item.MediaFile) == "" {
		return services.Wrap(services.ErrValidation, "publish", "check media", "item has no media file", nil)
	}
	if _, err := os.Stat(item.MediaFile); err != nil {
		return services.Wrap(services.ErrNotFound, "publish", "check media", "", err)
	}
	if strings.TrimSpace(item.DraftTitle) == "" {
		return services.Wrap(services.ErrValidation, "publish", "check draft", "item has no generated title", nil)
	}
	item.SetProgress("Publishing", "Starting browser automation")
	return nil
}

func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	result, err := s.publish(ctx, Request{
		MediaPath:   item.MediaFile,
		Title:       item.DraftTitle,
		Description: appendConfiguredTags(item.DraftDescription, s.cfg.Publisher.Tags),
	})
	if err != nil {
		failed := FailedPhase(err, phaseSessionStart)
		return services.Wrap(services.ErrExternalTool, "publish", string(failed), "", err)
	}
	item.SoftSuccess = result.SoftSuccess
	if result.SoftSuccess {
		item.SetProgress("Publishing", "Submitted without confirmation")
	} else {
		item.SetProgress("Publishing", "Publish confirmed")
	}
	return nil
}

// appendConfiguredTags adds the fixed topic tags to the description, skipping
// any the generated copy already carries.
func appendConfiguredTags(description string, tags []string) string {
	var missing []string
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimPrefix(tag, "#"))
		if tag == "" {
			continue
		}
		if strings.Contains(description, "#"+tag) {
			continue
		}
		missing = append(missing, "#"+tag)
	}
	if len(missing) == 0 {
		return description
	}
	return strings.TrimRight(description, "\n") + "\n" + strings.Join(missing, " ")
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "publisher"
	if strings.TrimSpace(s.cfg.Publisher.CreatorURL) == "" {
		return stage.Unhealthy(name, "creator url not configured")
	}
	if dir := strings.TrimSpace(s.cfg.Publisher.ProfileDir); dir != "" {
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			return stage.Unhealthy(name, fmt.Sprintf("%s is not a directory", dir))
		}
	}
	return stage.Healthy(name)
}
