package artifacts

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"repost/internal/config"
	"repost/internal/logging"
	"repost/internal/queue"
	"repost/internal/services"
	"repost/internal/stage"
)

// Locator is the pipeline stage that resolves the batch tool's output folder
// for a work item and harvests its artifacts.
type Locator struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewLocator builds the artifact location stage.
func NewLocator(cfg *config.Config, logger *slog.Logger) *Locator {
	return &Locator{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "artifacts"),
	}
}

// SetLogger swaps in a context-scoped logger for the current item.
func (l *Locator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

func (l *Locator) Prepare(ctx context.Context, item *queue.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	item.SetProgress("Locating", "Searching output folders")
	return nil
}

func (l *Locator) Execute(ctx context.Context, item *queue.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	root := l.cfg.Transcriber.OutputDir
	dir, err := LocateOutputDir(root, item.Title)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "locate", "scan output root", "", err)
	}
	if dir == "" {
		return services.Wrap(services.ErrNotFound, "locate", "match output folder",
			fmt.Sprintf("no output folders under %s", root), nil)
	}

	set, err := Harvest(dir)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "locate", "harvest artifacts", "", err)
	}

	item.ArtifactDir = set.Dir
	item.TranscriptPath = set.TranscriptPath
	item.MediaFile = set.MediaPath
	item.SetProgress("Locating", "Artifacts harvested")
	l.logger.Info("artifacts located",
		logging.String("dir", set.Dir),
		logging.String("media", set.MediaPath),
		logging.Int("transcript_chars", len([]rune(set.Transcript))),
	)
	return nil
}

func (l *Locator) HealthCheck(ctx context.Context) stage.Health {
	const name = "artifacts"
	if _, err := os.Stat(l.cfg.Transcriber.OutputDir); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("output dir unreadable: %v", err))
	}
	return stage.Healthy(name)
}
