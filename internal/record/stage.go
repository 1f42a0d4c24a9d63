package record

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"repost/internal/config"
	"repost/internal/logging"
	"repost/internal/queue"
	"repost/internal/services"
	"repost/internal/stage"
)

// Packager is the pipeline stage that writes the durable content record
// before publishing is attempted.
type Packager struct {
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

// NewPackager builds the packaging stage.
func NewPackager(cfg *config.Config, logger *slog.Logger) *Packager {
	return &Packager{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "record"),
		now:    time.Now,
	}
}

// SetLogger swaps in a context-scoped logger for the current item.
func (p *Packager) SetLogger(logger *slog.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

func (p *Packager) Prepare(ctx context.Context, item *queue.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(item.DraftTitle) == "" {
		return services.Wrap(services.ErrValidation, "package", "check draft", "item has no generated title", nil)
	}
	item.SetProgress("Packaging", "Writing content record")
	return nil
}

func (p *Packager) Execute(ctx context.Context, item *queue.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := Write(p.cfg.Paths.RecordsDir, item, p.now())
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "package", "write record", "", err)
	}
	item.RecordPath = path
	item.SetProgress("Packaging", "Content record written")
	p.logger.Info("content record written", logging.String("path", path))
	return nil
}

func (p *Packager) HealthCheck(ctx context.Context) stage.Health {
	const name = "record"
	dir := p.cfg.Paths.RecordsDir
	if strings.TrimSpace(dir) == "" {
		return stage.Unhealthy(name, "records dir not configured")
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return stage.Unhealthy(name, fmt.Sprintf("%s is not a directory", dir))
	}
	return stage.Healthy(name)
}
