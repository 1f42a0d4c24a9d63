package workflow

import (
	"context"
	"strings"

	"repost/internal/logging"
	"repost/internal/queue"
	"repost/internal/stage"
)

// cleanupStage removes the published video from the playlist. Removal failure
// is a warning only: the publish already happened and must not be reverted.
type cleanupStage struct {
	m *Manager
}

func newCleanupStage(m *Manager) *cleanupStage {
	return &cleanupStage{m: m}
}

func (c *cleanupStage) Prepare(ctx context.Context, item *queue.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	item.SetProgress("Cleaning", "Removing playlist entry")
	return nil
}

func (c *cleanupStage) Execute(ctx context.Context, item *queue.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := logging.WithContext(ctx, c.m.logger)
	id := strings.TrimSpace(item.PlaylistItemID)
	if id == "" {
		logger.Warn("no playlist entry recorded, skipping removal")
	} else if err := c.m.catalog.RemoveEntry(ctx, id); err != nil {
		logger.Warn("playlist entry removal failed",
			logging.String("playlist_item_id", id),
			logging.Error(err),
		)
	} else {
		logger.Info("playlist entry removed", logging.String("playlist_item_id", id))
	}
	item.SetProgress("Completed", "Pipeline finished")
	return nil
}

func (c *cleanupStage) HealthCheck(ctx context.Context) stage.Health {
	const name = "cleanup"
	if err := c.m.catalog.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}
