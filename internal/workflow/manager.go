package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"repost/internal/config"
	"repost/internal/logging"
	"repost/internal/queue"
	"repost/internal/services"
	"repost/internal/services/catalog"
	"repost/internal/services/mailer"
	"repost/internal/stage"
)

// StageSet bundles the concrete workflow handlers the manager orchestrates.
type StageSet struct {
	Transcriber stage.Handler
	Locator     stage.Handler
	Drafter     stage.Handler
	Packager    stage.Handler
	Publisher   stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// loggerAware lets handlers receive an item-scoped logger before running.
type loggerAware interface {
	SetLogger(*slog.Logger)
}

// ErrNothingToDo indicates the ledger holds no runnable item.
var ErrNothingToDo = errors.New("workflow: no runnable item")

// Manager drives one work item through the pipeline, strictly sequentially.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	catalog  catalog.Service
	notifier mailer.Service
	logger   *slog.Logger

	stages       []pipelineStage
	stageByStart map[queue.Status]pipelineStage
}

// NewManager wires the pipeline. The cleanup stage is built internally from
// the catalog service.
func NewManager(
	cfg *config.Config,
	store *queue.Store,
	stages StageSet,
	catalogSvc catalog.Service,
	notifier mailer.Service,
	logger *slog.Logger,
) *Manager {
	m := &Manager{
		cfg:      cfg,
		store:    store,
		catalog:  catalogSvc,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "workflow"),
	}
	m.stages = []pipelineStage{
		{name: "transcribe", handler: stages.Transcriber, startStatus: queue.StatusPending, processingStatus: queue.StatusTranscribing, doneStatus: queue.StatusTranscribed},
		{name: "locate", handler: stages.Locator, startStatus: queue.StatusTranscribed, processingStatus: queue.StatusLocating, doneStatus: queue.StatusLocated},
		{name: "draft", handler: stages.Drafter, startStatus: queue.StatusLocated, processingStatus: queue.StatusDrafting, doneStatus: queue.StatusDrafted},
		{name: "package", handler: stages.Packager, startStatus: queue.StatusDrafted, processingStatus: queue.StatusPackaging, doneStatus: queue.StatusPackaged},
		{name: "publish", handler: stages.Publisher, startStatus: queue.StatusPackaged, processingStatus: queue.StatusPublishing, doneStatus: queue.StatusPublished},
		{name: "cleanup", handler: newCleanupStage(m), startStatus: queue.StatusPublished, processingStatus: queue.StatusCleaning, doneStatus: queue.StatusCompleted},
	}
	m.stageByStart = make(map[queue.Status]pipelineStage, len(m.stages))
	for _, stg := range m.stages {
		m.stageByStart[stg.startStatus] = stg
	}
	return m
}

// startStatuses lists the statuses a run can pick an item up from.
func (m *Manager) startStatuses() []queue.Status {
	statuses := make([]queue.Status, 0, len(m.stages))
	for _, stg := range m.stages {
		statuses = append(statuses, stg.startStatus)
	}
	return statuses
}

// Intake pulls the next playlist entry into the ledger. An entry whose video
// is already tracked is not duplicated.
func (m *Manager) Intake(ctx context.Context) (*queue.Item, error) {
	entry, err := m.catalog.NextEntry(ctx)
	if errors.Is(err, catalog.ErrEmptyPlaylist) {
		return nil, err
	}
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "intake", "fetch playlist entry", "", err)
	}

	if existing, err := m.store.FindByVideoID(ctx, entry.VideoID); err != nil {
		return nil, fmt.Errorf("intake: check ledger: %w", err)
	} else if existing != nil {
		m.logger.Info("playlist entry already tracked",
			logging.String("video_id", entry.VideoID),
			logging.String("status", string(existing.Status)),
		)
		return existing, nil
	}

	item, err := m.store.NewItem(ctx, entry.VideoID, entry.PlaylistItemID, entry.Title, entry.WatchURL())
	if err != nil {
		return nil, fmt.Errorf("intake: insert ledger item: %w", err)
	}
	m.logger.Info("playlist entry queued",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("video_id", entry.VideoID),
		logging.String("title", entry.Title),
	)
	return item, nil
}

// RunNext recovers interrupted items, then processes the oldest runnable item
// to completion or failure. It returns ErrNothingToDo when the ledger has
// nothing runnable.
func (m *Manager) RunNext(ctx context.Context) (*queue.Item, error) {
	if reset, err := m.store.ResetStuckProcessing(ctx); err != nil {
		return nil, fmt.Errorf("reset stuck items: %w", err)
	} else if reset > 0 {
		m.logger.Info("rolled back interrupted items", logging.Int64("count", reset))
	}

	item, err := m.store.NextForStatuses(ctx, m.startStatuses()...)
	if err != nil {
		return nil, fmt.Errorf("pick next item: %w", err)
	}
	if item == nil {
		return nil, ErrNothingToDo
	}
	if err := m.ProcessItem(ctx, item); err != nil {
		return item, err
	}
	return item, nil
}

// ProcessItem advances the item stage by stage until it completes or fails.
func (m *Manager) ProcessItem(ctx context.Context, item *queue.Item) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch item.Status {
		case queue.StatusCompleted:
			return nil
		case queue.StatusFailed:
			return fmt.Errorf("item %d failed at %s: %s", item.ID, item.ProgressStage, item.ErrorMessage)
		}
		stg, ok := m.stageByStart[item.Status]
		if !ok {
			return fmt.Errorf("no stage configured for status %s", item.Status)
		}
		if err := m.runStage(ctx, stg, item); err != nil {
			return err
		}
	}
}

// HealthCheck runs every configured handler's health probe.
func (m *Manager) HealthCheck(ctx context.Context) []stage.Health {
	results := make([]stage.Health, 0, len(m.stages))
	for _, stg := range m.stages {
		if stg.handler == nil {
			results = append(results, stage.Unhealthy(stg.name, "handler not configured"))
			continue
		}
		results = append(results, stg.handler.HealthCheck(ctx))
	}
	return results
}
