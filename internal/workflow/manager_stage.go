package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"repost/internal/logging"
	"repost/internal/queue"
	"repost/internal/services"
	"repost/internal/services/mailer"
)

func (m *Manager) runStage(ctx context.Context, stg pipelineStage, item *queue.Item) error {
	requestID := uuid.NewString()
	stageCtx := services.WithRequestID(ctx, requestID)
	stageCtx = services.WithItemID(stageCtx, item.ID)
	stageCtx = services.WithStage(stageCtx, stg.name)
	stageLogger := logging.WithContext(stageCtx, m.logger)
	if aware, ok := stg.handler.(loggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	if err := m.transitionToProcessing(stageCtx, stg, item); err != nil {
		stageLogger.Error("failed to transition item to processing", logging.Error(err))
		return err
	}

	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String("title", strings.TrimSpace(item.Title)),
	)

	if stg.handler == nil {
		err := fmt.Errorf("stage %s missing handler", stg.name)
		m.handleStageFailure(stageCtx, stg.name, item, err)
		return err
	}

	if err := stg.handler.Prepare(stageCtx, item); err != nil {
		m.handleStageFailure(stageCtx, stg.name, item, err)
		return err
	}
	if err := m.store.Update(stageCtx, item); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		return wrapped
	}

	if err := stg.handler.Execute(stageCtx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return err
		}
		m.handleStageFailure(stageCtx, stg.name, item, err)
		return err
	}

	if item.Status == stg.processingStatus || item.Status == "" {
		item.Status = stg.doneStatus
	}
	if err := m.store.Update(stageCtx, item); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		return wrapped
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(item.Status)),
		logging.String("progress_message", strings.TrimSpace(item.ProgressMessage)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)

	if item.Status == queue.StatusCompleted {
		m.notifySuccess(stageCtx, item)
	}
	return nil
}

func (m *Manager) transitionToProcessing(ctx context.Context, stg pipelineStage, item *queue.Item) error {
	item.Status = stg.processingStatus
	item.ErrorMessage = ""
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	return nil
}

// handleStageFailure marks the item failed, persists it, and fires the
// failure notification. The playlist entry stays untouched so the item can
// be retried after the cause is fixed.
func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	logger := logging.WithContext(ctx, m.logger)
	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failed"),
		logging.String(logging.FieldStage, stageName),
		logging.Error(stageErr),
	)

	item.Status = services.FailureStatus(stageErr)
	item.SetFailed(stageErr.Error())
	item.ProgressStage = stageName
	if err := m.store.Update(ctx, item); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}

	if err := m.notifier.NotifyFailure(ctx, mailer.ReportForFailure(item, stageName, stageErr)); err != nil {
		logger.Warn("failure notification not sent", logging.Error(err))
	}
}

func (m *Manager) notifySuccess(ctx context.Context, item *queue.Item) {
	logger := logging.WithContext(ctx, m.logger)
	if err := m.notifier.NotifySuccess(ctx, mailer.ReportForItem(item)); err != nil {
		logger.Warn("success notification not sent", logging.Error(err))
	}
}
