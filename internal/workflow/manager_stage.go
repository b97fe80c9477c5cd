package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"wemscribe/internal/logging"
	"wemscribe/internal/queue"
	"wemscribe/internal/services"
)

// processItem drives one item from its current status to a terminal state.
// A nil return means the item completed; a run-fatal error is returned
// as-is for the run loop to classify.
func (m *Manager) processItem(ctx context.Context, item *queue.Item) error {
	itemCtx := services.WithItemID(ctx, item.ID)

	for !item.Status.IsTerminal() {
		stage, ok := m.stageForStatus(item.Status)
		if !ok {
			err := fmt.Errorf("no stage for status %q", item.Status)
			m.markFailed(itemCtx, item, err.Error())
			return err
		}
		if err := m.runStage(itemCtx, stage, item); err != nil {
			return err
		}
	}
	return nil
}

// stageForStatus maps a ready status to the stage that consumes it. An item
// sitting at a stage's processing status resumes that same stage, so an
// interrupted run can be retried.
func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	ready := map[queue.Status]int{
		queue.StatusPending:      0,
		queue.StatusCollecting:   0,
		queue.StatusCollected:    1,
		queue.StatusDecoding:     1,
		queue.StatusDecoded:      2,
		queue.StatusNormalizing:  2,
		queue.StatusNormalized:   3,
		queue.StatusTranscribing: 3,
		queue.StatusTranscribed:  4,
		queue.StatusRecording:    4,
	}
	idx, ok := ready[status]
	if !ok || idx >= len(m.stages) {
		return pipelineStage{}, false
	}
	return m.stages[idx], true
}

func (m *Manager) runStage(ctx context.Context, stage pipelineStage, item *queue.Item) error {
	if stage.handler == nil {
		err := fmt.Errorf("stage %s has no handler", stage.name)
		m.markFailed(ctx, item, err.Error())
		return err
	}

	stageCtx := services.WithStage(ctx, stage.name)
	logger := logging.WithContext(stageCtx, m.logger)

	start := time.Now()
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String(logging.FieldAsset, item.Filename),
	)

	item.Status = stage.processing
	item.ErrorMessage = ""
	if err := m.store.Update(stageCtx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}

	if err := stage.handler.Prepare(stageCtx, item); err != nil {
		return m.handleStageFailure(stageCtx, logger, stage.name, item, err)
	}
	if err := m.store.Update(stageCtx, item); err != nil {
		return fmt.Errorf("persist stage preparation: %w", err)
	}

	if err := stage.handler.Execute(stageCtx, item); err != nil {
		return m.handleStageFailure(stageCtx, logger, stage.name, item, err)
	}

	if item.Status == stage.processing || item.Status == "" {
		item.Status = stage.done
	}
	if err := m.store.Update(stageCtx, item); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}

	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(start)),
	)
	return nil
}

func (m *Manager) handleStageFailure(ctx context.Context, logger *slog.Logger, stageName string, item *queue.Item, stageErr error) error {
	message := strings.TrimSpace(stageErr.Error())
	m.markFailed(ctx, item, message)
	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String(logging.FieldAsset, item.Filename),
		logging.String("error_message", message),
	)
	return stageErr
}

func (m *Manager) markFailed(ctx context.Context, item *queue.Item, message string) {
	// A failed item retains only its staged source copy. Any decoded
	// intermediate still on disk, as after an abort between the decode
	// and normalize stages, is discarded before the terminal transition.
	if decoded := strings.TrimSpace(item.DecodedPath); decoded != "" {
		if err := os.Remove(decoded); err != nil && !errors.Is(err, os.ErrNotExist) {
			m.logger.Warn("could not discard decoded intermediate",
				logging.String("path", decoded), logging.Error(err))
		}
		item.DecodedPath = ""
	}
	item.SetFailed(message)
	if err := m.store.Update(ctx, item); err != nil {
		m.logger.Error("could not persist item failure", logging.Error(err))
	}
}
