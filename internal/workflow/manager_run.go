package workflow

import (
	"context"
	"errors"
	"fmt"

	"wemscribe/internal/assets"
	"wemscribe/internal/logging"
	"wemscribe/internal/queue"
	"wemscribe/internal/results"
	"wemscribe/internal/services"
	"wemscribe/internal/services/whisper"
)

// Summary reports the outcome of one run.
type Summary struct {
	RunID      string
	Requested  int
	Succeeded  int
	Failed     int
	Missing    []string
	OutputPath string
}

// Run resolves the requested assets, enqueues the ones found on disk, and
// processes each to a terminal state. Per-item failures are recorded and do
// not stop the run; engine bring-up and output persistence failures do. On
// a fatal error or cancellation, every non-terminal item is marked failed
// so its staged copy is retained for inspection.
func (m *Manager) Run(ctx context.Context, runID string, locator *assets.Locator, requests []assets.Request) (*Summary, error) {
	runCtx := services.WithRunID(ctx, runID)
	logger := logging.WithContext(runCtx, m.logger)

	summary := &Summary{
		RunID:      runID,
		Requested:  len(requests),
		OutputPath: m.cfg.Paths.OutputCSV,
	}

	located := locator.Locate(requests)
	for _, asset := range located {
		if !asset.Found {
			summary.Missing = append(summary.Missing, asset.Request.Filename)
			logger.Warn("requested asset not found",
				logging.String(logging.FieldAsset, asset.Request.Filename),
				logging.Int("request_line", asset.Request.Line),
			)
			continue
		}
		if _, err := m.store.NewAsset(runCtx, runID, asset.Request.Filename, asset.Path); err != nil {
			return summary, fmt.Errorf("enqueue %s: %w", asset.Request.Filename, err)
		}
	}

	items, err := m.store.ItemsForRun(runCtx, runID)
	if err != nil {
		return summary, fmt.Errorf("load run items: %w", err)
	}
	logger.Info("run started",
		logging.Int("requested", summary.Requested),
		logging.Int("queued", len(items)),
		logging.Int("missing", len(summary.Missing)),
	)

	for _, item := range items {
		if err := runCtx.Err(); err != nil {
			m.failRemaining(runID, queue.AbortReason)
			return summary, err
		}

		err := m.processItem(runCtx, item)
		switch {
		case err == nil:
			summary.Succeeded++
		case isRunFatal(err):
			m.failRemaining(runID, queue.AbortReason)
			return summary, err
		default:
			summary.Failed++
		}
	}

	logger.Info("run finished",
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("missing", len(summary.Missing)),
		logging.String("output", summary.OutputPath),
	)
	return summary, nil
}

// failRemaining marks every non-terminal item of the run as failed. It uses
// a fresh context so an aborted run can still persist the transition.
func (m *Manager) failRemaining(runID, reason string) {
	cleanupCtx := context.Background()
	if count, err := m.store.FailRemaining(cleanupCtx, runID, reason); err != nil {
		m.logger.Error("could not fail remaining items", logging.Error(err))
	} else if count > 0 {
		m.logger.Warn("failed remaining items", logging.Int64("count", count))
	}
}

// isRunFatal reports whether an item error should abort the whole run. No
// item can complete without an inference engine or a writable output table.
func isRunFatal(err error) bool {
	return errors.Is(err, whisper.ErrEngineInit) || errors.Is(err, results.ErrWrite)
}
