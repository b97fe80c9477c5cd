package record

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"wemscribe/internal/config"
	"wemscribe/internal/logging"
	"wemscribe/internal/queue"
	"wemscribe/internal/results"
	"wemscribe/internal/services"
	"wemscribe/internal/stage"
)

// Recorder appends a transcribed item to the result sink and purges its
// staged source copy. The purge only happens here: an item that failed any
// earlier stage keeps its workspace copy for manual inspection.
type Recorder struct {
	cfg    *config.Config
	sink   *results.Sink
	logger *slog.Logger
}

// NewRecorder constructs the record stage handler around a sink owned by
// the caller.
func NewRecorder(cfg *config.Config, sink *results.Sink, logger *slog.Logger) *Recorder {
	return &Recorder{cfg: cfg, sink: sink, logger: logging.NewComponentLogger(logger, "record")}
}

func (r *Recorder) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Recording", "Persisting transcript")
	item.ErrorMessage = ""
	return nil
}

func (r *Recorder) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)

	output := strings.TrimSpace(item.OutputPath)
	if output == "" {
		return services.Wrap(services.ErrValidation, "recording", "validate inputs",
			"no normalized audio recorded; transcription must run first", nil)
	}

	// A failure to persist means no result can be delivered at all; the
	// workflow treats it as fatal for the run.
	if err := r.sink.Append(filepath.Base(output), item.Transcript); err != nil {
		return err
	}

	if staged := strings.TrimSpace(item.StagedPath); staged != "" {
		if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
			logger.Warn("could not purge staged copy", logging.String("staged", staged), logging.Error(err))
		} else {
			item.StagedPath = ""
		}
	}

	item.Status = queue.StatusCompleted
	item.SetProgress("Completed", "Transcript recorded")
	logger.Info("recorded transcript",
		logging.String("output", output),
		logging.Int("transcript_chars", len(item.Transcript)),
	)
	return nil
}

func (r *Recorder) HealthCheck(ctx context.Context) stage.Health {
	dir := filepath.Dir(r.cfg.Paths.OutputCSV)
	info, err := os.Stat(dir)
	if err != nil {
		return stage.Unhealthy("record", fmt.Sprintf("output directory: %v", err))
	}
	if !info.IsDir() {
		return stage.Unhealthy("record", "output location parent is not a directory")
	}
	return stage.Healthy("record")
}
