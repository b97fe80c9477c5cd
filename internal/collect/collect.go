package collect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"wemscribe/internal/config"
	"wemscribe/internal/fileutil"
	"wemscribe/internal/logging"
	"wemscribe/internal/queue"
	"wemscribe/internal/services"
	"wemscribe/internal/stage"
)

// Collector copies located source files into the source workspace so the
// rest of the pipeline never touches the original tree.
type Collector struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewCollector constructs the collect stage handler.
func NewCollector(cfg *config.Config, logger *slog.Logger) *Collector {
	return &Collector{cfg: cfg, logger: logging.NewComponentLogger(logger, "collect")}
}

func (c *Collector) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Collecting", "Staging source file")
	item.ErrorMessage = ""
	return nil
}

func (c *Collector) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)

	source := strings.TrimSpace(item.SourcePath)
	if source == "" {
		return services.Wrap(services.ErrValidation, "collecting", "validate inputs",
			"no source path recorded for item", nil)
	}

	staged := filepath.Join(c.cfg.Paths.SourceWorkspace, item.Filename)
	// A retained copy from a previous failed run is overwritten, not
	// duplicated, so reruns of failed items stay idempotent.
	if err := fileutil.CopyFile(source, staged); err != nil {
		return services.Wrap(services.ErrTransient, "collecting", "copy source",
			fmt.Sprintf("copy %s into workspace", item.Filename), err)
	}

	item.StagedPath = staged
	item.Status = queue.StatusCollected
	item.SetProgress("Collected", "Source file staged")
	logger.Info("staged source file",
		logging.String("source", source),
		logging.String("staged", staged),
	)
	return nil
}

func (c *Collector) HealthCheck(ctx context.Context) stage.Health {
	info, err := os.Stat(c.cfg.Paths.SourceWorkspace)
	if err != nil {
		return stage.Unhealthy("collect", fmt.Sprintf("source workspace: %v", err))
	}
	if !info.IsDir() {
		return stage.Unhealthy("collect", "source workspace is not a directory")
	}
	return stage.Healthy("collect")
}
