package convert

import (
	"context"
	"errors"
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
	"wemscribe/internal/services/revorb"
	"wemscribe/internal/stage"
)

// NormalizeHandler rewrites a decoded container in place with corrected
// framing, then moves it into the output workspace as the deliverable.
type NormalizeHandler struct {
	cfg        *config.Config
	normalizer revorb.Normalizer
	logger     *slog.Logger
}

// NewNormalizeHandler constructs the normalize stage handler with the
// configured external tool.
func NewNormalizeHandler(cfg *config.Config, logger *slog.Logger) (*NormalizeHandler, error) {
	client, err := revorb.New(cfg.Tools.RevorbBinary, cfg.Tools.NormalizeTimeout)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "normalizing", "create client", "", err)
	}
	return NewNormalizeHandlerWithNormalizer(cfg, logger, client), nil
}

// NewNormalizeHandlerWithNormalizer allows injecting the normalizer (used in tests).
func NewNormalizeHandlerWithNormalizer(cfg *config.Config, logger *slog.Logger, normalizer revorb.Normalizer) *NormalizeHandler {
	return &NormalizeHandler{cfg: cfg, normalizer: normalizer, logger: logging.NewComponentLogger(logger, "normalize")}
}

func (h *NormalizeHandler) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Normalizing", "Correcting audio framing")
	item.ErrorMessage = ""
	return nil
}

func (h *NormalizeHandler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	decoded := strings.TrimSpace(item.DecodedPath)
	if decoded == "" {
		return services.Wrap(services.ErrValidation, "normalizing", "validate inputs",
			"no decoded file recorded; decode stage must run first", nil)
	}

	if err := h.normalizer.Normalize(ctx, decoded); err != nil {
		h.discardIntermediate(logger, item, decoded)
		return services.Wrap(services.ErrExternalTool, "normalizing", "run normalize tool",
			fmt.Sprintf("normalize %s", filepath.Base(decoded)), err)
	}

	output := filepath.Join(h.cfg.Paths.OutputWorkspace, filepath.Base(decoded))
	if err := moveFile(decoded, output); err != nil {
		h.discardIntermediate(logger, item, decoded)
		return services.Wrap(services.ErrTransient, "normalizing", "move output",
			fmt.Sprintf("move %s into output workspace", filepath.Base(decoded)), err)
	}

	item.DecodedPath = ""
	item.OutputPath = output
	item.Status = queue.StatusNormalized
	item.SetProgress("Normalized", "Audio ready for transcription")
	logger.Info("normalized asset", logging.String("output", output))
	return nil
}

// discardIntermediate removes the stage-1 container. Only the staged source
// copy survives a failed item; the decoded intermediate never outlives the
// normalize stage in either direction.
func (h *NormalizeHandler) discardIntermediate(logger *slog.Logger, item *queue.Item, decoded string) {
	if err := os.Remove(decoded); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("could not discard decoded intermediate",
			logging.String("path", decoded), logging.Error(err))
	}
	item.DecodedPath = ""
}

func (h *NormalizeHandler) HealthCheck(ctx context.Context) stage.Health {
	if _, err := os.Stat(h.cfg.Tools.RevorbBinary); err != nil {
		return stage.Unhealthy("normalize", fmt.Sprintf("tool resource: %v", err))
	}
	return stage.Healthy("normalize")
}

// moveFile renames src to dst, falling back to copy-and-remove when the
// workspaces live on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := fileutil.CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
