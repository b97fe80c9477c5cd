package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"wemscribe/internal/config"
	"wemscribe/internal/logging"
	"wemscribe/internal/queue"
	"wemscribe/internal/services"
	"wemscribe/internal/services/ww2ogg"
	"wemscribe/internal/stage"
)

// DecodeHandler turns a staged compressed asset into a standard audio
// container by delegating to the external decode tool.
type DecodeHandler struct {
	cfg     *config.Config
	decoder ww2ogg.Decoder
	logger  *slog.Logger
}

// NewDecodeHandler constructs the decode stage handler with the configured
// external tool.
func NewDecodeHandler(cfg *config.Config, logger *slog.Logger) (*DecodeHandler, error) {
	client, err := ww2ogg.New(cfg.Tools.Ww2oggBinary, cfg.Tools.CodebooksPath, cfg.Tools.DecodeTimeout)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "decoding", "create client", "", err)
	}
	return NewDecodeHandlerWithDecoder(cfg, logger, client), nil
}

// NewDecodeHandlerWithDecoder allows injecting the decoder (used in tests).
func NewDecodeHandlerWithDecoder(cfg *config.Config, logger *slog.Logger, decoder ww2ogg.Decoder) *DecodeHandler {
	return &DecodeHandler{cfg: cfg, decoder: decoder, logger: logging.NewComponentLogger(logger, "decode")}
}

func (h *DecodeHandler) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Decoding", "Converting compressed audio")
	item.ErrorMessage = ""
	return nil
}

func (h *DecodeHandler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	staged := strings.TrimSpace(item.StagedPath)
	if staged == "" {
		return services.Wrap(services.ErrValidation, "decoding", "validate inputs",
			"no staged copy recorded; collect stage must run first", nil)
	}

	decoded, err := h.decoder.Decode(ctx, staged)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "decoding", "run decode tool",
			fmt.Sprintf("decode %s", item.Filename), err)
	}

	item.DecodedPath = decoded
	item.Status = queue.StatusDecoded
	item.SetProgress("Decoded", "Compressed audio converted")
	logger.Info("decoded asset",
		logging.String("staged", staged),
		logging.String("decoded", decoded),
	)
	return nil
}

func (h *DecodeHandler) HealthCheck(ctx context.Context) stage.Health {
	for _, path := range []string{h.cfg.Tools.Ww2oggBinary, h.cfg.Tools.CodebooksPath} {
		if _, err := os.Stat(path); err != nil {
			return stage.Unhealthy("decode", fmt.Sprintf("tool resource: %v", err))
		}
	}
	return stage.Healthy("decode")
}
