package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"wemscribe/internal/config"
	"wemscribe/internal/language"
	"wemscribe/internal/logging"
	"wemscribe/internal/queue"
	"wemscribe/internal/services"
	"wemscribe/internal/services/whisper"
	"wemscribe/internal/stage"
)

// Handler runs speech recognition on normalized audio. It shares one engine
// across all items so the model and device choice are made once per run.
type Handler struct {
	cfg    *config.Config
	engine whisper.Transcriber
	logger *slog.Logger
}

// NewHandler constructs the transcription stage handler around an engine
// owned by the caller. The caller is responsible for closing the engine at
// run exit.
func NewHandler(cfg *config.Config, engine whisper.Transcriber, logger *slog.Logger) *Handler {
	return &Handler{cfg: cfg, engine: engine, logger: logging.NewComponentLogger(logger, "transcribe")}
}

func (h *Handler) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Transcribing", "Running speech recognition")
	item.ErrorMessage = ""
	return nil
}

func (h *Handler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, h.logger)

	audio := strings.TrimSpace(item.OutputPath)
	if audio == "" {
		return services.Wrap(services.ErrValidation, "transcribing", "validate inputs",
			"no normalized audio recorded; conversion stages must run first", nil)
	}

	result, err := h.engine.Transcribe(ctx, whisper.Request{
		AudioPath:          audio,
		Language:           h.cfg.Whisper.Language,
		TranslateToEnglish: h.translateToEnglish(),
	})
	if err != nil {
		// Engine bring-up failures pass through untagged so the run can
		// recognize them as fatal rather than item-scoped.
		if errors.Is(err, whisper.ErrEngineInit) {
			return err
		}
		return services.Wrap(services.ErrExternalTool, "transcribing", "run inference",
			fmt.Sprintf("transcribe %s", item.Filename), err)
	}

	item.Transcript = result.Text
	item.DetectedLanguage = result.Language
	item.Status = queue.StatusTranscribed
	item.SetProgress("Transcribed", "Speech recognition complete")
	logger.Info("transcribed asset",
		logging.String("audio", audio),
		logging.String("language", result.Language),
		logging.Int("transcript_chars", len(result.Text)),
	)
	return nil
}

func (h *Handler) HealthCheck(ctx context.Context) stage.Health {
	binary := h.cfg.Whisper.Binary
	if strings.ContainsRune(binary, '/') {
		return stage.Healthy("transcribe")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return stage.Unhealthy("transcribe", fmt.Sprintf("engine binary: %v", err))
	}
	return stage.Healthy("transcribe")
}

// translateToEnglish reports whether the run requests translation. Audio
// already hinted as English skips the translate task.
func (h *Handler) translateToEnglish() bool {
	if h.cfg.Whisper.TranslateTo != language.English {
		return false
	}
	return h.cfg.Whisper.Language != language.English
}
