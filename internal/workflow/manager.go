package workflow

import (
	"fmt"
	"log/slog"

	"wemscribe/internal/collect"
	"wemscribe/internal/config"
	"wemscribe/internal/logging"
	"wemscribe/internal/queue"
	"wemscribe/internal/record"
	"wemscribe/internal/results"
	"wemscribe/internal/services/whisper"
	"wemscribe/internal/stage"
	"wemscribe/internal/transcribe"

	"wemscribe/internal/convert"
)

// Stages bundles the five pipeline stage handlers. Tests inject fakes here;
// production code builds the set with NewStages.
type Stages struct {
	Collect    stage.Handler
	Decode     stage.Handler
	Normalize  stage.Handler
	Transcribe stage.Handler
	Record     stage.Handler
}

// NewStages wires the production stage handlers around the shared engine
// and result sink. The engine and sink remain owned by the caller, which
// closes them when the run ends.
func NewStages(cfg *config.Config, logger *slog.Logger, engine whisper.Transcriber, sink *results.Sink) (Stages, error) {
	decode, err := convert.NewDecodeHandler(cfg, logger)
	if err != nil {
		return Stages{}, fmt.Errorf("decode stage: %w", err)
	}
	normalize, err := convert.NewNormalizeHandler(cfg, logger)
	if err != nil {
		return Stages{}, fmt.Errorf("normalize stage: %w", err)
	}
	return Stages{
		Collect:    collect.NewCollector(cfg, logger),
		Decode:     decode,
		Normalize:  normalize,
		Transcribe: transcribe.NewHandler(cfg, engine, logger),
		Record:     record.NewRecorder(cfg, sink, logger),
	}, nil
}

// pipelineStage pairs a handler with its queue transitions.
type pipelineStage struct {
	name       string
	handler    stage.Handler
	processing queue.Status
	done       queue.Status
}

// Manager drives pipeline items through the stage sequence one at a time.
// Sequential processing keeps the single inference engine uncontended; the
// subprocess stages are cheap next to it.
type Manager struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	stages []pipelineStage
}

// NewManager constructs the workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, stages Stages) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "workflow"),
		stages: []pipelineStage{
			{name: "collect", handler: stages.Collect, processing: queue.StatusCollecting, done: queue.StatusCollected},
			{name: "decode", handler: stages.Decode, processing: queue.StatusDecoding, done: queue.StatusDecoded},
			{name: "normalize", handler: stages.Normalize, processing: queue.StatusNormalizing, done: queue.StatusNormalized},
			{name: "transcribe", handler: stages.Transcribe, processing: queue.StatusTranscribing, done: queue.StatusTranscribed},
			{name: "record", handler: stages.Record, processing: queue.StatusRecording, done: queue.StatusCompleted},
		},
	}
}
