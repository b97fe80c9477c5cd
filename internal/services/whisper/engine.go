package whisper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"wemscribe/internal/language"
)

// ErrEngineInit marks failures to bring up the inference engine. No item can
// complete without an engine, so callers treat this as fatal for the run.
var ErrEngineInit = errors.New("engine init failed")

// Request describes one transcription call.
type Request struct {
	// AudioPath is the normalized audio file to transcribe.
	AudioPath string
	// Language is the audio language hint; language.Auto requests detection.
	Language string
	// TranslateToEnglish switches the engine to its translate task.
	TranslateToEnglish bool
}

// Result carries the recognized text and the language the engine settled on.
// Empty text is a valid result for silent or non-speech audio.
type Result struct {
	Text     string
	Language string
}

// Transcriber defines the behaviour required by the transcribe handler.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (Result, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// Option configures the engine.
type Option func(*Engine)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(e *Engine) {
		if exec != nil {
			e.exec = exec
		}
	}
}

// WithLookPath overrides binary resolution (primarily for tests).
func WithLookPath(fn func(string) (string, error)) Option {
	return func(e *Engine) {
		if fn != nil {
			e.lookPath = fn
		}
	}
}

// Engine wraps the faster-whisper CLI. It is a long-lived object owned by
// the caller: initialization is lazy and happens exactly once, the device
// choice is fixed for the engine's lifetime, and Close releases the scratch
// directory on run exit.
type Engine struct {
	cfg      Config
	exec     Executor
	lookPath func(string) (string, error)

	initOnce    sync.Once
	initErr     error
	device      string
	computeType string
	scratchDir  string
}

// NewEngine constructs an engine. No model or device work happens until the
// first Transcribe call.
func NewEngine(cfg Config, opts ...Option) *Engine {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = DefaultBinary
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if strings.TrimSpace(cfg.Device) == "" {
		cfg.Device = DeviceAuto
	}
	engine := &Engine{
		cfg:      cfg,
		exec:     commandExecutor{},
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Model returns the configured model name for logging.
func (e *Engine) Model() string {
	return e.cfg.Model
}

// Device returns the resolved inference device, or the configured value if
// the engine has not initialized yet.
func (e *Engine) Device() string {
	if e.device != "" {
		return e.device
	}
	return e.cfg.Device
}

// init resolves the binary and fixes the device choice for the run.
func (e *Engine) init() error {
	e.initOnce.Do(func() {
		if _, err := e.lookPath(e.cfg.Binary); err != nil {
			e.initErr = fmt.Errorf("%w: resolve %s: %v", ErrEngineInit, e.cfg.Binary, err)
			return
		}

		device := e.cfg.Device
		if device == DeviceAuto {
			device = DeviceCPU
			if _, err := e.lookPath(cudaProbeBinary); err == nil {
				device = DeviceCUDA
			}
		}
		switch device {
		case DeviceCUDA:
			e.computeType = CUDAComputeType
		case DeviceCPU:
			e.computeType = CPUComputeType
		default:
			e.initErr = fmt.Errorf("%w: unknown device %q", ErrEngineInit, device)
			return
		}
		e.device = device

		scratch, err := os.MkdirTemp("", "wemscribe-whisper-")
		if err != nil {
			e.initErr = fmt.Errorf("%w: create scratch dir: %v", ErrEngineInit, err)
			return
		}
		e.scratchDir = scratch
	})
	return e.initErr
}

// Close removes the engine's scratch directory. Safe to call whether or not
// the engine ever initialized.
func (e *Engine) Close() error {
	if e.scratchDir == "" {
		return nil
	}
	err := os.RemoveAll(e.scratchDir)
	e.scratchDir = ""
	return err
}

// Transcribe runs one inference call and parses the JSON payload the CLI
// writes. The model stays loaded inside the CLI's cache between calls; the
// expensive device/model decision is made once by init.
func (e *Engine) Transcribe(ctx context.Context, req Request) (Result, error) {
	var result Result

	if strings.TrimSpace(req.AudioPath) == "" {
		return result, errors.New("transcribe: audio path required")
	}
	if err := e.init(); err != nil {
		return result, err
	}

	runCtx := ctx
	if e.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	args := e.buildArgs(req)
	if out, err := e.exec.Run(runCtx, e.cfg.Binary, args); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("whisper timed out after %ds: %s", e.cfg.TimeoutSeconds, strings.TrimSpace(out))
		}
		return result, fmt.Errorf("whisper: %w: %s", err, strings.TrimSpace(out))
	}

	payloadPath := e.payloadPathFor(req.AudioPath)
	payload, err := loadPayload(payloadPath)
	if err != nil {
		return result, fmt.Errorf("whisper output: %w", err)
	}
	defer func() { _ = os.Remove(payloadPath) }()

	result.Text = payload.TranscriptText()
	result.Language = payload.Language
	if result.Language == "" && req.Language != language.Auto {
		result.Language = req.Language
	}
	return result, nil
}

func (e *Engine) buildArgs(req Request) []string {
	args := make([]string, 0, 24)
	args = append(args,
		req.AudioPath,
		"--model", e.cfg.Model,
		"--device", e.device,
		"--compute_type", e.computeType,
		"--output_format", OutputFormat,
		"--output_dir", e.scratchDir,
		"--vad_filter", "True",
		"--beam_size", BeamSize,
		"--best_of", BestOf,
		"--condition_on_previous_text", "False",
		"--verbose", "False",
	)
	if req.Language != "" && req.Language != language.Auto {
		args = append(args, "--language", req.Language)
	}
	if req.TranslateToEnglish {
		args = append(args, "--task", "translate")
	}
	return args
}

func (e *Engine) payloadPathFor(audioPath string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(e.scratchDir, base+".json")
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	out, err := cmd.CombinedOutput()
	return string(out), err
}
