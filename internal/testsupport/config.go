package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"wemscribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceWorkspace = filepath.Join(base, "wem-collection")
	cfgVal.Paths.OutputWorkspace = filepath.Join(base, "ogg-collection")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.OutputCSV = filepath.Join(base, "voicelines.csv")
	cfgVal.Tools.Dir = filepath.Join(base, "tools")
	cfgVal.Tools.Ww2oggBinary = filepath.Join(base, "tools", "ww2ogg")
	cfgVal.Tools.RevorbBinary = filepath.Join(base, "tools", "revorb")
	cfgVal.Tools.CodebooksPath = filepath.Join(base, "tools", "packed_codebooks_aoTuV_603.bin")
	cfgVal.Whisper.Binary = filepath.Join(base, "tools", "whisper-ctranslate2")
	cfgVal.Whisper.Device = "cpu"

	if err := cfgVal.EnsureDirectories(); err != nil {
		t.Fatalf("create workspace directories: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStubbedTools writes succeeding stub executables for the configured
// conversion and transcription binaries plus an empty codebooks resource.
func WithStubbedTools() ConfigOption {
	return func(b *configBuilder) {
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, target := range []string{
			b.cfg.Tools.Ww2oggBinary,
			b.cfg.Tools.RevorbBinary,
			b.cfg.Whisper.Binary,
		} {
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				b.t.Fatalf("mkdir tools dir: %v", err)
			}
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", target, err)
			}
		}
		if err := os.WriteFile(b.cfg.Tools.CodebooksPath, []byte{0x00}, 0o644); err != nil {
			b.t.Fatalf("write codebooks stub: %v", err)
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SourceWorkspace)
}
