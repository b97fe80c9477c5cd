package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !filepath.IsAbs(cfg.Paths.SourceWorkspace) {
		t.Fatalf("expected absolute source workspace, got %q", cfg.Paths.SourceWorkspace)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config to be reported as absent")
	}
	if path == "" {
		t.Fatal("expected resolved path")
	}
	if cfg.Whisper.Model != "small" {
		t.Fatalf("expected default model, got %q", cfg.Whisper.Model)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`source_workspace = "` + filepath.Join(dir, "src") + `"`,
		`output_workspace = "` + filepath.Join(dir, "out") + `"`,
		"[whisper]",
		`model = "medium"`,
		`language = "DE"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be read")
	}
	if cfg.Whisper.Model != "medium" {
		t.Fatalf("expected medium, got %q", cfg.Whisper.Model)
	}
	if cfg.Whisper.Language != "de" {
		t.Fatalf("expected normalized language de, got %q", cfg.Whisper.Language)
	}
	if cfg.Paths.SourceWorkspace != filepath.Join(dir, "src") {
		t.Fatalf("unexpected source workspace: %q", cfg.Paths.SourceWorkspace)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown model", func(c *Config) { c.Whisper.Model = "huge" }},
		{"unknown device", func(c *Config) { c.Whisper.Device = "tpu" }},
		{"unsupported language", func(c *Config) { c.Whisper.Language = "it" }},
		{"bad translate target", func(c *Config) { c.Whisper.TranslateTo = "fr" }},
		{"same workspaces", func(c *Config) {
			c.Paths.OutputWorkspace = c.Paths.SourceWorkspace
		}},
		{"zero decode timeout", func(c *Config) { c.Tools.DecodeTimeout = 0 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tc := range cases {
		cfg := Default()
		if err := cfg.normalize(); err != nil {
			t.Fatalf("%s: normalize: %v", tc.name, err)
		}
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestResolveToolPathAnchorsBareNames(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if filepath.Dir(cfg.Tools.Ww2oggBinary) != cfg.Tools.Dir {
		t.Fatalf("expected ww2ogg under tools dir, got %q", cfg.Tools.Ww2oggBinary)
	}

	cfg2 := Default()
	cfg2.Tools.Ww2oggBinary = filepath.Join(t.TempDir(), "custom-ww2ogg")
	if err := cfg2.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if filepath.Dir(cfg2.Tools.Ww2oggBinary) == cfg2.Tools.Dir {
		t.Fatal("expected explicit path to bypass tools dir anchoring")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected second WriteSample to fail")
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists || cfg == nil {
		t.Fatal("expected sample config to load")
	}
}
