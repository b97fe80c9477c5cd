package config

import (
	"errors"
	"fmt"
	"strings"

	"wemscribe/internal/language"
)

var knownModels = map[string]struct{}{
	"tiny":     {},
	"base":     {},
	"small":    {},
	"medium":   {},
	"large-v3": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SourceWorkspace) == "" {
		return errors.New("paths.source_workspace must be set")
	}
	if strings.TrimSpace(c.Paths.OutputWorkspace) == "" {
		return errors.New("paths.output_workspace must be set")
	}
	if c.Paths.SourceWorkspace == c.Paths.OutputWorkspace {
		return errors.New("paths.source_workspace and paths.output_workspace must differ")
	}
	if strings.TrimSpace(c.Paths.OutputCSV) == "" {
		return errors.New("paths.output_csv must be set")
	}
	return nil
}

func (c *Config) validateTools() error {
	if strings.TrimSpace(c.Tools.Ww2oggBinary) == "" {
		return errors.New("tools.ww2ogg_binary must be set")
	}
	if strings.TrimSpace(c.Tools.RevorbBinary) == "" {
		return errors.New("tools.revorb_binary must be set")
	}
	if strings.TrimSpace(c.Tools.CodebooksPath) == "" {
		return errors.New("tools.codebooks_path must be set")
	}
	if c.Tools.DecodeTimeout <= 0 {
		return errors.New("tools.decode_timeout must be positive")
	}
	if c.Tools.NormalizeTimeout <= 0 {
		return errors.New("tools.normalize_timeout must be positive")
	}
	return nil
}

func (c *Config) validateWhisper() error {
	if strings.TrimSpace(c.Whisper.Binary) == "" {
		return errors.New("whisper.binary must be set")
	}
	if _, ok := knownModels[c.Whisper.Model]; !ok {
		return fmt.Errorf("whisper.model %q not recognized (allowed: tiny, base, small, medium, large-v3)", c.Whisper.Model)
	}
	switch c.Whisper.Device {
	case "auto", "cuda", "cpu":
	default:
		return fmt.Errorf("whisper.device %q not recognized (allowed: auto, cuda, cpu)", c.Whisper.Device)
	}
	normalized, err := language.Normalize(c.Whisper.Language)
	if err != nil {
		return fmt.Errorf("whisper.language: %w", err)
	}
	c.Whisper.Language = normalized
	if c.Whisper.TranslateTo != "" && c.Whisper.TranslateTo != "en" {
		return fmt.Errorf("whisper.translate_to %q not supported; the engine only translates to en", c.Whisper.TranslateTo)
	}
	if c.Whisper.Timeout <= 0 {
		return errors.New("whisper.timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q not recognized (allowed: console, json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q not recognized (allowed: debug, info, warn, error)", c.Logging.Level)
	}
	return nil
}
