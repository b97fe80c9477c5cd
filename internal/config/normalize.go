package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTools(); err != nil {
		return err
	}
	c.normalizeWhisper()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceWorkspace, err = expandPath(c.Paths.SourceWorkspace); err != nil {
		return fmt.Errorf("paths.source_workspace: %w", err)
	}
	if c.Paths.OutputWorkspace, err = expandPath(c.Paths.OutputWorkspace); err != nil {
		return fmt.Errorf("paths.output_workspace: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.OutputCSV, err = expandPath(c.Paths.OutputCSV); err != nil {
		return fmt.Errorf("paths.output_csv: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() error {
	var err error
	if c.Tools.Dir, err = expandPath(c.Tools.Dir); err != nil {
		return fmt.Errorf("tools.dir: %w", err)
	}
	if c.Tools.Ww2oggBinary, err = c.resolveToolPath(c.Tools.Ww2oggBinary); err != nil {
		return fmt.Errorf("tools.ww2ogg_binary: %w", err)
	}
	if c.Tools.RevorbBinary, err = c.resolveToolPath(c.Tools.RevorbBinary); err != nil {
		return fmt.Errorf("tools.revorb_binary: %w", err)
	}
	if c.Tools.CodebooksPath, err = c.resolveToolPath(c.Tools.CodebooksPath); err != nil {
		return fmt.Errorf("tools.codebooks_path: %w", err)
	}
	return nil
}

// resolveToolPath anchors bare file names in the tools directory; values that
// already carry a path component are expanded as given.
func (c *Config) resolveToolPath(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if filepath.Base(value) == value {
		value = filepath.Join(c.Tools.Dir, value)
	}
	return expandPath(value)
}

func (c *Config) normalizeWhisper() {
	c.Whisper.Binary = strings.TrimSpace(c.Whisper.Binary)
	c.Whisper.Model = strings.ToLower(strings.TrimSpace(c.Whisper.Model))
	c.Whisper.Device = strings.ToLower(strings.TrimSpace(c.Whisper.Device))
	c.Whisper.Language = strings.ToLower(strings.TrimSpace(c.Whisper.Language))
	c.Whisper.TranslateTo = strings.ToLower(strings.TrimSpace(c.Whisper.TranslateTo))
	if c.Whisper.Device == "" {
		c.Whisper.Device = defaultWhisperDevice
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = defaultWhisperLanguage
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
