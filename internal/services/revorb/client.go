package revorb

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"wemscribe/internal/fileutil"
)

// Normalizer defines the behaviour required by the normalize handler.
type Normalizer interface {
	Normalize(ctx context.Context, path string) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps revorb CLI interactions. The tool rewrites an Ogg file in
// place with corrected page granule positions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a revorb client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("revorb binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Normalize runs the tool against path. Success requires a zero exit code
// and the file still present and non-empty afterwards.
func (c *Client) Normalize(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("input path required")
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if out, err := c.exec.Run(runCtx, c.binary, []string{path}); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("revorb timed out after %s: %s", c.timeout, strings.TrimSpace(out))
		}
		return fmt.Errorf("revorb: %w: %s", err, strings.TrimSpace(out))
	}

	ok, err := fileutil.FileExistsNonEmpty(path)
	if err != nil {
		return fmt.Errorf("inspect normalized file: %w", err)
	}
	if !ok {
		return fmt.Errorf("revorb left no usable output for %s", filepath.Base(path))
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	out, err := cmd.CombinedOutput()
	return string(out), err
}
