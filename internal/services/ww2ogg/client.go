package ww2ogg

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

// OutputExtension is the container extension the decode tool produces.
const OutputExtension = ".ogg"

// Decoder defines the behaviour required by the decode handler.
type Decoder interface {
	Decode(ctx context.Context, sourcePath string) (string, error)
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

// Client wraps ww2ogg CLI interactions. The tool decodes one Wwise .wem file
// into an Ogg container next to the source, using a shared codebooks resource.
type Client struct {
	binary    string
	codebooks string
	timeout   time.Duration
	exec      Executor
}

// New constructs a ww2ogg client.
func New(binary, codebooks string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ww2ogg binary required")
	}
	codebooks = strings.TrimSpace(codebooks)
	if codebooks == "" {
		return nil, errors.New("codebooks path required")
	}
	client := &Client{
		binary:    binary,
		codebooks: codebooks,
		timeout:   time.Duration(timeoutSeconds) * time.Second,
		exec:      commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// OutputPathFor returns the path ww2ogg writes for a given source file.
func OutputPathFor(sourcePath string) string {
	return strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + OutputExtension
}

// Decode runs the tool against sourcePath and returns the produced Ogg path.
// Success requires a zero exit code and a non-empty output file.
func (c *Client) Decode(ctx context.Context, sourcePath string) (string, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return "", errors.New("source path required")
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// The tool writes its output next to the source file.
	output := OutputPathFor(sourcePath)
	args := []string{sourcePath, "--pcb", c.codebooks}
	if out, err := c.exec.Run(runCtx, c.binary, args); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("ww2ogg timed out after %s: %s", c.timeout, strings.TrimSpace(out))
		}
		return "", fmt.Errorf("ww2ogg: %w: %s", err, strings.TrimSpace(out))
	}

	ok, err := fileutil.FileExistsNonEmpty(output)
	if err != nil {
		return "", fmt.Errorf("inspect decode output: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("ww2ogg produced no output for %s", filepath.Base(sourcePath))
	}
	return output, nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	out, err := cmd.CombinedOutput()
	return string(out), err
}
