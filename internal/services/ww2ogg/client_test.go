package ww2ogg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeExecutor struct {
	run func(ctx context.Context, binary string, args []string) (string, error)

	binary string
	args   []string
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	f.binary = binary
	f.args = args
	return f.run(ctx, binary, args)
}

func TestNewRequiresBinaryAndCodebooks(t *testing.T) {
	if _, err := New("", "codebooks.bin", 10); err == nil {
		t.Fatal("expected error for missing binary")
	}
	if _, err := New("ww2ogg", " ", 10); err == nil {
		t.Fatal("expected error for missing codebooks")
	}
}

func TestDecodeSuccess(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "vo_line.wem")
	if err := os.WriteFile(source, []byte("wem"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	exec := &fakeExecutor{run: func(ctx context.Context, binary string, args []string) (string, error) {
		// Emulate the tool writing the ogg next to the source.
		if err := os.WriteFile(OutputPathFor(source), []byte("OggS"), 0o644); err != nil {
			return "", err
		}
		return "", nil
	}}

	client, err := New("/tools/ww2ogg", "/tools/codebooks.bin", 10, WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	output, err := client.Decode(context.Background(), source)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if output != filepath.Join(dir, "vo_line.ogg") {
		t.Fatalf("unexpected output path: %s", output)
	}
	if exec.binary != "/tools/ww2ogg" {
		t.Fatalf("unexpected binary: %s", exec.binary)
	}
	want := []string{source, "--pcb", "/tools/codebooks.bin"}
	if len(exec.args) != len(want) {
		t.Fatalf("unexpected args: %v", exec.args)
	}
	for i, arg := range want {
		if exec.args[i] != arg {
			t.Fatalf("arg %d: expected %s, got %s", i, arg, exec.args[i])
		}
	}
}

func TestDecodeToolFailure(t *testing.T) {
	exec := &fakeExecutor{run: func(ctx context.Context, binary string, args []string) (string, error) {
		return "Parse error: bad header", errors.New("exit status 1")
	}}
	client, err := New("ww2ogg", "codebooks.bin", 10, WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.Decode(context.Background(), filepath.Join(t.TempDir(), "x.wem")); err == nil {
		t.Fatal("expected error for non-zero exit")
	}
}

func TestDecodeMissingOutput(t *testing.T) {
	exec := &fakeExecutor{run: func(ctx context.Context, binary string, args []string) (string, error) {
		return "", nil
	}}
	client, err := New("ww2ogg", "codebooks.bin", 10, WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Decode(context.Background(), filepath.Join(t.TempDir(), "y.wem"))
	if err == nil {
		t.Fatal("expected error when tool exits zero but writes nothing")
	}
}

func TestOutputPathFor(t *testing.T) {
	if got := OutputPathFor("/work/a.wem"); got != "/work/a.ogg" {
		t.Fatalf("unexpected output path: %s", got)
	}
	if got := OutputPathFor("/work/noext"); got != "/work/noext.ogg" {
		t.Fatalf("unexpected output path: %s", got)
	}
}
