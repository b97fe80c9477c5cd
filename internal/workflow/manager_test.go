package workflow

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"wemscribe/internal/assets"
	"wemscribe/internal/collect"
	"wemscribe/internal/config"
	"wemscribe/internal/convert"
	"wemscribe/internal/logging"
	"wemscribe/internal/queue"
	"wemscribe/internal/record"
	"wemscribe/internal/results"
	"wemscribe/internal/services/revorb"
	"wemscribe/internal/services/whisper"
	"wemscribe/internal/services/ww2ogg"
	"wemscribe/internal/testsupport"
	"wemscribe/internal/transcribe"
)

type scriptedDecoder struct {
	fail map[string]bool
}

func (d *scriptedDecoder) Decode(ctx context.Context, sourcePath string) (string, error) {
	if d.fail[filepath.Base(sourcePath)] {
		return "", errors.New("exit status 1")
	}
	out := ww2ogg.OutputPathFor(sourcePath)
	if err := os.WriteFile(out, []byte("OggS"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

type noopNormalizer struct{}

func (noopNormalizer) Normalize(ctx context.Context, path string) error { return nil }

type scriptedNormalizer struct {
	fail map[string]bool
}

func (n *scriptedNormalizer) Normalize(ctx context.Context, path string) error {
	if n.fail[filepath.Base(path)] {
		return errors.New("exit status 2")
	}
	return nil
}

type scriptedEngine struct {
	transcripts map[string]string
	err         error
}

func (e *scriptedEngine) Transcribe(ctx context.Context, req whisper.Request) (whisper.Result, error) {
	if e.err != nil {
		return whisper.Result{}, e.err
	}
	return whisper.Result{Text: e.transcripts[filepath.Base(req.AudioPath)], Language: "en"}, nil
}

type runFixture struct {
	cfg     *config.Config
	store   *queue.Store
	sink    *results.Sink
	manager *Manager
	root    string
}

func newRunFixture(t *testing.T, decoder *scriptedDecoder, engine *scriptedEngine) *runFixture {
	return newRunFixtureWithNormalizer(t, decoder, noopNormalizer{}, engine)
}

func newRunFixtureWithNormalizer(t *testing.T, decoder *scriptedDecoder, normalizer revorb.Normalizer, engine *scriptedEngine) *runFixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	sink, err := results.NewSink(cfg.Paths.OutputCSV)
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}

	logger := logging.NewNop()
	stages := Stages{
		Collect:    collect.NewCollector(cfg, logger),
		Decode:     convert.NewDecodeHandlerWithDecoder(cfg, logger, decoder),
		Normalize:  convert.NewNormalizeHandlerWithNormalizer(cfg, logger, normalizer),
		Transcribe: transcribe.NewHandler(cfg, engine, logger),
		Record:     record.NewRecorder(cfg, sink, logger),
	}

	return &runFixture{
		cfg:     cfg,
		store:   store,
		sink:    sink,
		manager: NewManager(cfg, store, logger, stages),
		root:    t.TempDir(),
	}
}

func (f *runFixture) addSource(t *testing.T, rel string) {
	t.Helper()
	testsupport.WriteFile(t, filepath.Join(f.root, filepath.FromSlash(rel)), []byte("wem"))
}

func (f *runFixture) run(t *testing.T, names ...string) (*Summary, error) {
	t.Helper()
	locator, err := assets.NewLocator(f.root)
	if err != nil {
		t.Fatalf("NewLocator: %v", err)
	}
	requests := make([]assets.Request, 0, len(names))
	for i, name := range names {
		requests = append(requests, assets.Request{Filename: name, Line: i + 1})
	}
	return f.manager.Run(context.Background(), "run-test", locator, requests)
}

func (f *runFixture) readCSV(t *testing.T) [][]string {
	t.Helper()
	if err := f.sink.Close(); err != nil {
		t.Fatalf("sink close: %v", err)
	}
	file, err := os.Open(f.cfg.Paths.OutputCSV)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return rows
}

func TestRunProcessesItemsEndToEnd(t *testing.T) {
	engine := &scriptedEngine{transcripts: map[string]string{
		"vo_intro.ogg": "Welcome back.",
		"vo_exit.ogg":  "See you soon.",
	}}
	fixture := newRunFixture(t, &scriptedDecoder{}, engine)
	fixture.addSource(t, "voices/vo_intro.wem")
	fixture.addSource(t, "voices/deep/vo_exit.wem")

	summary, err := fixture.run(t, "vo_intro.wem", "missing.wem", "vo_exit.wem")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Succeeded != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Missing) != 1 || summary.Missing[0] != "missing.wem" {
		t.Fatalf("unexpected missing list: %v", summary.Missing)
	}

	rows := fixture.readCSV(t)
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "vo_intro.ogg" || rows[1][1] != "Welcome back." {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	if rows[2][0] != "vo_exit.ogg" || rows[2][1] != "See you soon." {
		t.Fatalf("unexpected second row: %v", rows[2])
	}

	// Success purges the staged copies but keeps the deliverables.
	for _, name := range []string{"vo_intro.wem", "vo_exit.wem"} {
		if _, err := os.Stat(filepath.Join(fixture.cfg.Paths.SourceWorkspace, name)); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("staged copy of %s should be purged", name)
		}
	}
	for _, name := range []string{"vo_intro.ogg", "vo_exit.ogg"} {
		if _, err := os.Stat(filepath.Join(fixture.cfg.Paths.OutputWorkspace, name)); err != nil {
			t.Fatalf("deliverable %s missing: %v", name, err)
		}
	}

	items, err := fixture.store.ItemsForRun(context.Background(), "run-test")
	if err != nil {
		t.Fatalf("ItemsForRun: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 queued items, got %d", len(items))
	}
	for _, item := range items {
		if item.Status != queue.StatusCompleted {
			t.Fatalf("item %s not completed: %s", item.Filename, item.Status)
		}
	}
}

func TestRunContinuesAfterItemFailure(t *testing.T) {
	engine := &scriptedEngine{transcripts: map[string]string{"vo_good.ogg": "Fine."}}
	decoder := &scriptedDecoder{fail: map[string]bool{"vo_bad.wem": true}}
	fixture := newRunFixture(t, decoder, engine)
	fixture.addSource(t, "vo_bad.wem")
	fixture.addSource(t, "vo_good.wem")

	summary, err := fixture.run(t, "vo_bad.wem", "vo_good.wem")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// The failed item keeps its staged copy for inspection.
	if _, err := os.Stat(filepath.Join(fixture.cfg.Paths.SourceWorkspace, "vo_bad.wem")); err != nil {
		t.Fatalf("failed item staged copy should be retained: %v", err)
	}

	rows := fixture.readCSV(t)
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(rows))
	}
	if rows[1][0] != "vo_good.ogg" {
		t.Fatalf("unexpected row: %v", rows[1])
	}

	items, err := fixture.store.List(context.Background(), queue.StatusFailed)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Filename != "vo_bad.wem" {
		t.Fatalf("unexpected failed items: %+v", items)
	}
}

func TestRunNormalizeFailureLeavesNoIntermediate(t *testing.T) {
	engine := &scriptedEngine{transcripts: map[string]string{"vo_good.ogg": "Fine."}}
	normalizer := &scriptedNormalizer{fail: map[string]bool{"vo_warp.ogg": true}}
	fixture := newRunFixtureWithNormalizer(t, &scriptedDecoder{}, normalizer, engine)
	fixture.addSource(t, "vo_warp.wem")
	fixture.addSource(t, "vo_good.wem")

	summary, err := fixture.run(t, "vo_warp.wem", "vo_good.wem")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// The staged source copy is the only artifact a failed item leaves
	// behind; the decoded container must be gone.
	if _, err := os.Stat(filepath.Join(fixture.cfg.Paths.SourceWorkspace, "vo_warp.wem")); err != nil {
		t.Fatalf("failed item staged copy should be retained: %v", err)
	}
	if _, err := os.Stat(filepath.Join(fixture.cfg.Paths.SourceWorkspace, "vo_warp.ogg")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("decoded intermediate must not survive the failed run")
	}

	items, err := fixture.store.List(context.Background(), queue.StatusFailed)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].DecodedPath != "" {
		t.Fatalf("failed item should have no decoded path recorded: %+v", items)
	}
}

func TestRunAbortsOnEngineInitFailure(t *testing.T) {
	engine := &scriptedEngine{err: fmt.Errorf("%w: no usable device", whisper.ErrEngineInit)}
	fixture := newRunFixture(t, &scriptedDecoder{}, engine)
	fixture.addSource(t, "vo_one.wem")
	fixture.addSource(t, "vo_two.wem")

	_, err := fixture.run(t, "vo_one.wem", "vo_two.wem")
	if !errors.Is(err, whisper.ErrEngineInit) {
		t.Fatalf("expected ErrEngineInit, got %v", err)
	}

	items, err := fixture.store.ItemsForRun(context.Background(), "run-test")
	if err != nil {
		t.Fatalf("ItemsForRun: %v", err)
	}
	for _, item := range items {
		if item.Status != queue.StatusFailed {
			t.Fatalf("item %s should be failed after abort, got %s", item.Filename, item.Status)
		}
	}
	// Aborted items keep their staged copies.
	if _, err := os.Stat(filepath.Join(fixture.cfg.Paths.SourceWorkspace, "vo_one.wem")); err != nil {
		t.Fatalf("aborted item staged copy should be retained: %v", err)
	}
}

func TestRunDuplicateRequestsProduceDuplicateRows(t *testing.T) {
	engine := &scriptedEngine{transcripts: map[string]string{"vo_dup.ogg": "Again."}}
	fixture := newRunFixture(t, &scriptedDecoder{}, engine)
	fixture.addSource(t, "vo_dup.wem")

	summary, err := fixture.run(t, "vo_dup.wem", "vo_dup.wem")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 2 {
		t.Fatalf("expected both duplicates to succeed, got %+v", summary)
	}

	rows := fixture.readCSV(t)
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "vo_dup.ogg" || rows[2][0] != "vo_dup.ogg" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestHealthChecksCoverEveryStage(t *testing.T) {
	engine := &scriptedEngine{}
	fixture := newRunFixture(t, &scriptedDecoder{}, engine)

	checks := fixture.manager.HealthChecks(context.Background())
	if len(checks) != 5 {
		t.Fatalf("expected 5 checks, got %d", len(checks))
	}
	names := []string{"collect", "decode", "normalize", "transcribe", "record"}
	for i, check := range checks {
		if check.Name != names[i] {
			t.Fatalf("check %d: expected %s, got %s", i, names[i], check.Name)
		}
	}
}
