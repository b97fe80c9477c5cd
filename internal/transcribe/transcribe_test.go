package transcribe

import (
	"context"
	"errors"
	"testing"

	"wemscribe/internal/logging"
	"wemscribe/internal/queue"
	"wemscribe/internal/services/whisper"
	"wemscribe/internal/testsupport"
)

type fakeEngine struct {
	transcribe func(ctx context.Context, req whisper.Request) (whisper.Result, error)

	lastRequest whisper.Request
}

func (f *fakeEngine) Transcribe(ctx context.Context, req whisper.Request) (whisper.Result, error) {
	f.lastRequest = req
	return f.transcribe(ctx, req)
}

func TestExecuteRecordsTranscriptAndLanguage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Whisper.Language = "auto"

	engine := &fakeEngine{transcribe: func(ctx context.Context, req whisper.Request) (whisper.Result, error) {
		return whisper.Result{Text: "Hold the line.", Language: "en"}, nil
	}}
	handler := NewHandler(cfg, engine, logging.NewNop())

	item := &queue.Item{Filename: "vo_hold.wem", OutputPath: "/out/vo_hold.ogg", Status: queue.StatusTranscribing}
	if err := handler.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.Status != queue.StatusTranscribed {
		t.Fatalf("unexpected status: %s", item.Status)
	}
	if item.Transcript != "Hold the line." {
		t.Fatalf("unexpected transcript: %q", item.Transcript)
	}
	if item.DetectedLanguage != "en" {
		t.Fatalf("unexpected language: %s", item.DetectedLanguage)
	}
	if engine.lastRequest.AudioPath != "/out/vo_hold.ogg" {
		t.Fatalf("unexpected audio path: %s", engine.lastRequest.AudioPath)
	}
}

func TestExecuteEmptyTranscriptIsSuccess(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := &fakeEngine{transcribe: func(ctx context.Context, req whisper.Request) (whisper.Result, error) {
		return whisper.Result{Text: "", Language: "en"}, nil
	}}
	handler := NewHandler(cfg, engine, logging.NewNop())

	item := &queue.Item{Filename: "vo_silence.wem", OutputPath: "/out/vo_silence.ogg"}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.Status != queue.StatusTranscribed {
		t.Fatalf("silent audio must still advance, got %s", item.Status)
	}
	if item.Transcript != "" {
		t.Fatalf("expected empty transcript, got %q", item.Transcript)
	}
}

func TestExecuteEngineInitPassesThrough(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := &fakeEngine{transcribe: func(ctx context.Context, req whisper.Request) (whisper.Result, error) {
		return whisper.Result{}, whisper.ErrEngineInit
	}}
	handler := NewHandler(cfg, engine, logging.NewNop())

	item := &queue.Item{Filename: "vo_any.wem", OutputPath: "/out/vo_any.ogg"}
	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, whisper.ErrEngineInit) {
		t.Fatalf("engine init failure must stay recognizable, got %v", err)
	}
}

func TestTranslateFlagRespectsLanguage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Whisper.TranslateTo = "en"
	cfg.Whisper.Language = "ja"

	engine := &fakeEngine{transcribe: func(ctx context.Context, req whisper.Request) (whisper.Result, error) {
		return whisper.Result{Text: "Go!", Language: "ja"}, nil
	}}
	handler := NewHandler(cfg, engine, logging.NewNop())

	item := &queue.Item{Filename: "vo_jp.wem", OutputPath: "/out/vo_jp.ogg"}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !engine.lastRequest.TranslateToEnglish {
		t.Fatal("expected translate flag for non-English audio")
	}

	// English audio never needs the translate task.
	cfg.Whisper.Language = "en"
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if engine.lastRequest.TranslateToEnglish {
		t.Fatal("translate flag must be off for English audio")
	}
}

func TestExecuteRequiresNormalizedAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler := NewHandler(cfg, &fakeEngine{}, logging.NewNop())

	item := &queue.Item{Filename: "vo_bare.wem"}
	if err := handler.Execute(context.Background(), item); err == nil {
		t.Fatal("expected validation error without normalized audio")
	}
}
